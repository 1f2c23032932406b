//go:build !unix

package stream

func (c *Conn) RawFD() (int, bool) {
	return -1, false
}
