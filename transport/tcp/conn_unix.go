//go:build unix

package tcp

import (
	"time"

	"github.com/sagernet/sing-conn/common/control"
)

func nonblockingDeadline() time.Time {
	return aLongTimeAgo
}

func (c *Conn) peekNonblocking() (bool, error) {
	if c.reader.Buffered() > 0 {
		return true, nil
	}
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return false, err
	}
	return control.PeekNonblocking(rawConn)
}

func (c *Conn) RawFD() (int, bool) {
	fd, err := control.FD(c.conn)
	if err != nil {
		return -1, false
	}
	return fd, true
}
