//go:build unix

package stream

import (
	"net"
	"syscall"

	"github.com/sagernet/sing-conn/common/control"
)

// RawFD returns the descriptor of the socket beneath the stream. Readiness of
// that descriptor says nothing about buffered plaintext.
func (c *Conn) RawFD() (int, bool) {
	upstream := c.upstream
	if wrapper, isWrapper := upstream.(interface{ NetConn() net.Conn }); isWrapper {
		if netConn := wrapper.NetConn(); netConn != nil {
			upstream = netConn
		}
	}
	syscallConn, isSyscallConn := upstream.(syscall.Conn)
	if !isSyscallConn {
		return -1, false
	}
	fd, err := control.FD(syscallConn)
	if err != nil {
		return -1, false
	}
	return fd, true
}
