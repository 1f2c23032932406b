//go:build unix

package control

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// NoDelay reads TCP_NODELAY back from the socket.
func NoDelay(conn syscall.RawConn) (bool, error) {
	var value int
	err := Raw(conn, func(fd uintptr) error {
		var err error
		value, err = unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY)
		return err
	})
	return value != 0, err
}
