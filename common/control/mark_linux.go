package control

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// RoutingMark sets SO_MARK for policy routing. It needs CAP_NET_ADMIN.
func RoutingMark(mark int) Func {
	return func(network, address string, conn syscall.RawConn) error {
		return Raw(conn, func(fd uintptr) error {
			return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_MARK, mark)
		})
	}
}
