package control

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func BindToInterface(interfaceName string) Func {
	return func(network, address string, conn syscall.RawConn) error {
		iface, err := net.InterfaceByName(interfaceName)
		if err != nil {
			return err
		}
		return Raw(conn, func(fd uintptr) error {
			switch network {
			case "tcp6", "udp6":
				return unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_BOUND_IF, iface.Index)
			default:
				return unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_BOUND_IF, iface.Index)
			}
		})
	}
}
