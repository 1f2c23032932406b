package control

import (
	"errors"
	"net"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

var ifIndexDisabled atomic.Bool

// BindToInterface pins the socket to the named network interface.
// SO_BINDTOIFINDEX is preferred; kernels without it fall back to
// SO_BINDTODEVICE.
func BindToInterface(interfaceName string) Func {
	return func(network, address string, conn syscall.RawConn) error {
		return Raw(conn, func(fd uintptr) error {
			if !ifIndexDisabled.Load() {
				iface, err := net.InterfaceByName(interfaceName)
				if err != nil {
					return err
				}
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BINDTOIFINDEX, iface.Index)
				if err == nil {
					return nil
				} else if errors.Is(err, unix.ENOPROTOOPT) || errors.Is(err, unix.EINVAL) {
					ifIndexDisabled.Store(true)
				} else {
					return err
				}
			}
			return unix.BindToDevice(int(fd), interfaceName)
		})
	}
}
