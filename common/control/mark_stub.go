//go:build !linux

package control

import (
	"syscall"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

func RoutingMark(mark int) Func {
	return func(network, address string, conn syscall.RawConn) error {
		return E.New("routing mark: unsupported on this platform")
	}
}
