//go:build !linux && !darwin

package control

import (
	"syscall"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

func BindToInterface(interfaceName string) Func {
	return func(network, address string, conn syscall.RawConn) error {
		return E.New("bind to interface ", interfaceName, ": unsupported on this platform")
	}
}
