package control

import (
	"syscall"
)

// Func runs against a socket before it is bound or connected, in the shape
// net.Dialer.Control and net.ListenConfig.Control expect.
type Func = func(network, address string, conn syscall.RawConn) error

// Append chains newFunc after oldFunc. Either may be nil; the first error
// stops the chain.
func Append(oldFunc Func, newFunc Func) Func {
	if oldFunc == nil {
		return newFunc
	} else if newFunc == nil {
		return oldFunc
	}
	return func(network, address string, conn syscall.RawConn) error {
		err := oldFunc(network, address, conn)
		if err != nil {
			return err
		}
		return newFunc(network, address, conn)
	}
}
