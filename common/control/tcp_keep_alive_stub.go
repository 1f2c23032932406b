//go:build !linux

package control

import (
	"syscall"
	"time"
)

// SetKeepAlivePeriod is a no-op where the probe interval cannot be set apart
// from the idle time; net.TCPConn.SetKeepAlivePeriod covers the idle time.
func SetKeepAlivePeriod(idle time.Duration, interval time.Duration) Func {
	return func(network, address string, conn syscall.RawConn) error {
		return nil
	}
}
