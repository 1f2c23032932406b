package network

import (
	"sync/atomic"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

var ErrBorrowed = E.New("connection is borrowed by a live PollReadable")

// BorrowGuard enforces the PollReadable scope on a connection.
// The zero value is unborrowed.
type BorrowGuard struct {
	borrowed atomic.Bool
}

// Acquire marks the connection borrowed and returns the idempotent release
// function to hand to the PollReadable. Acquiring twice is a programming
// error and panics.
func (g *BorrowGuard) Acquire() func() {
	if !g.borrowed.CompareAndSwap(false, true) {
		panic("network: connection already borrowed")
	}
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			g.borrowed.Store(false)
		}
	}
}

func (g *BorrowGuard) Borrowed() bool {
	return g.borrowed.Load()
}

// Check returns ErrBorrowed while a handle is live.
func (g *BorrowGuard) Check() error {
	if g.borrowed.Load() {
		return ErrBorrowed
	}
	return nil
}
