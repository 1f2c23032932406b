//go:build unix

package control

import (
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Peek returns the next byte pending on a stream socket without consuming
// it. It parks on the runtime poller until a byte or end of stream arrives,
// so read deadlines on the owning connection apply.
func Peek(conn syscall.RawConn) (byte, error) {
	var (
		buffer  [1]byte
		n       int
		peekErr error
	)
	err := conn.Read(func(fd uintptr) bool {
		n, peekErr = recvPeek(fd, buffer[:], 0)
		return peekErr != unix.EAGAIN
	})
	if err != nil {
		return 0, err
	}
	if peekErr != nil {
		return 0, os.NewSyscallError("recvfrom", peekErr)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return buffer[0], nil
}

// PeekNonblocking reports whether a read on the socket would make progress
// now. An orderly shutdown by the peer counts as readable.
func PeekNonblocking(conn syscall.RawConn) (bool, error) {
	var (
		buffer  [1]byte
		peekErr error
	)
	err := conn.Control(func(fd uintptr) {
		_, peekErr = recvPeek(fd, buffer[:], unix.MSG_DONTWAIT)
	})
	if err != nil {
		return false, err
	}
	switch peekErr {
	case nil:
		return true, nil
	case unix.EAGAIN:
		return false, nil
	default:
		return false, os.NewSyscallError("recvfrom", peekErr)
	}
}

func recvPeek(fd uintptr, buffer []byte, flags int) (int, error) {
	for {
		n, _, err := unix.Recvfrom(int(fd), buffer, unix.MSG_PEEK|flags)
		if err != unix.EINTR {
			return n, err
		}
	}
}
