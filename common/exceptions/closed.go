package exceptions

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsClosed reports whether err means the channel has ended, either by the
// peer (EOF, reset, broken pipe) or locally.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
