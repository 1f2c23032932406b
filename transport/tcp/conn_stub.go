//go:build !unix

package tcp

import (
	"errors"
	"io"
	"time"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

// Without MSG_PEEK on the raw socket the probe is a buffered peek bounded by
// a short deadline.
const probeWindow = time.Millisecond

func nonblockingDeadline() time.Time {
	return time.Now().Add(probeWindow)
}

func (c *Conn) peekNonblocking() (bool, error) {
	if c.reader.Buffered() > 0 {
		return true, nil
	}
	_, err := c.reader.Peek(1)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return true, nil
	case E.IsTimeout(err):
		return false, nil
	default:
		return false, err
	}
}

func (c *Conn) RawFD() (int, bool) {
	return -1, false
}
