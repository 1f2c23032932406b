//go:build unix

// Package local binds unix-domain stream sockets to the connection
// contracts. Reads are unbuffered so the socket descriptor reflects every
// pending byte and can be handed to a readiness multiplexer.
package local

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/sagernet/sing-conn/common/control"
	E "github.com/sagernet/sing-conn/common/exceptions"
	"github.com/sagernet/sing-conn/common/log"
	N "github.com/sagernet/sing-conn/common/network"

	"github.com/sirupsen/logrus"
)

var _ N.ConnectionNonBlocking = (*Conn)(nil)

var aLongTimeAgo = time.Unix(1, 0)

type Conn struct {
	conn         *net.UnixConn
	logger       logrus.FieldLogger
	readDeadline    time.Time
	setReadDeadline func(time.Time) error
	guard           N.BorrowGuard
}

func New(conn *net.UnixConn, logger logrus.FieldLogger) *Conn {
	if logger == nil {
		logger = log.NewLogger("local")
	}
	return &Conn{conn: conn, logger: logger, setReadDeadline: conn.SetReadDeadline}
}

func Dial(ctx context.Context, path string, logger logrus.FieldLogger) (*Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, N.NetworkUnix, path)
	if err != nil {
		return nil, err
	}
	return New(conn.(*net.UnixConn), logger), nil
}

func (c *Conn) ReadByte() (byte, error) {
	if err := c.guard.Check(); err != nil {
		return 0, err
	}
	var buffer [1]byte
	_, err := io.ReadFull(c.conn, buffer[:])
	if err != nil {
		return 0, err
	}
	return buffer[0], nil
}

func (c *Conn) ReadFull(p []byte) error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	_, err := io.ReadFull(c.conn, p)
	return err
}

func (c *Conn) PeekByte() (byte, error) {
	if err := c.guard.Check(); err != nil {
		return 0, err
	}
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	return control.Peek(rawConn)
}

func (c *Conn) WriteByte(b byte) error {
	return c.WriteAll([]byte{b})
}

func (c *Conn) WriteAll(p []byte) error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	_, err := c.conn.Write(p)
	return err
}

// Flush does nothing: writes are not buffered.
func (c *Conn) Flush() error {
	return c.guard.Check()
}

func (c *Conn) OnSessionStart() error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	c.readDeadline = time.Time{}
	err := c.conn.SetDeadline(time.Time{})
	if err != nil {
		return E.Cause(err, "set blocking")
	}
	c.logger.WithField("path", c.conn.RemoteAddr()).Debug("session started")
	return nil
}

// AsyncInterface hands out the socket descriptor. If the descriptor is gone
// the connection is closed and only a blocking read can report that.
func (c *Conn) AsyncInterface() N.PollReadable {
	release := c.guard.Acquire()
	fd, err := control.FD(c.conn)
	if err != nil {
		return N.Unavailable(release)
	}
	return N.Pollable(fd, release)
}

func (c *Conn) RawFD() (int, bool) {
	fd, err := control.FD(c.conn)
	if err != nil {
		return -1, false
	}
	return fd, true
}

func (c *Conn) IsReadable() (bool, error) {
	if err := c.guard.Check(); err != nil {
		return false, err
	}
	err := c.setReadDeadline(aLongTimeAgo)
	if err != nil {
		return false, err
	}
	readable, probeErr := c.peekNonblocking()
	err = c.setReadDeadline(c.readDeadline)
	if err != nil {
		return false, err
	}
	return readable, probeErr
}

func (c *Conn) peekNonblocking() (bool, error) {
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return false, err
	}
	return control.PeekNonblocking(rawConn)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.readDeadline = t
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) Upstream() any {
	return c.conn
}
