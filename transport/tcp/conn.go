package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/sagernet/sing-conn/common/control"
	E "github.com/sagernet/sing-conn/common/exceptions"
	N "github.com/sagernet/sing-conn/common/network"

	"github.com/sirupsen/logrus"
)

var (
	_ N.ConnectionNonBlocking = (*Conn)(nil)
	_ net.Conn                = (*Conn)(nil)
)

// aLongTimeAgo is a read deadline that has always expired: no read can park
// on the poller while it is set.
var aLongTimeAgo = time.Unix(1, 0)

// Conn binds a TCP stream to N.ConnectionNonBlocking.
//
// Blocking mode is the caller's read deadline (none by default). IsReadable
// switches to non-blocking mode by moving the read deadline into the past
// and restores the caller's deadline afterwards.
type Conn struct {
	conn   *net.TCPConn
	reader *bufio.Reader
	writer *bufio.Writer
	logger logrus.FieldLogger
	opts   options

	readDeadline    time.Time
	setReadDeadline func(time.Time) error
	guard           N.BorrowGuard
}

// New wraps an established TCP connection. OnSessionStart has not run yet.
func New(conn *net.TCPConn, options ...Option) *Conn {
	opts := newOptions(options)
	c := &Conn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, opts.readBufferSize),
		logger: opts.logger,
		opts:   opts,
	}
	c.setReadDeadline = conn.SetReadDeadline
	if opts.writeBufferSize > 0 {
		c.writer = bufio.NewWriterSize(conn, opts.writeBufferSize)
	}
	return c
}

// Dial connects to address and wraps the result with New.
func Dial(ctx context.Context, address string, options ...Option) (*Conn, error) {
	opts := newOptions(options)
	dialer := net.Dialer{Control: opts.control}
	conn, err := dialer.DialContext(ctx, N.NetworkTCP, address)
	if err != nil {
		return nil, err
	}
	return New(conn.(*net.TCPConn), options...), nil
}

func (c *Conn) ReadByte() (byte, error) {
	if err := c.guard.Check(); err != nil {
		return 0, err
	}
	return c.reader.ReadByte()
}

func (c *Conn) ReadFull(p []byte) error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	_, err := io.ReadFull(c.reader, p)
	return err
}

func (c *Conn) PeekByte() (byte, error) {
	if err := c.guard.Check(); err != nil {
		return 0, err
	}
	b, err := c.reader.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Conn) Read(p []byte) (int, error) {
	if err := c.guard.Check(); err != nil {
		return 0, err
	}
	return c.reader.Read(p)
}

func (c *Conn) WriteByte(b byte) error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	if c.writer != nil {
		return c.writer.WriteByte(b)
	}
	_, err := c.conn.Write([]byte{b})
	return err
}

func (c *Conn) WriteAll(p []byte) error {
	_, err := c.Write(p)
	return err
}

func (c *Conn) Write(p []byte) (int, error) {
	if err := c.guard.Check(); err != nil {
		return 0, err
	}
	if c.writer != nil {
		return c.writer.Write(p)
	}
	return c.conn.Write(p)
}

// Flush drains the write buffer. Without WithWriteBufferSize every write
// already reached the socket and Flush does nothing.
func (c *Conn) Flush() error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	if c.writer == nil {
		return nil
	}
	return c.writer.Flush()
}

// OnSessionStart puts the connection into blocking mode with no deadlines,
// disables Nagle's algorithm and applies the configured keep-alive.
func (c *Conn) OnSessionStart() error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	c.readDeadline = time.Time{}
	err := c.conn.SetDeadline(time.Time{})
	if err != nil {
		return E.Cause(err, "set blocking")
	}
	err = c.conn.SetNoDelay(true)
	if err != nil {
		return E.Cause(err, "set no delay")
	}
	if c.opts.keepAliveIdle > 0 {
		err = c.setKeepAlive()
		if err != nil {
			return E.Cause(err, "set keep alive")
		}
	}
	c.logger.WithField("remote", c.conn.RemoteAddr()).Debug("session started")
	return nil
}

func (c *Conn) AsyncInterface() N.PollReadable {
	return N.NonBlocking((*probe)(c), c.guard.Acquire())
}

func (c *Conn) IsReadable() (bool, error) {
	if err := c.guard.Check(); err != nil {
		return false, err
	}
	return c.isReadable()
}

// isReadable restores blocking mode after the probe; a restoration error
// takes precedence over the probe result.
func (c *Conn) isReadable() (bool, error) {
	err := c.setNonblocking(true)
	if err != nil {
		return false, err
	}
	readable, probeErr := c.peekNonblocking()
	err = c.setNonblocking(false)
	if err != nil {
		return false, err
	}
	c.logger.WithField("readable", readable).Trace("probe")
	return readable, probeErr
}

func (c *Conn) setNonblocking(nonblocking bool) error {
	if nonblocking {
		return c.setReadDeadline(nonblockingDeadline())
	}
	return c.setReadDeadline(c.readDeadline)
}

func (c *Conn) setKeepAlive() error {
	err := c.conn.SetKeepAlive(true)
	if err != nil {
		return err
	}
	err = c.conn.SetKeepAlivePeriod(c.opts.keepAliveIdle)
	if err != nil {
		return err
	}
	if c.opts.keepAliveInterval <= 0 {
		return nil
	}
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return err
	}
	return control.SetKeepAlivePeriod(c.opts.keepAliveIdle, c.opts.keepAliveInterval)(N.NetworkTCP, c.conn.RemoteAddr().String(), rawConn)
}

// Buffered returns the number of bytes read from the socket but not yet
// consumed.
func (c *Conn) Buffered() int {
	return c.reader.Buffered()
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) SetDeadline(t time.Time) error {
	c.readDeadline = t
	return c.conn.SetDeadline(t)
}

// SetReadDeadline sets the deadline blocking mode returns to after
// IsReadable.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.readDeadline = t
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c *Conn) Upstream() any {
	return c.conn
}

// probe is the borrowed view handed out by AsyncInterface. It bypasses the
// borrow check the handle itself holds.
type probe Conn

func (p *probe) IsReadable() (bool, error) {
	return (*Conn)(p).isReadable()
}
