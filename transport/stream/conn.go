// Package stream binds an arbitrary byte stream, such as a TLS session, to
// the connection contracts.
//
// Bytes decrypted ahead of the caller sit in user-space buffers where no
// descriptor readiness can see them, so AsyncInterface always reports
// PollUnavailable.
package stream

import (
	"bufio"
	"io"

	E "github.com/sagernet/sing-conn/common/exceptions"
	N "github.com/sagernet/sing-conn/common/network"

	"github.com/sirupsen/logrus"
)

var _ N.Connection = (*Conn)(nil)

type Conn struct {
	upstream io.ReadWriteCloser
	reader   *bufio.Reader
	writer   *bufio.Writer
	logger   logrus.FieldLogger
	opts     options
	guard    N.BorrowGuard
}

func New(upstream io.ReadWriteCloser, options ...Option) *Conn {
	opts := newOptions(options)
	return &Conn{
		upstream: upstream,
		reader:   bufio.NewReaderSize(upstream, opts.readBufferSize),
		writer:   bufio.NewWriterSize(upstream, opts.writeBufferSize),
		logger:   opts.logger,
		opts:     opts,
	}
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

func (c *Conn) WriteByte(b byte) error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	return c.writer.WriteByte(b)
}

func (c *Conn) WriteAll(p []byte) error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	_, err := c.writer.Write(p)
	return err
}

func (c *Conn) Flush() error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *Conn) OnSessionStart() error {
	if err := c.guard.Check(); err != nil {
		return err
	}
	if c.opts.sessionStart != nil {
		err := c.opts.sessionStart()
		if err != nil {
			return E.Cause(err, "session start")
		}
	}
	c.logger.Debug("session started")
	return nil
}

// AsyncInterface reports PollUnavailable. The connection is still borrowed
// until the handle is released.
func (c *Conn) AsyncInterface() N.PollReadable {
	return N.Unavailable(c.guard.Acquire())
}

// Buffered returns the number of plaintext bytes read ahead of the caller.
func (c *Conn) Buffered() int {
	return c.reader.Buffered()
}

func (c *Conn) Close() error {
	return c.upstream.Close()
}

func (c *Conn) Upstream() any {
	return c.upstream
}
