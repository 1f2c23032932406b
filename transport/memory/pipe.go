// Package memory provides an in-memory connection pair for driving protocol
// engines in tests.
package memory

import (
	"io"
	"net"
	"sync"
	"sync/atomic"

	N "github.com/sagernet/sing-conn/common/network"
)

var _ N.ConnectionNonBlocking = (*Conn)(nil)

// queue carries one direction of the pipe.
type queue struct {
	access       sync.Mutex
	cond         *sync.Cond
	data         []byte
	writerClosed bool
	readerClosed bool
}

func newQueue() *queue {
	q := new(queue)
	q.cond = sync.NewCond(&q.access)
	return q
}

func (q *queue) push(p []byte) error {
	q.access.Lock()
	defer q.access.Unlock()
	if q.readerClosed {
		return io.ErrClosedPipe
	}
	q.data = append(q.data, p...)
	q.cond.Broadcast()
	return nil
}

// wait blocks until n bytes are pending, the writer closed, or closed
// reports true.
func (q *queue) wait(n int, closed func() bool) {
	for len(q.data) < n && !q.writerClosed && !closed() {
		q.cond.Wait()
	}
}

func (q *queue) closeWriter() {
	q.access.Lock()
	q.writerClosed = true
	q.cond.Broadcast()
	q.access.Unlock()
}

func (q *queue) closeReader() {
	q.access.Lock()
	q.readerClosed = true
	q.data = nil
	q.cond.Broadcast()
	q.access.Unlock()
}

// Conn is one end of an in-memory pipe. Written bytes stay pending until
// Flush hands them to the peer.
type Conn struct {
	in            *queue
	out           *queue
	pending       []byte
	closed        atomic.Bool
	sessionStarts atomic.Int32
	guard         N.BorrowGuard
}

// Pipe returns the two connected ends of an in-memory channel.
func Pipe() (*Conn, *Conn) {
	forward, backward := newQueue(), newQueue()
	return &Conn{in: backward, out: forward}, &Conn{in: forward, out: backward}
}

func (c *Conn) check() error {
	if c.closed.Load() {
		return net.ErrClosed
	}
	return c.guard.Check()
}

func (c *Conn) ReadByte() (byte, error) {
	var buffer [1]byte
	err := c.ReadFull(buffer[:])
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	return buffer[0], nil
}

// ReadFull waits for all of p. If the peer closes first, the bytes that did
// arrive are copied and io.ErrUnexpectedEOF is returned.
func (c *Conn) ReadFull(p []byte) error {
	if err := c.check(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	c.in.access.Lock()
	defer c.in.access.Unlock()
	c.in.wait(len(p), c.closed.Load)
	if c.closed.Load() {
		return net.ErrClosed
	}
	n := copy(p, c.in.data)
	c.in.data = c.in.data[n:]
	switch {
	case n == len(p):
		return nil
	case n == 0:
		return io.EOF
	default:
		return io.ErrUnexpectedEOF
	}
}

func (c *Conn) PeekByte() (byte, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	c.in.access.Lock()
	defer c.in.access.Unlock()
	c.in.wait(1, c.closed.Load)
	if c.closed.Load() {
		return 0, net.ErrClosed
	}
	if len(c.in.data) == 0 {
		return 0, io.EOF
	}
	return c.in.data[0], nil
}

func (c *Conn) WriteByte(b byte) error {
	return c.WriteAll([]byte{b})
}

func (c *Conn) WriteAll(p []byte) error {
	if err := c.check(); err != nil {
		return err
	}
	c.pending = append(c.pending, p...)
	return nil
}

// Flush delivers pending bytes to the peer. It fails with io.ErrClosedPipe
// once the peer is closed.
func (c *Conn) Flush() error {
	if err := c.check(); err != nil {
		return err
	}
	if len(c.pending) == 0 {
		return nil
	}
	err := c.out.push(c.pending)
	c.pending = c.pending[:0]
	return err
}

// Pending returns the number of written bytes not yet flushed.
func (c *Conn) Pending() int {
	return len(c.pending)
}

func (c *Conn) OnSessionStart() error {
	if err := c.check(); err != nil {
		return err
	}
	c.sessionStarts.Add(1)
	return nil
}

// SessionStarts returns how often OnSessionStart ran.
func (c *Conn) SessionStarts() int {
	return int(c.sessionStarts.Load())
}

func (c *Conn) AsyncInterface() N.PollReadable {
	return N.NonBlocking((*probe)(c), c.guard.Acquire())
}

// RawFD reports no descriptor: the pipe lives in process memory.
func (c *Conn) RawFD() (int, bool) {
	return -1, false
}

func (c *Conn) IsReadable() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	return c.isReadable()
}

func (c *Conn) isReadable() (bool, error) {
	if c.closed.Load() {
		return false, net.ErrClosed
	}
	c.in.access.Lock()
	defer c.in.access.Unlock()
	return len(c.in.data) > 0 || c.in.writerClosed, nil
}

// Close ends both directions. Pending unflushed bytes are dropped; the peer
// reads what was already flushed and then io.EOF.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.pending = nil
	c.out.closeWriter()
	c.in.closeReader()
	return nil
}

type probe Conn

func (p *probe) IsReadable() (bool, error) {
	return (*Conn)(p).isReadable()
}
