package network

import (
	"io"
)

// Connection is the byte-level surface a protocol engine drives, whatever
// the transport beneath it.
//
// A value represents exactly one open channel with a single owner. Operations
// are strictly sequential; no implementation synchronizes concurrent callers.
// Errors are the transport's own values and are passed through unchanged.
type Connection interface {
	// ReadByte blocks until one byte is available. End of channel before
	// that byte is reported as io.EOF.
	io.ByteReader

	// ReadFull blocks until len(p) bytes are read. A partial fill is never
	// success.
	ReadFull(p []byte) error

	// PeekByte returns the next byte without consuming it.
	PeekByte() (byte, error)

	// WriteByte and WriteAll block until the bytes are accepted by the
	// transport's send path. They do not imply delivery and do not flush.
	io.ByteWriter
	WriteAll(p []byte) error

	// Flush pushes buffered output toward the transport.
	Flush() error

	// OnSessionStart is called once by the owner after the channel is
	// established and before protocol traffic. An error must abort the
	// session.
	OnSessionStart() error

	// AsyncInterface returns the waiting strategy for this connection and
	// borrows the connection until PollReadable.Release is called.
	AsyncInterface() PollReadable

	// RawFD returns the descriptor backing the connection for registration
	// with an external multiplexer, or ok == false if there is none.
	RawFD() (fd int, ok bool)

	io.Closer
}

type ReadinessProbe interface {
	// IsReadable reports whether a read would make progress right now
	// without leaving the connection in non-blocking mode.
	IsReadable() (bool, error)
}

// ConnectionNonBlocking is implemented by transports that can answer a
// readiness probe by switching into non-blocking mode transiently.
type ConnectionNonBlocking interface {
	Connection
	ReadinessProbe
}

type WithUpstream interface {
	Upstream() any
}
