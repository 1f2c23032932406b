package network

type PollKind uint8

const (
	PollUnavailable PollKind = iota
	PollPollable
	PollNonBlocking
)

func (k PollKind) String() string {
	switch k {
	case PollUnavailable:
		return "unavailable"
	case PollPollable:
		return "pollable"
	case PollNonBlocking:
		return "non-blocking"
	default:
		return "unknown"
	}
}

// PollReadable tells a caller how it may wait for a connection to become
// readable. It is a closed set of three variants distinguished by Kind:
//
//   - PollPollable: FD is valid and can be registered with a readiness
//     multiplexer.
//   - PollNonBlocking: Probe is valid and should be driven in a retry loop.
//   - PollUnavailable: the caller has to block on ReadByte.
//
// A PollReadable borrows the connection that produced it. No other operation
// may be issued on that connection until Release is called.
type PollReadable struct {
	kind    PollKind
	fd      int
	probe   ReadinessProbe
	release func()
}

func Pollable(fd int, release func()) PollReadable {
	return PollReadable{kind: PollPollable, fd: fd, release: release}
}

func NonBlocking(probe ReadinessProbe, release func()) PollReadable {
	return PollReadable{kind: PollNonBlocking, fd: -1, probe: probe, release: release}
}

func Unavailable(release func()) PollReadable {
	return PollReadable{kind: PollUnavailable, fd: -1, release: release}
}

func (p PollReadable) Kind() PollKind {
	return p.kind
}

func (p PollReadable) FD() (int, bool) {
	if p.kind != PollPollable {
		return -1, false
	}
	return p.fd, true
}

func (p PollReadable) Probe() (ReadinessProbe, bool) {
	if p.kind != PollNonBlocking {
		return nil, false
	}
	return p.probe, true
}

// Release ends the borrow. It is safe to call more than once.
func (p PollReadable) Release() {
	if p.release != nil {
		p.release()
	}
}

// WithAsyncInterface runs block with the connection's PollReadable and
// releases it afterwards.
func WithAsyncInterface(conn Connection, block func(handle PollReadable) error) error {
	handle := conn.AsyncInterface()
	defer handle.Release()
	return block(handle)
}
