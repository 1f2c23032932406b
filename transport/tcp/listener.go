package tcp

import (
	"context"
	"errors"
	"net"
	"net/netip"

	"github.com/sagernet/sing-conn/common/control"
	E "github.com/sagernet/sing-conn/common/exceptions"
	"github.com/sagernet/sing-conn/common/log"
	N "github.com/sagernet/sing-conn/common/network"

	"github.com/sirupsen/logrus"
)

// Handler receives accepted connections before OnSessionStart. The handler
// owns the connection and must close it.
type Handler interface {
	NewConnection(ctx context.Context, conn *Conn) error
	E.Handler
}

type Listener struct {
	ctx         context.Context
	bind        netip.AddrPort
	handler     Handler
	control     control.Func
	connOptions []Option
	logger      logrus.FieldLogger
	*net.TCPListener
}

type Error struct {
	Conn  net.Conn
	Cause error
}

func (e *Error) Error() string {
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Close() error {
	return e.Conn.Close()
}

type ListenerOption func(*Listener)

// WithConnOptions sets the options every accepted connection is wrapped with.
func WithConnOptions(options ...Option) ListenerOption {
	return func(listener *Listener) {
		listener.connOptions = append(listener.connOptions, options...)
	}
}

func WithListenControl(fn control.Func) ListenerOption {
	return func(listener *Listener) {
		listener.control = control.Append(listener.control, fn)
	}
}

func WithListenerLogger(logger logrus.FieldLogger) ListenerOption {
	return func(listener *Listener) {
		listener.logger = logger
	}
}

func NewListener(ctx context.Context, listen netip.AddrPort, handler Handler, options ...ListenerOption) *Listener {
	listener := &Listener{
		ctx:     ctx,
		bind:    listen,
		handler: handler,
		logger:  log.NewLogger("tcp-listener"),
	}
	for _, option := range options {
		option(listener)
	}
	return listener
}

func (l *Listener) Start() error {
	listenConfig := net.ListenConfig{Control: l.control}
	listener, err := listenConfig.Listen(l.ctx, networkFromAddr(l.bind.Addr()), l.bind.String())
	if err != nil {
		return err
	}
	l.TCPListener = listener.(*net.TCPListener)
	l.logger.WithField("addr", l.TCPListener.Addr()).Info("listening")
	go l.loop()
	return nil
}

func (l *Listener) Close() error {
	if l == nil || l.TCPListener == nil {
		return nil
	}
	return l.TCPListener.Close()
}

func (l *Listener) loop() {
	for {
		tcpConn, err := l.AcceptTCP()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				l.handler.HandleError(E.Cause(err, "tcp listener closed"))
			}
			l.Close()
			return
		}
		l.logger.WithField("remote", tcpConn.RemoteAddr()).Debug("accepted")
		conn := New(tcpConn, l.connOptions...)
		go func() {
			hErr := l.handler.NewConnection(l.ctx, conn)
			if hErr != nil {
				l.handler.HandleError(&Error{Conn: conn, Cause: hErr})
			}
		}()
	}
}

func networkFromAddr(addr netip.Addr) string {
	if addr.Is4() {
		return "tcp4"
	} else if addr.Is6() && !addr.Is4In6() {
		return "tcp6"
	}
	return N.NetworkTCP
}
