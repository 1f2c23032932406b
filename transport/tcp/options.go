package tcp

import (
	"time"

	"github.com/sagernet/sing-conn/common/control"
	"github.com/sagernet/sing-conn/common/log"

	"github.com/sirupsen/logrus"
)

const defaultReadBufferSize = 4096

type options struct {
	readBufferSize    int
	writeBufferSize   int
	keepAliveIdle     time.Duration
	keepAliveInterval time.Duration
	control           control.Func
	logger            logrus.FieldLogger
}

type Option func(*options)

func newOptions(optionList []Option) options {
	var opts options
	for _, option := range optionList {
		option(&opts)
	}
	if opts.readBufferSize <= 0 {
		opts.readBufferSize = defaultReadBufferSize
	}
	if opts.logger == nil {
		opts.logger = log.NewLogger("tcp")
	}
	return opts
}

func WithReadBufferSize(size int) Option {
	return func(o *options) {
		o.readBufferSize = size
	}
}

// WithWriteBufferSize buffers writes until Flush. Zero, the default, writes
// straight to the socket.
func WithWriteBufferSize(size int) Option {
	return func(o *options) {
		o.writeBufferSize = size
	}
}

// WithKeepAlive enables TCP keep-alive at session start. A zero interval
// keeps the system default probe interval.
func WithKeepAlive(idle time.Duration, interval time.Duration) Option {
	return func(o *options) {
		o.keepAliveIdle = idle
		o.keepAliveInterval = interval
	}
}

// WithControl runs fn on the socket before Dial connects it.
func WithControl(fn control.Func) Option {
	return func(o *options) {
		o.control = control.Append(o.control, fn)
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
