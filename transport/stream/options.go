package stream

import (
	"github.com/sagernet/sing-conn/common/log"

	"github.com/sirupsen/logrus"
)

const defaultBufferSize = 4096

type options struct {
	readBufferSize  int
	writeBufferSize int
	sessionStart    func() error
	logger          logrus.FieldLogger
}

type Option func(*options)

func newOptions(optionList []Option) options {
	var opts options
	for _, option := range optionList {
		option(&opts)
	}
	if opts.readBufferSize <= 0 {
		opts.readBufferSize = defaultBufferSize
	}
	if opts.writeBufferSize <= 0 {
		opts.writeBufferSize = defaultBufferSize
	}
	if opts.logger == nil {
		opts.logger = log.NewLogger("stream")
	}
	return opts
}

func WithReadBufferSize(size int) Option {
	return func(o *options) {
		o.readBufferSize = size
	}
}

func WithWriteBufferSize(size int) Option {
	return func(o *options) {
		o.writeBufferSize = size
	}
}

// WithSessionStart sets the hook OnSessionStart runs, typically socket
// tuning on the transport beneath the stream.
func WithSessionStart(fn func() error) Option {
	return func(o *options) {
		o.sessionStart = fn
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
