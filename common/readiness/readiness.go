// Package readiness waits for a connection to become readable using the
// strategy its PollReadable names.
package readiness

import (
	"context"
	"errors"
	"time"

	E "github.com/sagernet/sing-conn/common/exceptions"
	N "github.com/sagernet/sing-conn/common/network"

	"github.com/cenkalti/backoff/v4"
)

// ErrUnavailable is returned by Wait for connections that can only be waited
// on by blocking in a read.
var ErrUnavailable = E.New("readiness unavailable, block on read")

var errNotReady = E.New("not ready")

const (
	defaultInitialInterval = time.Millisecond
	defaultMaxInterval     = 50 * time.Millisecond
	defaultPollSlice       = 100 * time.Millisecond
)

type options struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	pollSlice       time.Duration
}

type Option func(*options)

// WithInitialInterval sets the first delay between readiness probes.
func WithInitialInterval(interval time.Duration) Option {
	return func(o *options) {
		o.initialInterval = interval
	}
}

// WithMaxInterval caps the delay between readiness probes.
func WithMaxInterval(interval time.Duration) Option {
	return func(o *options) {
		o.maxInterval = interval
	}
}

// WithPollSlice bounds a single poll(2) call so cancellation is noticed.
func WithPollSlice(slice time.Duration) Option {
	return func(o *options) {
		o.pollSlice = slice
	}
}

func newOptions(optionList []Option) options {
	opts := options{
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		pollSlice:       defaultPollSlice,
	}
	for _, option := range optionList {
		option(&opts)
	}
	if opts.maxInterval < opts.initialInterval {
		opts.maxInterval = opts.initialInterval
	}
	return opts
}

// Wait blocks until conn is readable or ctx is done. The connection is
// borrowed for the duration of the call and released before Wait returns.
func Wait(ctx context.Context, conn N.Connection, options ...Option) error {
	opts := newOptions(options)
	return N.WithAsyncInterface(conn, func(handle N.PollReadable) error {
		switch handle.Kind() {
		case N.PollPollable:
			fd, _ := handle.FD()
			return waitFD(ctx, fd, opts.pollSlice)
		case N.PollNonBlocking:
			probe, _ := handle.Probe()
			return waitProbe(ctx, probe, opts)
		default:
			return ErrUnavailable
		}
	})
}

// ReadByte waits for conn and reads one byte. Connections without a
// readiness strategy are read directly.
func ReadByte(ctx context.Context, conn N.Connection, options ...Option) (byte, error) {
	err := Wait(ctx, conn, options...)
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return 0, err
	}
	return conn.ReadByte()
}

func waitProbe(ctx context.Context, probe N.ReadinessProbe, opts options) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = opts.initialInterval
	policy.MaxInterval = opts.maxInterval
	policy.MaxElapsedTime = 0
	policy.Reset()

	err := backoff.Retry(func() error {
		readable, err := probe.IsReadable()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !readable {
			return errNotReady
		}
		return nil
	}, backoff.WithContext(policy, ctx))
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
