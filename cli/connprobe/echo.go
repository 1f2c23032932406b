package main

import (
	"context"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagernet/sing-conn/common/control"
	E "github.com/sagernet/sing-conn/common/exceptions"
	"github.com/sagernet/sing-conn/common/log"
	"github.com/sagernet/sing-conn/transport/tcp"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type echoServer struct {
	logger logrus.FieldLogger
}

// NewConnection echoes every byte back and flushes once the input is
// drained. The session ends when ctx is done.
func (s *echoServer) NewConnection(ctx context.Context, conn *tcp.Conn) error {
	defer conn.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	err := conn.OnSessionStart()
	if err != nil {
		return err
	}
	s.logger.WithField("remote", conn.RemoteAddr()).Info("inbound connection")
	for {
		b, err := conn.ReadByte()
		if err != nil {
			return err
		}
		err = conn.WriteByte(b)
		if err != nil {
			return err
		}
		readable, err := conn.IsReadable()
		if err != nil {
			return err
		}
		if !readable {
			err = conn.Flush()
			if err != nil {
				return err
			}
		}
	}
}

func (s *echoServer) HandleError(err error) {
	if E.IsClosed(err) {
		s.logger.Debug(err)
		return
	}
	s.logger.Warn(err)
}

func startEcho(ctx context.Context, listen string) (*tcp.Listener, error) {
	if listen == "" {
		return nil, E.New("missing listen address")
	}
	bind, err := netip.ParseAddrPort(listen)
	if err != nil {
		return nil, E.Cause(err, "parse listen address")
	}
	server := &echoServer{logger: log.NewLogger("echo")}
	listener := tcp.NewListener(ctx, bind, server,
		tcp.WithListenControl(control.ReuseAddr()),
		tcp.WithConnOptions(tcp.WithWriteBufferSize(4096)),
	)
	err = listener.Start()
	if err != nil {
		return nil, E.Cause(err, "start listener")
	}
	return listener, nil
}

func runEcho(ctx context.Context, f *flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	group, ctx := errgroup.WithContext(ctx)
	listener, err := startEcho(ctx, f.Listen)
	if err != nil {
		return err
	}
	group.Go(func() error {
		osSignals := make(chan os.Signal, 1)
		signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(osSignals)
		select {
		case sig := <-osSignals:
			logrus.Info("received ", sig)
			return context.Canceled
		case <-ctx.Done():
			return nil
		}
	})
	group.Go(func() error {
		<-ctx.Done()
		return listener.Close()
	})
	err = group.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}
