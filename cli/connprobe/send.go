package main

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/sagernet/sing-conn/common/control"
	E "github.com/sagernet/sing-conn/common/exceptions"
	N "github.com/sagernet/sing-conn/common/network"
	"github.com/sagernet/sing-conn/common/readiness"
	"github.com/sagernet/sing-conn/transport/stream"
	"github.com/sagernet/sing-conn/transport/tcp"

	tls "github.com/refraction-networking/utls"
	"github.com/sirupsen/logrus"
)

func clientHelloID(fingerprint string) (tls.ClientHelloID, error) {
	switch strings.ToLower(fingerprint) {
	case "chrome":
		return tls.HelloChrome_Auto, nil
	case "firefox":
		return tls.HelloFirefox_Auto, nil
	case "ios":
		return tls.HelloIOS_Auto, nil
	case "randomized":
		return tls.HelloRandomized, nil
	case "", "golang":
		return tls.HelloGolang, nil
	default:
		return tls.ClientHelloID{}, E.New("unknown fingerprint: ", fingerprint)
	}
}

func dialControl(f *flags) control.Func {
	var fn control.Func
	if f.Interface != "" {
		fn = control.Append(fn, control.BindToInterface(f.Interface))
	}
	if f.FWMark != 0 {
		fn = control.Append(fn, control.RoutingMark(f.FWMark))
	}
	return fn
}

// dial returns a connection that has not started its session yet.
func dial(ctx context.Context, f *flags) (N.Connection, error) {
	if f.Server == "" {
		return nil, E.New("missing server address")
	}
	if !f.TLS {
		conn, err := tcp.Dial(ctx, f.Server, tcp.WithControl(dialControl(f)))
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	helloID, err := clientHelloID(f.Fingerprint)
	if err != nil {
		return nil, err
	}
	dialer := net.Dialer{Control: dialControl(f)}
	conn, err := dialer.DialContext(ctx, N.NetworkTCP, f.Server)
	if err != nil {
		return nil, err
	}
	tcpConn := conn.(*net.TCPConn)
	serverName := f.ServerName
	if serverName == "" {
		serverName, _, _ = net.SplitHostPort(f.Server)
	}
	tlsConn := tls.UClient(tcpConn, &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: f.Insecure,
	}, helloID)
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		tcpConn.SetDeadline(deadline)
	}
	err = tlsConn.Handshake()
	if err != nil {
		tcpConn.Close()
		return nil, E.Cause(err, "tls handshake")
	}
	return stream.New(tlsConn, stream.WithSessionStart(func() error {
		err := tcpConn.SetDeadline(time.Time{})
		if err != nil {
			return E.Cause(err, "set blocking")
		}
		return tcpConn.SetNoDelay(true)
	})), nil
}

// exchange writes message and reads the same number of bytes back. The
// session must already be started.
func exchange(ctx context.Context, conn N.Connection, message []byte) ([]byte, error) {
	err := conn.WriteAll(message)
	if err != nil {
		return nil, err
	}
	err = conn.Flush()
	if err != nil {
		return nil, err
	}
	response := make([]byte, len(message))
	for i := range response {
		response[i], err = readiness.ReadByte(ctx, conn)
		if err != nil {
			return response[:i], err
		}
	}
	return response, nil
}

func runSend(ctx context.Context, f *flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.Message == "" {
		return E.New("missing message")
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	start := time.Now()
	conn, err := dial(ctx, f)
	if err != nil {
		return E.Cause(err, "dial ", f.Server)
	}
	defer conn.Close()
	err = conn.OnSessionStart()
	if err != nil {
		return E.Cause(err, "start session")
	}
	// blocking reads on a stream ignore ctx
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	response, err := exchange(ctx, conn, []byte(f.Message))
	if err != nil {
		return E.Cause(err, "exchange")
	}
	logrus.WithField("rtt", time.Since(start)).Info("received ", string(response))
	return nil
}
