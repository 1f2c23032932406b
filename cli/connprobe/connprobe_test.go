package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/sagernet/sing-conn/transport/stream"
	"github.com/sagernet/sing-conn/transport/tcp"

	"github.com/stretchr/testify/require"
)

func TestEchoExchange(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener, err := startEcho(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	f := &flags{Server: listener.Addr().String()}
	conn, err := dial(ctx, f)
	require.NoError(t, err)
	defer conn.Close()
	require.IsType(t, (*tcp.Conn)(nil), conn)
	require.NoError(t, conn.OnSessionStart())

	response, err := exchange(ctx, conn, []byte{0x41, 0x42, 0x43})
	require.NoError(t, err)
	require.Equal(t, []byte{0x41, 0x42, 0x43}, response)

	response, err = exchange(ctx, conn, []byte("second"))
	require.NoError(t, err)
	require.Equal(t, "second", string(response))
}

func TestStartEchoRejectsAddress(t *testing.T) {
	t.Parallel()
	_, err := startEcho(context.Background(), "")
	require.Error(t, err)
	_, err = startEcho(context.Background(), "localhost")
	require.Error(t, err)
}

func TestRunSendMissingMessage(t *testing.T) {
	t.Parallel()
	require.Error(t, runSend(context.Background(), &flags{Server: "127.0.0.1:1", Timeout: time.Second}))
	_, err := dial(context.Background(), &flags{})
	require.Error(t, err)
}

func TestClientHelloID(t *testing.T) {
	t.Parallel()
	for _, fingerprint := range []string{"", "golang", "chrome", "Firefox", "ios", "randomized"} {
		_, err := clientHelloID(fingerprint)
		require.NoError(t, err, fingerprint)
	}
	_, err := clientHelloID("netscape")
	require.Error(t, err)
}

func TestDialControl(t *testing.T) {
	t.Parallel()
	require.Nil(t, dialControl(&flags{}))
	require.NotNil(t, dialControl(&flags{Interface: "lo"}))
	require.NotNil(t, dialControl(&flags{FWMark: 1}))
}

func newTLSEcho(t *testing.T) net.Listener {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "connprobe.test"},
		DNSNames:     []string{"connprobe.test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	listener, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				io.Copy(conn, conn)
			}()
		}
	}()
	return listener
}

func TestTLSExchange(t *testing.T) {
	t.Parallel()
	listener := newTLSEcho(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := &flags{
		Server:     listener.Addr().String(),
		TLS:        true,
		ServerName: "connprobe.test",
		Insecure:   true,
	}
	conn, err := dial(ctx, f)
	require.NoError(t, err)
	defer conn.Close()
	require.IsType(t, (*stream.Conn)(nil), conn)
	require.NoError(t, conn.OnSessionStart())

	response, err := exchange(ctx, conn, []byte("over tls"))
	require.NoError(t, err)
	require.Equal(t, "over tls", string(response))
}

func TestTLSSessionOutlivesDialDeadline(t *testing.T) {
	t.Parallel()
	listener := newTLSEcho(t)
	dialCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	conn, err := dial(dialCtx, &flags{
		Server:     listener.Addr().String(),
		TLS:        true,
		ServerName: "connprobe.test",
		Insecure:   true,
	})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.OnSessionStart())

	time.Sleep(300 * time.Millisecond)
	response, err := exchange(context.Background(), conn, []byte("late"))
	require.NoError(t, err)
	require.Equal(t, "late", string(response))
}

func TestEchoClosesSessionsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener, err := startEcho(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	conn, err := dial(context.Background(), &flags{Server: listener.Addr().String()})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.OnSessionStart())
	response, err := exchange(context.Background(), conn, []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, response)

	cancel()
	read := make(chan error, 1)
	go func() {
		_, err := conn.ReadByte()
		read <- err
	}()
	select {
	case err := <-read:
		require.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("session stayed open after cancel")
	}
}
