//go:build unix

package control

import (
	"context"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

func newTCPPair(t *testing.T) (*net.TCPConn, *net.TCPConn) {
	t.Helper()
	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, _ := listener.Accept()
		accepted <- conn
	}()
	client, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	server := <-accepted
	require.NotNil(t, server)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return server.(*net.TCPConn), client.(*net.TCPConn)
}

func rawConn(t *testing.T, conn syscall.Conn) syscall.RawConn {
	t.Helper()
	raw, err := conn.SyscallConn()
	require.NoError(t, err)
	return raw
}

func TestPeek(t *testing.T) {
	t.Parallel()
	server, client := newTCPPair(t)

	_, err := server.Write([]byte{0x41, 0x42})
	require.NoError(t, err)

	raw := rawConn(t, client)
	for i := 0; i < 2; i++ {
		b, err := Peek(raw)
		require.NoError(t, err)
		require.Equal(t, byte(0x41), b)
	}

	buffer := make([]byte, 2)
	_, err = io.ReadFull(client, buffer)
	require.NoError(t, err)
	require.Equal(t, []byte{0x41, 0x42}, buffer)
}

func TestPeekHonorsDeadline(t *testing.T) {
	t.Parallel()
	_, client := newTCPPair(t)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(20*time.Millisecond)))
	_, err := Peek(rawConn(t, client))
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestPeekEOF(t *testing.T) {
	t.Parallel()
	server, client := newTCPPair(t)
	require.NoError(t, server.Close())

	_, err := Peek(rawConn(t, client))
	require.ErrorIs(t, err, io.EOF)
}

func TestPeekNonblocking(t *testing.T) {
	t.Parallel()
	server, client := newTCPPair(t)
	raw := rawConn(t, client)

	readable, err := PeekNonblocking(raw)
	require.NoError(t, err)
	require.False(t, readable)

	_, err = server.Write([]byte{0x01})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		readable, err = PeekNonblocking(raw)
		return err == nil && readable
	}, time.Second, time.Millisecond)

	// still pending after the probe
	b := make([]byte, 1)
	_, err = io.ReadFull(client, b)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), b[0])
}

func TestPeekNonblockingAtEOF(t *testing.T) {
	t.Parallel()
	server, client := newTCPPair(t)
	require.NoError(t, server.Close())

	raw := rawConn(t, client)
	require.Eventually(t, func() bool {
		readable, err := PeekNonblocking(raw)
		return err == nil && readable
	}, time.Second, time.Millisecond)
}

func TestNoDelay(t *testing.T) {
	t.Parallel()
	_, client := newTCPPair(t)
	raw := rawConn(t, client)

	require.NoError(t, client.SetNoDelay(false))
	enabled, err := NoDelay(raw)
	require.NoError(t, err)
	require.False(t, enabled)

	require.NoError(t, client.SetNoDelay(true))
	enabled, err = NoDelay(raw)
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestFD(t *testing.T) {
	t.Parallel()
	_, client := newTCPPair(t)

	fd, err := FD(client)
	require.NoError(t, err)
	require.Greater(t, fd, 2)

	require.NoError(t, client.Close())
	_, err = FD(client)
	require.Error(t, err)
}

func TestReuseAddr(t *testing.T) {
	t.Parallel()
	var config net.ListenConfig
	config.Control = ReuseAddr()
	listener, err := config.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, listener.Close())
}
