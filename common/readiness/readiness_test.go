package readiness

import (
	"context"
	"net"
	"testing"
	"time"

	N "github.com/sagernet/sing-conn/common/network"
	"github.com/sagernet/sing-conn/transport/memory"
	"github.com/sagernet/sing-conn/transport/stream"

	"github.com/stretchr/testify/require"
)

func TestWaitNonBlocking(t *testing.T) {
	t.Parallel()
	server, client := memory.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		server.WriteByte(0x01)
		server.Flush()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	b, err := ReadByte(ctx, client, WithInitialInterval(time.Millisecond), WithMaxInterval(5*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, byte(0x01), b)
}

func TestWaitNonBlockingCanceled(t *testing.T) {
	t.Parallel()
	_, client := memory.Pipe()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := Wait(ctx, client)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the handle was released
	require.NoError(t, client.WriteByte(0x01))
}

func TestWaitNonBlockingProbeError(t *testing.T) {
	t.Parallel()
	_, client := memory.Pipe()

	handle := client.AsyncInterface()
	probe, _ := handle.Probe()
	handle.Release()
	require.NoError(t, client.Close())

	_, err := probe.IsReadable()
	require.ErrorIs(t, err, net.ErrClosed)

	err = Wait(context.Background(), client)
	require.ErrorIs(t, err, net.ErrClosed)
}

func TestWaitUnavailable(t *testing.T) {
	t.Parallel()
	left, right := net.Pipe()
	defer left.Close()
	defer right.Close()
	conn := stream.New(left)

	err := Wait(context.Background(), conn)
	require.ErrorIs(t, err, ErrUnavailable)

	go right.Write([]byte{0x07})
	b, err := ReadByte(context.Background(), conn)
	require.NoError(t, err)
	require.Equal(t, byte(0x07), b)
}

func TestWaitReleasesOnReturn(t *testing.T) {
	t.Parallel()
	_, client := memory.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, Wait(ctx, client), context.Canceled)
	handle := client.AsyncInterface()
	require.Equal(t, N.PollNonBlocking, handle.Kind())
	handle.Release()
}
