package control

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
	"golang.org/x/sys/unix"
)

func TestBindToInterface(t *testing.T) {
	t.Parallel()
	loopback, err := nettest.LoopbackInterface()
	if err != nil {
		t.Skip(err)
	}
	listener, err := nettest.NewLocalListener("tcp4")
	require.NoError(t, err)
	defer listener.Close()

	dialer := net.Dialer{Control: BindToInterface(loopback.Name)}
	conn, err := dialer.DialContext(context.Background(), "tcp4", listener.Addr().String())
	if errors.Is(err, unix.EPERM) {
		t.Skip("binding to a device needs privileges on this kernel")
	}
	require.NoError(t, err)
	conn.Close()
}

func TestBindToMissingInterface(t *testing.T) {
	t.Parallel()
	dialer := net.Dialer{Control: BindToInterface("sing-conn-missing0")}
	_, err := dialer.DialContext(context.Background(), "tcp4", "127.0.0.1:1")
	require.Error(t, err)
}

func TestRoutingMark(t *testing.T) {
	t.Parallel()
	listener, err := nettest.NewLocalListener("tcp4")
	require.NoError(t, err)
	defer listener.Close()

	dialer := net.Dialer{Control: RoutingMark(0x100)}
	conn, err := dialer.DialContext(context.Background(), "tcp4", listener.Addr().String())
	if errors.Is(err, unix.EPERM) {
		t.Skip("SO_MARK needs CAP_NET_ADMIN")
	}
	require.NoError(t, err)
	conn.Close()
}
