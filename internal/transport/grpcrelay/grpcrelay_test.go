package grpcrelay

import (
	"bytes"
	"context"
	"crypto/sha256"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/locator"
	"rolechain/internal/transport"
)

func startRelay(t *testing.T) (*transport.Broker, *Client) {
	t.Helper()
	broker := transport.NewBroker()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterRelayServer(srv, &Server{Transport: broker})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })

	c := newClient(cc, nil)
	c.Timeout = 2 * time.Second
	return broker, c
}

func hostLocator(t *testing.T, label, action string) string {
	t.Helper()
	entropy := sha256.Sum256([]byte(label))
	root, _, err := keytree.CreateRoot(bytes.NewReader(entropy[:]), "")
	require.NoError(t, err)
	var rs locator.RoleSet
	require.NoError(t, rs.Set(domain.RoleHost, root.Address()))
	s, err := locator.Build(rs, action)
	require.NoError(t, err)
	return s
}

func TestRelay_PublishFetch(t *testing.T) {
	_, c := startRelay(t)
	ctx := context.Background()
	loc := hostLocator(t, "alice", "order")

	id, err := c.Publish(ctx, loc, []byte("sealed bytes"))
	require.NoError(t, err)
	want, err := transport.DeliveryID([]byte("sealed bytes"))
	require.NoError(t, err)
	require.Equal(t, want, id)

	d, err := c.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, loc, d.Locator)
	require.Equal(t, []byte("sealed bytes"), d.Payload)
}

func TestRelay_Errors(t *testing.T) {
	_, c := startRelay(t)
	ctx := context.Background()

	missing, err := transport.DeliveryID([]byte("never published"))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, missing)
	require.ErrorIs(t, err, transport.ErrNotFound)

	_, err = c.Publish(ctx, "not a locator", []byte("x"))
	require.ErrorIs(t, err, domain.ErrMalformedLocator)
}

func TestRelay_Subscribe(t *testing.T) {
	broker, c := startRelay(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orders := hostLocator(t, "bob", "order")
	invoices := hostLocator(t, "bob", "invoice")

	ch, err := c.Subscribe(ctx, orders)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = c.Publish(ctx, invoices, []byte("skip"))
	require.NoError(t, err)
	id, err := c.Publish(ctx, orders, []byte("deliver"))
	require.NoError(t, err)

	select {
	case d, ok := <-ch:
		require.True(t, ok)
		require.Equal(t, id, d.ID)
		require.Equal(t, []byte("deliver"), d.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	cancel()
	for range ch {
	}
	require.Eventually(t, func() bool { return broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMapErrRoundTrip(t *testing.T) {
	require.ErrorIs(t, mapRPC(mapErr(transport.ErrNotFound)), transport.ErrNotFound)
	require.ErrorIs(t, mapRPC(mapErr(transport.ErrIDMismatch)), transport.ErrIDMismatch)
	require.ErrorIs(t, mapRPC(mapErr(context.DeadlineExceeded)), context.DeadlineExceeded)
	require.NoError(t, mapRPC(nil))
}
