package transport_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/locator"
	"rolechain/internal/transport"
)

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

func receive(t *testing.T, ch <-chan domain.Delivery) domain.Delivery {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	return domain.Delivery{}
}

func TestBroker_PublishSubscribeFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := transport.NewBroker(transport.WithLogger(zaptest.NewLogger(t)))
	orders := hostLocator(t, "alice", "order")
	invoices := hostLocator(t, "alice", "invoice")

	ch, err := b.Subscribe(ctx, orders)
	require.NoError(t, err)

	_, err = b.Publish(ctx, invoices, []byte("not for you"))
	require.NoError(t, err)
	id, err := b.Publish(ctx, orders, []byte("sealed bytes"))
	require.NoError(t, err)

	d := receive(t, ch)
	require.Equal(t, id, d.ID)
	require.Equal(t, orders, d.Locator)
	require.Equal(t, []byte("sealed bytes"), d.Payload)
	require.NoError(t, transport.CheckDeliveryID(d.ID, d.Payload))

	fetched, err := b.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, d, fetched)

	_, err = b.Fetch(ctx, "bafkqaaa")
	require.ErrorIs(t, err, transport.ErrNotFound)

	cancel()
	for range ch {
	}
}

func TestBroker_CancelClosesSubscription(t *testing.T) {
	b := transport.NewBroker(transport.WithLogger(zaptest.NewLogger(t)))
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, b.Subscribers())

	cancel()
	require.Eventually(t, func() bool { return b.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
	_, open := <-ch
	require.False(t, open)

	// Publishing after the subscriber left must not block or panic.
	_, err = b.Publish(context.Background(), hostLocator(t, "bob", ""), []byte("x"))
	require.NoError(t, err)
}

func TestBroker_PublishBlocksUntilContextDone(t *testing.T) {
	b := transport.NewBroker(transport.WithBuffer(0))
	subCtx, cancelSub := context.WithCancel(context.Background())
	defer cancelSub()
	_, err := b.Subscribe(subCtx, "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = b.Publish(ctx, hostLocator(t, "carol", ""), []byte("stuck"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBroker_RejectsMalformedLocator(t *testing.T) {
	b := transport.NewBroker()
	_, err := b.Publish(context.Background(), "not a locator", []byte("x"))
	require.ErrorIs(t, err, domain.ErrMalformedLocator)
}

func TestDeliveryID(t *testing.T) {
	id, err := transport.DeliveryID([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, transport.CheckDeliveryID(id, []byte("abc")))
	require.ErrorIs(t, transport.CheckDeliveryID(id, []byte("abd")), transport.ErrIDMismatch)
	require.ErrorIs(t, transport.CheckDeliveryID("!invalid", []byte("abc")), transport.ErrInvalidID)
}
