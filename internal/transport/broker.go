package transport

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/locator"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 64

// Broker is an in-process publish/subscribe hub.
type Broker struct {
	log    *zap.Logger
	buffer int

	mu   sync.RWMutex
	subs map[uuid.UUID]*subscription
	held map[string]domain.Delivery
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithLogger sets the broker's logger.
func WithLogger(l *zap.Logger) BrokerOption {
	return func(b *Broker) {
		if l != nil {
			b.log = l
		}
	}
}

// WithBuffer sets the per-subscription channel capacity.
func WithBuffer(n int) BrokerOption {
	return func(b *Broker) {
		if n >= 0 {
			b.buffer = n
		}
	}
}

// NewBroker returns an empty broker.
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		log:    zap.NewNop(),
		buffer: DefaultBuffer,
		subs:   make(map[uuid.UUID]*subscription),
		held:   make(map[string]domain.Delivery),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type subscription struct {
	id     uuid.UUID
	prefix string
	done   <-chan struct{}

	mu     sync.RWMutex
	closed bool
	ch     chan domain.Delivery
}

func (s *subscription) deliver(ctx context.Context, d domain.Delivery) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- d:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Publish retains payload and fans it out to matching subscribers. It blocks
// while a subscriber's buffer is full, until ctx is done.
func (b *Broker) Publish(ctx context.Context, loc string, payload []byte) (string, error) {
	if _, err := locator.Parse(loc); err != nil {
		return "", err
	}
	id, err := DeliveryID(payload)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}
	d := domain.Delivery{ID: id, Locator: loc, Payload: bytes.Clone(payload)}

	b.mu.Lock()
	b.held[id] = d
	var targets []*subscription
	for _, s := range b.subs {
		if locator.HasPrefix(loc, s.prefix) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		if err := s.deliver(ctx, d); err != nil {
			b.log.Warn("delivery aborted",
				zap.String("id", id),
				zap.Stringer("subscription", s.id),
				zap.Error(err))
			return id, err
		}
	}
	b.log.Debug("published",
		zap.String("id", id),
		zap.String("locator", loc),
		zap.Int("bytes", len(payload)),
		zap.Int("subscribers", len(targets)))
	return id, nil
}

// Subscribe returns a channel of deliveries under prefix. The channel is
// closed once ctx is done.
func (b *Broker) Subscribe(ctx context.Context, prefix string) (<-chan domain.Delivery, error) {
	s := &subscription{
		id:     uuid.New(),
		prefix: prefix,
		done:   ctx.Done(),
		ch:     make(chan domain.Delivery, b.buffer),
	}
	b.mu.Lock()
	b.subs[s.id] = s
	b.mu.Unlock()
	b.log.Debug("subscribed", zap.Stringer("subscription", s.id), zap.String("prefix", prefix))

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, s.id)
		b.mu.Unlock()
		b.log.Debug("unsubscribed", zap.Stringer("subscription", s.id))
		s.close()
	}()
	return s.ch, nil
}

// Fetch returns a retained delivery.
func (b *Broker) Fetch(ctx context.Context, id string) (domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return domain.Delivery{}, err
	}
	b.mu.RLock()
	d, ok := b.held[id]
	b.mu.RUnlock()
	if !ok {
		return domain.Delivery{}, ErrNotFound
	}
	d.Payload = bytes.Clone(d.Payload)
	return d, nil
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Compile-time assertion that Broker implements domain.Transport.
var _ domain.Transport = (*Broker)(nil)
