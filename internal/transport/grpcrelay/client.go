package grpcrelay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"rolechain/internal/domain"
	"rolechain/internal/transport"
)

// Client implements domain.Transport over a Relay gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client RelayClient
	log    *zap.Logger

	// Timeout applies per unary RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	Log *zap.Logger
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return newClient(cc, opts.Log), nil
}

func newClient(cc *grpc.ClientConn, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cc: cc, client: NewRelayClient(cc), log: log}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Publish(ctx context.Context, loc string, payload []byte) (string, error) {
	expected, err := transport.DeliveryID(payload)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(publishRequest{Locator: loc, Payload: payload})
	if err != nil {
		return "", err
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Publish(ctx, wrapperspb.Bytes(body))
	if err != nil {
		return "", mapRPC(err)
	}
	if reply.GetValue() != expected {
		return "", transport.ErrIDMismatch
	}
	return expected, nil
}

func (c *Client) Fetch(ctx context.Context, id string) (domain.Delivery, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Fetch(ctx, wrapperspb.String(id))
	if err != nil {
		return domain.Delivery{}, mapRPC(err)
	}
	d, err := decodeDelivery(reply.GetValue())
	if err != nil {
		return domain.Delivery{}, err
	}
	if d.ID != id {
		return domain.Delivery{}, transport.ErrIDMismatch
	}
	return d, nil
}

// Subscribe opens a server stream. The returned channel is closed when ctx
// is done or the stream ends; deliveries whose id does not match their
// payload are dropped.
func (c *Client) Subscribe(ctx context.Context, prefix string) (<-chan domain.Delivery, error) {
	stream, err := c.client.Subscribe(ctx, wrapperspb.String(prefix))
	if err != nil {
		return nil, mapRPC(err)
	}
	out := make(chan domain.Delivery)
	go func() {
		defer close(out)
		for {
			m, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					c.log.Warn("subscription ended", zap.String("prefix", prefix), zap.Error(mapRPC(err)))
				}
				return
			}
			d, err := decodeDelivery(m.GetValue())
			if err != nil {
				c.log.Warn("dropped delivery", zap.Error(err))
				continue
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func decodeDelivery(b []byte) (domain.Delivery, error) {
	var d domain.Delivery
	if err := json.Unmarshal(b, &d); err != nil {
		return domain.Delivery{}, err
	}
	if err := transport.CheckDeliveryID(d.ID, d.Payload); err != nil {
		return domain.Delivery{}, err
	}
	return d, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

var _ domain.Transport = (*Client)(nil)
