package grpcrelay

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"rolechain/internal/domain"
)

// Server exposes a domain.Transport over the Relay gRPC service.
type Server struct {
	UnimplementedRelayServer
	Transport domain.Transport
	Log       *zap.Logger
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) Publish(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.Transport == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing transport")
	}
	var req publishRequest
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed publish request")
	}
	id, err := s.Transport.Publish(ctx, req.Locator, req.Payload)
	if err != nil {
		s.logger().Warn("publish failed", zap.String("locator", req.Locator), zap.Error(err))
		return nil, mapErr(err)
	}
	return wrapperspb.String(id), nil
}

func (s *Server) Fetch(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Transport == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing transport")
	}
	d, err := s.Transport.Fetch(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Subscribe(in *wrapperspb.StringValue, stream Relay_SubscribeServer) error {
	if s == nil || s.Transport == nil {
		return status.Error(codes.FailedPrecondition, "missing transport")
	}
	ctx := stream.Context()
	ch, err := s.Transport.Subscribe(ctx, in.GetValue())
	if err != nil {
		return mapErr(err)
	}
	s.logger().Debug("stream opened", zap.String("prefix", in.GetValue()))
	for d := range ch {
		b, err := json.Marshal(d)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if err := stream.Send(wrapperspb.Bytes(b)); err != nil {
			return err
		}
	}
	return nil
}
