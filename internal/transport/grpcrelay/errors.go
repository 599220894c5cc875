package grpcrelay

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rolechain/internal/domain"
	"rolechain/internal/transport"
)

// mapRPC turns a gRPC status back into the transport's sentinel errors.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return transport.ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrMalformedLocator, st.Message())
	case codes.DataLoss:
		return transport.ErrIDMismatch
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return err
	}
}

// mapErr turns transport errors into gRPC statuses.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, transport.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, transport.ErrInvalidID), errors.Is(err, domain.ErrMalformedLocator):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, transport.ErrIDMismatch):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
