package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"rolechain/internal/app"
	"rolechain/internal/transport"
	"rolechain/internal/transport/grpcrelay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		listen      string
		logLevel    string
		buffer      int
		maxMsgBytes int
	)
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "In-memory gRPC relay for rolechain records",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger(logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			broker := transport.NewBroker(
				transport.WithLogger(log.Named("broker")),
				transport.WithBuffer(buffer),
			)

			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			var opts []grpc.ServerOption
			if maxMsgBytes > 0 {
				opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
			}
			srv := grpc.NewServer(opts...)
			grpcrelay.RegisterRelayServer(srv, &grpcrelay.Server{Transport: broker, Log: log.Named("rpc")})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				log.Info("shutting down", zap.Int("subscribers", broker.Subscribers()))
				done := make(chan struct{})
				go func() {
					srv.GracefulStop()
					close(done)
				}()
				select {
				case <-done:
				case <-time.After(5 * time.Second):
					srv.Stop()
				}
			}()

			log.Info("relay listening", zap.Stringer("addr", lis.Addr()))
			return srv.Serve(lis)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":7369", "listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().IntVar(&buffer, "buffer", transport.DefaultBuffer, "per-subscriber buffer")
	cmd.Flags().IntVar(&maxMsgBytes, "max-msg-bytes", 0, "max gRPC message size (0 keeps the default)")
	return cmd
}
