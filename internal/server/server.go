// Package server runs the HTTP and gRPC listeners and shuts both down
// gracefully on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/diybuddy/projectbuddy/pkg/grpc"
	"github.com/diybuddy/projectbuddy/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Options configures Start.
type Options struct {
	Addr    string
	Handler http.Handler
	// GRPCPort of "", "0" or "off" disables the gRPC health server.
	GRPCPort string
	Check    grpc.CheckFunc
}

// Start serves until ctx is cancelled, a shutdown signal arrives, or the
// HTTP listener fails.
func Start(ctx context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", opts.Addr, err)
	}
	return serve(ctx, lis, opts)
}

func serve(ctx context.Context, lis net.Listener, opts Options) error {
	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if grpcEnabled(opts.GRPCPort) {
		gsrv, _, err := grpc.Start(opts.GRPCPort, opts.Check)
		if err != nil {
			_ = lis.Close()
			return err
		}
		defer grpc.Stop(gsrv)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func grpcEnabled(port string) bool {
	switch strings.ToLower(strings.TrimSpace(port)) {
	case "", "0", "off":
		return false
	}
	return true
}
