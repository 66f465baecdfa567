// Package main provides the entry point for the stereo diarizer HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/maauso/stereo-diarizer/internal/bootstrap"
	"github.com/maauso/stereo-diarizer/internal/config"
	"github.com/maauso/stereo-diarizer/internal/diarize"
	"github.com/maauso/stereo-diarizer/internal/server"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute // diarization runs inside the request
	idleTimeout     = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	outputRoot, err := cfg.OutputRoot()
	if err != nil {
		return fmt.Errorf("resolve output root: %w", err)
	}

	logger.Info("starting stereo diarizer", slog.String("config", cfg.String()))

	// Each request writes under its own request id so concurrent runs on
	// inputs with the same name never share a track directory.
	deps, err := bootstrap.NewDependencies(cfg, logger, diarize.WithRequestScopedOutput())
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	srv := newHTTPServer(cfg, logger, deps, outputRoot)
	return serve(ctx, srv, logger)
}

// newHTTPServer builds the router with local paths confined to the configured roots.
func newHTTPServer(cfg *config.Config, logger *slog.Logger, deps *bootstrap.Dependencies, outputRoot string) *http.Server {
	handlers := server.NewHandlers(deps.Service, logger,
		server.WithInputRoot(cfg.InputDir),
		server.WithOutputRoot(outputRoot),
	)

	routerCfg := server.DefaultConfig()
	routerCfg.AllowedOrigins = cfg.AllowedOrigins
	routerCfg.Metrics = deps.MetricsHandler

	return &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:      server.NewRouter(handlers, logger, routerCfg),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", srv.Addr))
		listenErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
