// Package bootstrap provides dependency initialization for the stereo diarizer.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/maauso/stereo-diarizer/internal/config"
	"github.com/maauso/stereo-diarizer/internal/diarize"
	"github.com/maauso/stereo-diarizer/internal/metrics"
	"github.com/maauso/stereo-diarizer/internal/storage"
)

// Dependencies holds all initialized dependencies for the server and CLI.
type Dependencies struct {
	Service        *diarize.Service
	Storage        storage.Storage
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewDependencies creates and initializes all dependencies for the application.
// extra options are applied to the service after the configured ones.
func NewDependencies(cfg *config.Config, logger *slog.Logger, extra ...diarize.ServiceOption) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize metrics on a private registry so tests and the CLI
	// never collide with the global one
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Initialize the diarization service
	opts := append([]diarize.ServiceOption{
		diarize.WithDefaults(cfg.DiarizeDefaults()),
		diarize.WithRecorder(m),
		diarize.WithKeyPrefix(cfg.S3KeyPrefix),
	}, extra...)
	svc := diarize.NewService(store, logger, opts...)

	return &Dependencies{
		Service:        svc,
		Storage:        store,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
