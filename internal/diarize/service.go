package diarize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maauso/stereo-diarizer/internal/requestid"
	"github.com/maauso/stereo-diarizer/internal/storage"
)

// Recorder receives run telemetry.
type Recorder interface {
	ObserveRun(status string, elapsed time.Duration)
	ObserveResult(res *Result)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, time.Duration) {}
func (nopRecorder) ObserveResult(*Result)            {}

// Request describes one diarization job.
type Request struct {
	// Source is a local path or an s3://bucket/key URI.
	Source string
	// Options overrides the service defaults field by field.
	Options Options
	// PushToS3 publishes the exported tracks and fills Result.AudioURLs.
	PushToS3 bool
}

// Service runs diarization requests against a storage backend.
type Service struct {
	store     storage.Storage
	logger    *slog.Logger
	recorder  Recorder
	defaults  Options
	keyPrefix string
	// scoped places each run's tracks under <output dir>/<request id>.
	scoped bool
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithDefaults sets the options used for fields a request leaves unset.
func WithDefaults(defaults Options) ServiceOption {
	return func(s *Service) {
		s.defaults = defaults
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithKeyPrefix sets the S3 key prefix for published tracks.
func WithKeyPrefix(prefix string) ServiceOption {
	return func(s *Service) {
		s.keyPrefix = strings.Trim(prefix, "/")
	}
}

// WithRequestScopedOutput writes each run's tracks under a directory named
// after its request id, so concurrent runs on recordings with the same file
// name never share output files.
func WithRequestScopedOutput() ServiceOption {
	return func(s *Service) {
		s.scoped = true
	}
}

// NewService creates a new Service.
func NewService(store storage.Storage, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:     store,
		logger:    logger,
		recorder:  nopRecorder{},
		keyPrefix: "diarization",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes req and reports the outcome. It never panics on bad input;
// every failure is returned as an error Outcome.
func (s *Service) Run(ctx context.Context, req Request) Outcome {
	reqID := requestid.New()
	logger := s.logger.With(
		slog.String("request_id", reqID),
		slog.String("source", req.Source),
	)

	start := time.Now()
	res, err := s.run(ctx, reqID, req, logger)
	elapsed := time.Since(start)
	outcome := NewOutcome(res, err)

	s.recorder.ObserveRun(outcome.Status, elapsed)
	if !outcome.OK() {
		logger.Warn("diarization failed",
			slog.String("error", outcome.Error),
			slog.Duration("elapsed", elapsed),
		)
		return outcome
	}

	s.recorder.ObserveResult(res)
	logger.Info("diarization completed",
		slog.Int("sample_rate", res.SampleRate),
		slog.Float64("duration_sec", res.Duration),
		slog.Int("segments", len(res.Segments)),
		slog.Int("tracks", len(res.AudioFiles)),
		slog.Duration("elapsed", elapsed),
	)
	return outcome
}

func (s *Service) run(ctx context.Context, reqID string, req Request, logger *slog.Logger) (*Result, error) {
	local, err := s.store.Fetch(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("fetch input: %w", err)
	}
	if local != req.Source {
		logger.Debug("input fetched", slog.String("path", local))
		defer func() {
			if err := s.store.CleanupTemp(context.WithoutCancel(ctx), []string{filepath.Dir(local)}); err != nil {
				logger.Warn("failed to clean up fetched input", slog.String("error", err.Error()))
			}
		}()
	}

	opts := req.Options.WithDefaults(s.defaults)
	if s.scoped {
		base := opts.OutputDir
		if base == "" {
			if base, err = DefaultOutputDir(); err != nil {
				return nil, err
			}
		}
		opts.OutputDir = filepath.Join(base, reqID)
	}

	res, err := Diarize(local, opts)
	if err != nil {
		return nil, err
	}

	if req.PushToS3 && len(res.AudioFiles) > 0 {
		urls, err := s.publish(ctx, reqID, res.AudioFiles)
		if err != nil {
			return nil, err
		}
		res.AudioURLs = urls
	}
	return res, nil
}

// publish uploads exported tracks under <prefix>/<request id>/<track>.wav.
func (s *Service) publish(ctx context.Context, reqID string, files map[string]string) (map[string]string, error) {
	tracks := make([]string, 0, len(files))
	for track := range files {
		tracks = append(tracks, track)
	}
	sort.Strings(tracks)

	urls := make(map[string]string, len(files))
	for _, track := range tracks {
		local := files[track]
		f, err := os.Open(local) // #nosec G304 - path was produced by ExportTracks
		if err != nil {
			return nil, fmt.Errorf("open %s track: %w", track, err)
		}
		key := path.Join(s.keyPrefix, reqID, filepath.Base(local))
		url, err := s.store.UploadToS3(ctx, key, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("publish %s track: %w", track, err)
		}
		urls[track] = url
	}
	return urls, nil
}
