package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/stereo-diarizer/internal/diarize"
)

// maxBodyBytes caps the size of a request body.
const maxBodyBytes = 1 << 20

// Diarizer runs diarization requests.
type Diarizer interface {
	Run(ctx context.Context, req diarize.Request) diarize.Outcome
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service    Diarizer
	validator  *validator.Validate
	logger     *slog.Logger
	inputRoot  string
	outputRoot string
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithInputRoot confines file_path to dir. Without it local inputs are refused
// and only s3_uri sources are served.
func WithInputRoot(dir string) HandlerOption {
	return func(h *Handlers) {
		h.inputRoot = absRoot(dir)
	}
}

// WithOutputRoot confines output_dir to a relative path under dir. Without it
// output_dir is refused and tracks go to the service default.
func WithOutputRoot(dir string) HandlerOption {
	return func(h *Handlers) {
		h.outputRoot = absRoot(dir)
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service Diarizer, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Diarize handles POST /diarize requests.
// The run is synchronous: the response carries the full outcome, with 200
// for a successful run and 422 when the input could not be diarized.
func (h *Handlers) Diarize(w http.ResponseWriter, r *http.Request) {
	var req DiarizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	dreq, err := h.toRequest(req)
	if err != nil {
		h.logger.Warn("request path rejected",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_PATH")
		return
	}

	outcome := h.service.Run(r.Context(), dreq)

	status := http.StatusOK
	if !outcome.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, outcome)
}

// toRequest confines client paths to the configured roots.
func (h *Handlers) toRequest(req DiarizeRequest) (diarize.Request, error) {
	source := req.S3URI
	if source == "" {
		p, err := resolveInput(h.inputRoot, req.FilePath)
		if err != nil {
			return diarize.Request{}, fmt.Errorf("file_path: %w", err)
		}
		source = p
	}

	var outputDir string
	if req.OutputDir != "" {
		p, err := resolveOutput(h.outputRoot, req.OutputDir)
		if err != nil {
			return diarize.Request{}, fmt.Errorf("output_dir: %w", err)
		}
		outputDir = p
	}

	return diarize.Request{
		Source: source,
		Options: diarize.Options{
			FrameSeconds:      req.FrameSeconds,
			SilenceThreshold:  req.SilenceThreshold,
			OverlapMargin:     req.OverlapMargin,
			MinSegmentSeconds: req.MinSegmentSeconds,
			OutputDir:         outputDir,
		},
		PushToS3: req.PushToS3,
	}, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
