// Package server provides the HTTP server for the stereo diarizer.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// DiarizeRequest is the HTTP request body for a diarization run.
// Exactly one of FilePath and S3URI must be set.
type DiarizeRequest struct {
	// FilePath is a stereo WAV file under the server's input directory,
	// relative to it or absolute inside it.
	FilePath string `json:"file_path" validate:"required_without=S3URI,excluded_with=S3URI"`
	// S3URI is an s3://bucket/key object to fetch before diarizing.
	S3URI string `json:"s3_uri" validate:"omitempty,startswith=s3://"`
	// FrameSeconds is the analysis window length.
	FrameSeconds *float64 `json:"frame_seconds"`
	// SilenceThreshold is the overall RMS below which a frame is silence.
	SilenceThreshold *float64 `json:"silence_threshold"`
	// OverlapMargin is the relative channel difference below which a frame is overlap.
	OverlapMargin *float64 `json:"overlap_margin"`
	// MinSegmentSeconds is the shortest run kept as its own segment.
	MinSegmentSeconds *float64 `json:"min_segment_seconds"`
	// OutputDir is a relative sub-directory of the server's output directory.
	OutputDir string `json:"output_dir"`
	// PushToS3 uploads the exported tracks and returns their URLs.
	PushToS3 bool `json:"push_to_s3"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
