// Package diarize splits a two-channel call recording into speaker turns.
//
// Each channel is assumed to carry one speaker. The recording is cut into
// fixed-length frames, every frame is labelled from the RMS energy of both
// channels (speaker A, speaker B, overlap or silence), consecutive frames are
// folded into segments, and the segments are replayed against the audio to
// produce one isolated mono track per speaker.
package diarize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/maauso/stereo-diarizer/internal/wav"
)

// Result is the outcome of a successful run.
type Result struct {
	// SampleRate is the input sample rate in Hz.
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
	// FrameSeconds is the analysis window actually used.
	FrameSeconds float64 `json:"frame_seconds" yaml:"frame_seconds"`
	// Duration is the input length in seconds.
	Duration float64 `json:"duration" yaml:"duration"`
	// Segments are ordered, contiguous and cover the whole input.
	Segments []Segment `json:"segments" yaml:"segments"`
	// AudioFiles maps "left"/"right" to the exported track paths.
	AudioFiles map[string]string `json:"audio_files" yaml:"audio_files"`
	// AudioURLs maps "left"/"right" to published track URLs, if any.
	AudioURLs map[string]string `json:"audio_urls,omitempty" yaml:"audio_urls,omitempty"`
}

// Diarize analyses the stereo WAV file at path and exports per-speaker tracks.
func Diarize(path string, opts Options) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", wav.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}

	p := opts.resolve()

	stereo, err := wav.Load(path)
	if err != nil {
		return nil, err
	}

	res := &Result{
		SampleRate:   stereo.SampleRate,
		FrameSeconds: p.frameSeconds,
		Duration:     stereo.Duration(),
		Segments:     make([]Segment, 0),
		AudioFiles:   make(map[string]string),
	}
	if stereo.Len() == 0 {
		return res, nil
	}

	res.Segments = segment(stereo, p)

	dir, err := TrackDir(p.outputDir, path)
	if err != nil {
		return nil, err
	}
	files, err := ExportTracks(stereo, res.Segments, dir)
	if err != nil {
		return nil, fmt.Errorf("export tracks: %w", err)
	}
	res.AudioFiles = files

	return res, nil
}

// Analyze labels s without exporting anything.
func Analyze(s *wav.Stereo, opts Options) []Segment {
	return segment(s, opts.resolve())
}

func segment(s *wav.Stereo, p params) []Segment {
	acc := NewAccumulator(s.SampleRate, p.minSegmentSeconds)
	for f := range Frames(s, p.frameSeconds) {
		label, confidence := Classify(f.ChannelRMS, f.OverallRMS, p.thresholds)
		acc.Add(f, label, confidence)
	}
	return acc.Finish()
}

// Outcome statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Outcome is the caller-facing form of a run: either a Result or an error
// message, never both.
type Outcome struct {
	Status string
	Error  string
	Result *Result
}

// NewOutcome wraps the return values of Diarize.
func NewOutcome(res *Result, err error) Outcome {
	if err != nil {
		return Outcome{Status: StatusError, Error: err.Error()}
	}
	if res == nil {
		return Outcome{Status: StatusError, Error: "no result"}
	}
	return Outcome{Status: StatusOK, Result: res}
}

// OK reports whether the run succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusOK && o.Result != nil
}

type errorBody struct {
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error" yaml:"error"`
}

type okBody struct {
	Status string `json:"status"`
	*Result
}

type okYAML struct {
	Status string `yaml:"status"`
	Result `yaml:",inline"`
}

// MarshalJSON flattens the result fields next to "status".
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.OK() {
		return json.Marshal(errorBody{Status: StatusError, Error: o.Error})
	}
	return json.Marshal(okBody{Status: o.Status, Result: o.Result})
}

// MarshalYAML mirrors MarshalJSON for YAML encoders.
func (o Outcome) MarshalYAML() (any, error) {
	if !o.OK() {
		return errorBody{Status: StatusError, Error: o.Error}, nil
	}
	return okYAML{Status: o.Status, Result: *o.Result}, nil
}
