package diarize

import "math"

// Defaults tuned for telephony-style stereo captures.
const (
	DefaultFrameSeconds      = 0.5
	DefaultSilenceThreshold  = 0.01
	DefaultOverlapMargin     = 0.2
	DefaultMinSegmentSeconds = 0.3
)

// Options tunes a diarization run. Nil fields take the package defaults;
// non-positive or non-finite values are replaced by the defaults as well,
// and both thresholds are clamped to [0, 1].
type Options struct {
	// FrameSeconds is the analysis window length.
	FrameSeconds *float64
	// SilenceThreshold is the overall RMS below which a frame is silence.
	SilenceThreshold *float64
	// OverlapMargin is the relative channel difference below which a frame is overlap.
	OverlapMargin *float64
	// MinSegmentSeconds is the shortest run kept as its own segment.
	MinSegmentSeconds *float64
	// OutputDir is the base directory for exported tracks.
	// Empty means <cwd>/downloads/diarization.
	OutputDir string
}

// Float returns a pointer to v for use in Options literals.
func Float(v float64) *float64 {
	return &v
}

// WithDefaults returns o with every unset field taken from defaults.
func (o Options) WithDefaults(defaults Options) Options {
	if o.FrameSeconds == nil {
		o.FrameSeconds = defaults.FrameSeconds
	}
	if o.SilenceThreshold == nil {
		o.SilenceThreshold = defaults.SilenceThreshold
	}
	if o.OverlapMargin == nil {
		o.OverlapMargin = defaults.OverlapMargin
	}
	if o.MinSegmentSeconds == nil {
		o.MinSegmentSeconds = defaults.MinSegmentSeconds
	}
	if o.OutputDir == "" {
		o.OutputDir = defaults.OutputDir
	}
	return o
}

// params is the resolved, always-valid form of Options.
type params struct {
	frameSeconds      float64
	thresholds        Thresholds
	minSegmentSeconds float64
	outputDir         string
}

func (o Options) resolve() params {
	return params{
		frameSeconds: coalescePositive(o.FrameSeconds, DefaultFrameSeconds),
		thresholds: Thresholds{
			Silence:       clamp01(coalescePositive(o.SilenceThreshold, DefaultSilenceThreshold)),
			OverlapMargin: clamp01(coalescePositive(o.OverlapMargin, DefaultOverlapMargin)),
		},
		minSegmentSeconds: coalescePositive(o.MinSegmentSeconds, DefaultMinSegmentSeconds),
		outputDir:         o.OutputDir,
	}
}

func coalescePositive(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return def
	}
	return *v
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
