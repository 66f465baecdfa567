package diarize

import "math"

// Thresholds control how a frame's energy maps to a label.
type Thresholds struct {
	// Silence is the overall RMS below which a frame is silent.
	Silence float64
	// OverlapMargin is the relative channel difference below which both
	// speakers are considered active.
	OverlapMargin float64
}

const ratioEpsilon = 1e-9

// Classify labels a frame from its channel energies.
// Silent frames report zero confidence; overlap frames report how close the
// channels are; speaker frames report how far apart they are.
func Classify(channelRMS [2]float64, overallRMS float64, th Thresholds) (Label, float64) {
	if overallRMS < th.Silence {
		return Silence, 0
	}

	left, right := channelRMS[0], channelRMS[1]
	ratio := math.Abs(left-right) / (math.Max(left, right) + ratioEpsilon)
	if ratio < th.OverlapMargin {
		return Overlap, 1 - ratio
	}
	if left > right {
		return SpeakerA, ratio
	}
	return SpeakerB, ratio
}
