package diarize

import (
	"iter"
	"math"

	"github.com/maauso/stereo-diarizer/internal/wav"
)

// Frame holds the energy measurements of one analysis window.
type Frame struct {
	// Start and End delimit the window as frame indices, End exclusive.
	Start, End int
	// Duration is the window length in seconds.
	Duration float64
	// ChannelRMS is the RMS level of the left and right channels.
	ChannelRMS [2]float64
	// OverallRMS is the RMS level of both channels taken together.
	OverallRMS float64
}

// frameSize converts a window length to a sample count in [1, max(total, 1)].
// The product is capped before the int conversion so huge windows cannot overflow.
func frameSize(frameSeconds float64, sampleRate, total int) int {
	n := math.RoundToEven(frameSeconds * float64(sampleRate))
	if n >= float64(total) {
		return max(total, 1)
	}
	return max(1, int(n))
}

// Frames slices s into consecutive windows of frameSeconds and yields their
// energy. The last window may be shorter.
func Frames(s *wav.Stereo, frameSeconds float64) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		total := s.Len()
		step := frameSize(frameSeconds, s.SampleRate, total)
		for start := 0; start < total; start += step {
			end := min(start+step, total)
			if end <= start {
				continue
			}
			if !yield(measure(s, start, end)) {
				return
			}
		}
	}
}

func measure(s *wav.Stereo, start, end int) Frame {
	var sq [2]float64
	for i := start; i < end; i++ {
		for ch := range sq {
			v := s.At(i, ch)
			sq[ch] += v * v
		}
	}

	n := float64(end - start)
	f := Frame{Start: start, End: end}
	if s.SampleRate > 0 {
		f.Duration = n / float64(s.SampleRate)
	}
	for ch := range sq {
		f.ChannelRMS[ch] = math.Sqrt(sq[ch] / n)
	}
	f.OverallRMS = math.Sqrt((sq[0] + sq[1]) / (2 * n))
	return f
}
