package diarize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/stereo-diarizer/internal/wav"
)

// stereoOf interleaves two channels into a Stereo at sampleRate.
func stereoOf(sampleRate int, left, right []float64) *wav.Stereo {
	data := make([]float64, 0, 2*len(left))
	for i := range left {
		data = append(data, left[i], right[i])
	}
	return &wav.Stereo{Data: data, SampleRate: sampleRate, SampleWidth: 2}
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		name         string
		frameSeconds float64
		sampleRate   int
		total        int
		want         int
	}{
		{"half second at 8kHz", 0.5, 8000, 16000, 4000},
		{"rounds half to even", 0.25, 10, 100, 2},
		{"never below one sample", 0.0001, 100, 100, 1},
		{"longer than input", 10, 4, 12, 12},
		{"exactly the input", 3, 4, 12, 12},
		{"huge window is capped", 1e20, 8000, 16000, 16000},
		{"infinite window is capped", math.Inf(1), 8000, 16000, 16000},
		{"empty input", 0.5, 8000, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frameSize(tt.frameSeconds, tt.sampleRate, tt.total))
		})
	}
}

func TestFrames_HugeWindowYieldsOneFrame(t *testing.T) {
	s := stereoOf(8000, constant(16000, 0.5), constant(16000, 0.5))

	for _, frameSeconds := range []float64{1e6, 1e20} {
		var frames []Frame
		for f := range Frames(s, frameSeconds) {
			frames = append(frames, f)
		}
		require.Len(t, frames, 1, "frame seconds %g", frameSeconds)
		assert.Equal(t, 0, frames[0].Start)
		assert.Equal(t, 16000, frames[0].End)
		assert.InDelta(t, 2.0, frames[0].Duration, 1e-12)

		segs := Analyze(s, Options{FrameSeconds: Float(frameSeconds)})
		require.Len(t, segs, 1)
		assert.Equal(t, Overlap, segs[0].Label)
		assert.Equal(t, 16000, segs[0].EndSample)
	}
}

func TestFrames(t *testing.T) {
	s := stereoOf(4, constant(10, 0.5), constant(10, 0))

	var frames []Frame
	for f := range Frames(s, 1) {
		frames = append(frames, f)
	}

	require.Len(t, frames, 3)
	assert.Equal(t, [2]int{0, 4}, [2]int{frames[0].Start, frames[0].End})
	assert.Equal(t, [2]int{4, 8}, [2]int{frames[1].Start, frames[1].End})
	assert.Equal(t, [2]int{8, 10}, [2]int{frames[2].Start, frames[2].End}, "last frame is shorter")
	assert.InDelta(t, 1.0, frames[0].Duration, 1e-12)
	assert.InDelta(t, 0.5, frames[2].Duration, 1e-12)

	for _, f := range frames {
		assert.InDelta(t, 0.5, f.ChannelRMS[0], 1e-12)
		assert.InDelta(t, 0.0, f.ChannelRMS[1], 1e-12)
		assert.InDelta(t, math.Sqrt(0.125), f.OverallRMS, 1e-12)
	}
}

func TestFrames_MixedSigns(t *testing.T) {
	s := stereoOf(4, []float64{0.3, -0.4, 0.3, -0.4}, []float64{-0.6, 0.8, 0, 0})

	var got []Frame
	for f := range Frames(s, 1) {
		got = append(got, f)
	}

	require.Len(t, got, 1)
	assert.InDelta(t, math.Sqrt((0.09+0.16+0.09+0.16)/4), got[0].ChannelRMS[0], 1e-12)
	assert.InDelta(t, math.Sqrt((0.36+0.64)/4), got[0].ChannelRMS[1], 1e-12)
	assert.InDelta(t, math.Sqrt((0.5+1.0)/8), got[0].OverallRMS, 1e-12)
}

func TestFrames_EmptyAndEarlyStop(t *testing.T) {
	empty := stereoOf(8000, nil, nil)
	for range Frames(empty, 0.5) {
		t.Fatal("empty input must not yield frames")
	}

	s := stereoOf(10, constant(100, 0.1), constant(100, 0.1))
	count := 0
	for range Frames(s, 0.1) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}
