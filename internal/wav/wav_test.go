package wav

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/stereo-diarizer/internal/wav/wavtest"
)

func TestLoad_Stereo16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.wav")
	wavtest.Write(t, path, 2, 8000, 16, []int{32767, -32767, 0, 16384, -1, 1})

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, s.SampleRate)
	assert.Equal(t, 2, s.SampleWidth)
	assert.Equal(t, 3, s.Len())
	assert.InDelta(t, 1.0, s.At(0, 0), 1e-12)
	assert.InDelta(t, -1.0, s.At(0, 1), 1e-12)
	assert.InDelta(t, 16384.0/32767.0, s.At(1, 1), 1e-12)
	assert.InDelta(t, 3.0/8000.0, s.Duration(), 1e-12)
}

func TestLoad_SampleWidths(t *testing.T) {
	t.Run("8-bit payload is read as signed bytes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "eight.wav")
		wavtest.WriteRaw(t, path, 2, 8000, 8, []byte{0x7f, 0x81, 0x00, 0x40})

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 1, s.SampleWidth)
		assert.InDelta(t, 1.0, s.At(0, 0), 1e-12)
		assert.InDelta(t, -1.0, s.At(0, 1), 1e-12)
		assert.InDelta(t, 64.0/127.0, s.At(1, 1), 1e-12)
	})

	t.Run("32-bit", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thirtytwo.wav")
		wavtest.Write(t, path, 2, 16000, 32, []int{math.MaxInt32, -math.MaxInt32})

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 4, s.SampleWidth)
		assert.InDelta(t, 1.0, s.At(0, 0), 1e-12)
		assert.InDelta(t, -1.0, s.At(0, 1), 1e-12)
	})

	t.Run("24-bit is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "twentyfour.wav")
		wavtest.WriteRaw(t, path, 2, 8000, 24, make([]byte, 12))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrUnsupportedSampleWidth)
		assert.Contains(t, err.Error(), "24 bits")
	})
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.wav"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mono input", func(t *testing.T) {
		path := filepath.Join(dir, "mono.wav")
		wavtest.Write(t, path, 1, 8000, 16, []int{1, 2, 3})

		_, err := Load(path)
		require.ErrorIs(t, err, ErrUnsupportedChannelCount)
		assert.Contains(t, err.Error(), "expected 2 channels, found 1")
	})

	t.Run("four channel input", func(t *testing.T) {
		path := filepath.Join(dir, "quad.wav")
		wavtest.Write(t, path, 4, 8000, 16, []int{1, 2, 3, 4})

		_, err := Load(path)
		require.ErrorIs(t, err, ErrUnsupportedChannelCount)
		assert.Contains(t, err.Error(), "found 4")
	})

	t.Run("payload not a whole number of frames", func(t *testing.T) {
		path := filepath.Join(dir, "torn.wav")
		wavtest.WriteRaw(t, path, 2, 8000, 16, []byte{1, 0, 2, 0, 3, 0})

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrMalformedPCM)
	})

	t.Run("not a wav container", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("definitely not audio, just text"), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidContainer)
	})
}

func TestLoad_Extensible(t *testing.T) {
	payload := []byte{0xff, 0x7f, 0x01, 0x80}

	t.Run("integer PCM sub-format is accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ext-pcm.wav")
		wavtest.WriteExtensible(t, path, 2, 8000, 16, 1, payload)

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Len())
		assert.InDelta(t, 1.0, s.At(0, 0), 1e-12)
		assert.InDelta(t, -1.0, s.At(0, 1), 1e-12)
	})

	t.Run("IEEE float sub-format is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ext-float.wav")
		wavtest.WriteExtensible(t, path, 2, 8000, 32, 3, make([]byte, 16))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrUnsupportedEncoding)
		assert.Contains(t, err.Error(), "0x3")
	})
}

func TestLoad_EmptyPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	wavtest.WriteRaw(t, path, 2, 8000, 16, nil)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0.0, s.Duration())
}

func TestSaveMono_RoundTrip16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "left.wav")
	in := []int{0, 1, -1, 12345, -32767, 32767}
	samples := make([]float64, len(in))
	for i, v := range in {
		samples[i] = float64(v) / math.MaxInt16
	}

	require.NoError(t, SaveMono(path, samples, 8000, 2))

	// Mono output cannot go through Load, so read the 16-bit payload directly.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 44+len(in)*2)
	for i, want := range in {
		got := int16(uint16(raw[44+2*i]) | uint16(raw[45+2*i])<<8)
		assert.Equal(t, int16(want), got, "sample %d", i)
	}
}

func TestSaveMono_RoundTrip32(t *testing.T) {
	dir := t.TempDir()
	in := []int{0, 1, -1, 123456789, -987654321, math.MaxInt32, math.MinInt32}
	stereo := make([]int, 0, 2*len(in))
	for _, v := range in {
		stereo = append(stereo, v, 0)
	}
	src := filepath.Join(dir, "call.wav")
	wavtest.Write(t, src, 2, 16000, 32, stereo)

	s, err := Load(src)
	require.NoError(t, err)
	left := make([]float64, s.Len())
	for i := range left {
		left[i] = s.At(i, 0)
	}

	dst := filepath.Join(dir, "left.wav")
	require.NoError(t, SaveMono(dst, left, s.SampleRate, s.SampleWidth))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Len(t, raw, 44+len(in)*4)
	for i, v := range in {
		want := int32(v)
		if v == math.MinInt32 {
			// -2^31 decodes just below -1 and is clipped to the symmetric full scale.
			want = -math.MaxInt32
		}
		got := int32(binary.LittleEndian.Uint32(raw[44+4*i:]))
		assert.Equal(t, want, got, "sample %d", i)
	}
}

func TestSaveMono_UnsupportedWidth(t *testing.T) {
	err := SaveMono(filepath.Join(t.TempDir(), "x.wav"), []float64{0}, 8000, 3)
	assert.ErrorIs(t, err, ErrUnsupportedSampleWidth)
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name  string
		v     float64
		width int
		want  int
	}{
		{"8-bit silence is midscale", 0, 1, 128},
		{"8-bit full positive", 1, 1, 255},
		{"8-bit full negative", -1, 1, 0},
		{"16-bit clips above one", 1.5, 2, 32767},
		{"16-bit clips below minus one", -2, 2, -32767},
		{"32-bit full scale", 1, 4, math.MaxInt32},
		{"NaN becomes silence", math.NaN(), 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quantize(tt.v, tt.width))
		})
	}
}
