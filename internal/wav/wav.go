// Package wav reads two-channel PCM WAV recordings into normalized float
// samples and writes single-channel PCM tracks back to disk.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Static errors returned by Load and SaveMono.
var (
	// ErrNotFound is returned when the input file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedChannelCount is returned for inputs that are not stereo.
	ErrUnsupportedChannelCount = errors.New("unsupported channel count")
	// ErrUnsupportedSampleWidth is returned for sample widths other than 8, 16 or 32 bits.
	ErrUnsupportedSampleWidth = errors.New("unsupported sample width")
	// ErrMalformedPCM is returned when the payload is not a whole number of stereo frames.
	ErrMalformedPCM = errors.New("stereo PCM data is malformed")
	// ErrInvalidContainer is returned when the RIFF/WAVE structure cannot be parsed.
	ErrInvalidContainer = errors.New("failed to read wav")
	// ErrUnsupportedEncoding is returned for extensible files whose samples are not integer PCM.
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	stereoChannels = 2
)

// Stereo is a decoded two-channel recording.
// Data holds interleaved left/right samples normalized to [-1, 1].
type Stereo struct {
	Data []float64
	// SampleRate is the number of frames per second.
	SampleRate int
	// SampleWidth is the number of bytes per sample (1, 2 or 4).
	SampleWidth int
}

// Len returns the number of stereo frames.
func (s *Stereo) Len() int {
	return len(s.Data) / stereoChannels
}

// At returns the sample at frame i for channel ch (0 left, 1 right).
func (s *Stereo) At(i, ch int) float64 {
	return s.Data[i*stereoChannels+ch]
}

// Duration returns the recording length in seconds.
func (s *Stereo) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(s.Len()) / float64(s.SampleRate)
}

// Load decodes a stereo PCM WAV file.
func Load(path string) (*Stereo, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidContainer)
	}
	if dec.NumChans != stereoChannels {
		return nil, fmt.Errorf("%w: expected %d channels, found %d",
			ErrUnsupportedChannelCount, stereoChannels, dec.NumChans)
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: unsupported audio format %d", ErrInvalidContainer, dec.WavAudioFormat)
	}
	if dec.WavAudioFormat == formatExtensible {
		if err := checkExtensiblePCM(path); err != nil {
			return nil, err
		}
	}

	width := int(dec.BitDepth) / 8
	if _, ok := fullScale(width); !ok || int(dec.BitDepth)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedSampleWidth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	if dec.PCMChunk == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidContainer)
	}

	raw, err := io.ReadAll(io.LimitReader(dec.PCMChunk, int64(dec.PCMSize)))
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	if len(raw)%(width*stereoChannels) != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d-byte frames",
			ErrMalformedPCM, len(raw), width*stereoChannels)
	}

	return &Stereo{
		Data:        decodePCM(raw, width),
		SampleRate:  int(dec.SampleRate),
		SampleWidth: width,
	}, nil
}

// SaveMono writes samples as a single-channel PCM WAV file.
// Samples are clipped to [-1, 1] and quantized to sampleWidth bytes.
func SaveMono(path string, samples []float64, sampleRate, sampleWidth int) (err error) {
	if _, ok := fullScale(sampleWidth); !ok {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedSampleWidth, sampleWidth*8)
	}

	f, err := os.Create(path) // #nosec G304 - path is built from the output directory
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close wav: %w", cerr)
		}
	}()

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = Quantize(v, sampleWidth)
	}

	enc := wav.NewEncoder(f, sampleRate, sampleWidth*8, 1, formatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: sampleWidth * 8,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// Quantize converts a normalized sample to its integer PCM value.
// 8-bit output is unsigned with a 127.5 offset; wider output is signed.
func Quantize(v float64, sampleWidth int) int {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(-1, math.Min(1, v))
	if sampleWidth == 1 {
		return int(math.Round((v + 1) * 127.5))
	}
	scale, _ := fullScale(sampleWidth)
	return int(math.Round(v * scale))
}

// fullScale returns the signed integer maximum for a sample width in bytes.
func fullScale(sampleWidth int) (float64, bool) {
	switch sampleWidth {
	case 1:
		return math.MaxInt8, true
	case 2:
		return math.MaxInt16, true
	case 4:
		return math.MaxInt32, true
	default:
		return 0, false
	}
}

// decodePCM converts little-endian signed PCM into normalized floats.
func decodePCM(raw []byte, width int) []float64 {
	scale, _ := fullScale(width)
	out := make([]float64, len(raw)/width)
	for i := range out {
		b := raw[i*width : (i+1)*width]
		var v int64
		switch width {
		case 1:
			v = int64(int8(b[0]))
		case 2:
			v = int64(int16(binary.LittleEndian.Uint16(b)))
		case 4:
			v = int64(int32(binary.LittleEndian.Uint32(b)))
		}
		out[i] = float64(v) / scale
	}
	return out
}
