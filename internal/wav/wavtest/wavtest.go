// Package wavtest builds WAV fixtures for tests.
package wavtest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Write encodes interleaved integer samples as a PCM WAV file.
func Write(t *testing.T, path string, channels, sampleRate, bitDepth int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer func() { _ = f.Close() }()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize fixture: %v", err)
	}
}

// WriteStereo writes left and right float channels as a 16-bit stereo file.
// The channels must have equal length.
func WriteStereo(t *testing.T, path string, sampleRate int, left, right []float64) {
	t.Helper()

	if len(left) != len(right) {
		t.Fatalf("channel length mismatch: %d != %d", len(left), len(right))
	}
	data := make([]int, 0, len(left)*2)
	for i := range left {
		data = append(data, to16(left[i]), to16(right[i]))
	}
	Write(t, path, 2, sampleRate, 16, data)
}

// WriteRaw writes a canonical 44-byte header followed by payload verbatim.
// It is used for fixtures the encoder refuses to produce, such as a data
// chunk that ends in the middle of a frame.
func WriteRaw(t *testing.T, path string, channels, sampleRate, bitDepth int, payload []byte) {
	t.Helper()

	var fmtBody bytes.Buffer
	writeFmt(&fmtBody, 1, channels, sampleRate, bitDepth)
	writeFile(t, path, fmtBody.Bytes(), payload)
}

// WriteExtensible writes a WAVE_FORMAT_EXTENSIBLE file whose SubFormat GUID
// starts with subFormat (1 for PCM, 3 for IEEE float).
func WriteExtensible(t *testing.T, path string, channels, sampleRate, bitDepth int, subFormat uint16, payload []byte) {
	t.Helper()

	var fmtBody bytes.Buffer
	writeFmt(&fmtBody, 0xFFFE, channels, sampleRate, bitDepth)
	_ = binary.Write(&fmtBody, binary.LittleEndian, uint16(22))
	_ = binary.Write(&fmtBody, binary.LittleEndian, uint16(bitDepth))
	_ = binary.Write(&fmtBody, binary.LittleEndian, uint32(0x3)) // front left | front right
	_ = binary.Write(&fmtBody, binary.LittleEndian, subFormat)
	fmtBody.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})
	writeFile(t, path, fmtBody.Bytes(), payload)
}

func writeFmt(buf *bytes.Buffer, format uint16, channels, sampleRate, bitDepth int) {
	blockAlign := channels * bitDepth / 8
	_ = binary.Write(buf, binary.LittleEndian, format)
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitDepth))
}

func writeFile(t *testing.T, path string, fmtBody, payload []byte) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+8+len(fmtBody)+8+len(payload)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(fmtBody)))
	buf.Write(fmtBody)
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write raw fixture: %v", err)
	}
}

// Tone returns n samples of a square wave with the given RMS amplitude.
// A square wave keeps the per-frame RMS exact regardless of frame alignment.
func Tone(n int, rms float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = rms
		} else {
			out[i] = -rms
		}
	}
	return out
}

// Silence returns n zero samples.
func Silence(n int) []float64 {
	return make([]float64, n)
}

func to16(v float64) int {
	return int(math.Round(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
}
