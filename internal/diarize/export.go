package diarize

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/maauso/stereo-diarizer/internal/wav"
)

// Track names used as keys in Result.AudioFiles.
const (
	TrackLeft  = "left"
	TrackRight = "right"
)

// silenceFloor is the magnitude below which a track counts as empty.
const silenceFloor = 1e-6

var trackNames = [2]string{TrackLeft, TrackRight}

// SplitTracks builds one mono buffer per channel. Each buffer keeps the
// channel's samples inside segments that activate it and is zero elsewhere.
func SplitTracks(s *wav.Stereo, segments []Segment) [2][]float64 {
	n := s.Len()
	tracks := [2][]float64{make([]float64, n), make([]float64, n)}
	for _, seg := range segments {
		start := min(max(seg.StartSample, 0), n)
		end := min(max(seg.EndSample, 0), n)
		for ch := range tracks {
			if !seg.Label.activates(ch) {
				continue
			}
			for i := start; i < end; i++ {
				tracks[ch][i] = s.At(i, ch)
			}
		}
	}
	return tracks
}

// ExportTracks writes left.wav and right.wav into dir and returns their paths
// keyed by track name. A track with no audible sample is not written.
func ExportTracks(s *wav.Stereo, segments []Segment, dir string) (map[string]string, error) {
	saved := make(map[string]string)
	if len(segments) == 0 {
		return saved, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	for ch, track := range SplitTracks(s, segments) {
		if !audible(track) {
			continue
		}
		path := filepath.Join(dir, trackNames[ch]+".wav")
		if err := wav.SaveMono(path, track, s.SampleRate, s.SampleWidth); err != nil {
			return nil, fmt.Errorf("write %s track: %w", trackNames[ch], err)
		}
		saved[trackNames[ch]] = path
	}
	return saved, nil
}

// DefaultOutputDir returns <cwd>/downloads/diarization.
func DefaultOutputDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return filepath.Join(cwd, "downloads", "diarization"), nil
}

// TrackDir returns the directory tracks for source are written to:
// <base>/<source stem>, with base defaulting to DefaultOutputDir.
func TrackDir(base, source string) (string, error) {
	if base == "" {
		var err error
		if base, err = DefaultOutputDir(); err != nil {
			return "", err
		}
	}
	name := filepath.Base(source)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(base, stem), nil
}

func audible(track []float64) bool {
	for _, v := range track {
		if math.Abs(v) > silenceFloor {
			return true
		}
	}
	return false
}
