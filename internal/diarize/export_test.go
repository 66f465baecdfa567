package diarize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTracks(t *testing.T) {
	left := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	right := []float64{-0.1, -0.2, -0.3, -0.4, -0.5, -0.6, -0.7, -0.8}
	s := stereoOf(4, left, right)

	segs := []Segment{
		{Label: SpeakerA, StartSample: 0, EndSample: 2},
		{Label: SpeakerB, StartSample: 2, EndSample: 4},
		{Label: Silence, StartSample: 4, EndSample: 6},
		{Label: Overlap, StartSample: 6, EndSample: 8},
	}

	tracks := SplitTracks(s, segs)
	assert.Equal(t, []float64{0.1, 0.2, 0, 0, 0, 0, 0.7, 0.8}, tracks[0])
	assert.Equal(t, []float64{0, 0, -0.3, -0.4, 0, 0, -0.7, -0.8}, tracks[1])
}

func TestSplitTracks_ClampsOutOfRangeIndices(t *testing.T) {
	s := stereoOf(4, []float64{0.5, 0.5}, []float64{0, 0})

	tracks := SplitTracks(s, []Segment{{Label: SpeakerA, StartSample: -3, EndSample: 10}})
	assert.Equal(t, []float64{0.5, 0.5}, tracks[0])
	assert.Equal(t, []float64{0, 0}, tracks[1])
}

func TestExportTracks_EightBit(t *testing.T) {
	s := stereoOf(8, []float64{0.5, -0.5, 1, 0}, []float64{0.25, 0.25, 0.25, 0.25})
	s.SampleWidth = 1
	dir := filepath.Join(t.TempDir(), "nested", "call")

	files, err := ExportTracks(s, []Segment{
		{Label: SpeakerA, StartSample: 0, EndSample: 2},
		{Label: Silence, StartSample: 2, EndSample: 4},
	}, dir)
	require.NoError(t, err)

	require.Equal(t, map[string]string{TrackLeft: filepath.Join(dir, "left.wav")}, files)
	assert.NoFileExists(t, filepath.Join(dir, "right.wav"))

	raw, err := os.ReadFile(files[TrackLeft])
	require.NoError(t, err)
	require.Len(t, raw, 44+4)
	// Unsigned 8-bit: silence sits at 128 (127.5 rounded half away from zero).
	assert.Equal(t, []byte{191, 64, 128, 128}, raw[44:])
}

func TestExportTracks_NoSegments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "untouched")

	files, err := ExportTracks(stereoOf(8, []float64{1}, []float64{1}), nil, dir)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NoDirExists(t, dir)
}

func TestExportTracks_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := ExportTracks(stereoOf(8, []float64{1}, []float64{1}), []Segment{
		{Label: Overlap, StartSample: 0, EndSample: 1},
	}, filepath.Join(blocker, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output directory")
}

func TestTrackDir(t *testing.T) {
	dir, err := TrackDir("/srv/out", "/data/2024/call-01.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/out", "call-01"), dir)

	dir, err = TrackDir("/srv/out", "archive.tar.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/out", "archive.tar"), dir)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	dir, err = TrackDir("", "call.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "downloads", "diarization", "call"), dir)
}
