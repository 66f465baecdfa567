package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/maauso/stereo-diarizer/internal/wav/wavtest"
)

const rate = 8000

func setupEnv(t *testing.T) string {
	t.Helper()
	out := t.TempDir()
	t.Setenv("TEMP_DIR", t.TempDir())
	t.Setenv("OUTPUT_DIR", out)
	t.Setenv("S3_BUCKET", "")
	t.Setenv("S3_REGION", "")
	t.Setenv("LOG_LEVEL", "error")
	return out
}

func writeCall(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.wav")
	left := append(wavtest.Tone(rate, 0.5), wavtest.Silence(rate)...)
	right := append(wavtest.Silence(rate), wavtest.Tone(rate, 0.5)...)
	wavtest.WriteStereo(t, path, rate, left, right)
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_JSON(t *testing.T) {
	out := setupEnv(t)
	input := writeCall(t)

	stdout, _, err := execute(t, input)
	require.NoError(t, err)

	var got struct {
		Status       string            `json:"status"`
		FrameSeconds float64           `json:"frame_seconds"`
		Segments     []map[string]any  `json:"segments"`
		AudioFiles   map[string]string `json:"audio_files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 0.5, got.FrameSeconds)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, "speaker_1", got.Segments[0]["speaker"])
	assert.Equal(t, "speaker_2", got.Segments[1]["speaker"])
	assert.Equal(t, filepath.Join(out, "call", "left.wav"), got.AudioFiles["left"])
	assert.FileExists(t, got.AudioFiles["right"])
}

func TestRoot_YAMLWithFlags(t *testing.T) {
	setupEnv(t)
	input := writeCall(t)
	custom := t.TempDir()

	stdout, _, err := execute(t, input, "--format", "yaml", "--frame-seconds", "0.25", "-o", custom)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, 0.25, got["frame_seconds"])
	assert.FileExists(t, filepath.Join(custom, "call", "left.wav"))
}

func TestRoot_Preset(t *testing.T) {
	setupEnv(t)
	input := writeCall(t)
	presetDir := t.TempDir()
	presetPath := filepath.Join(presetDir, "preset.yaml")
	require.NoError(t, os.WriteFile(presetPath, []byte("frame_seconds: 0.1\nmin_segment_seconds: 0.2\noutput_dir: "+presetDir+"\n"), 0o600))

	stdout, _, err := execute(t, input, "--preset", presetPath)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 0.1, got["frame_seconds"])
	assert.FileExists(t, filepath.Join(presetDir, "call", "left.wav"))

	// Flags win over the preset.
	stdout, _, err = execute(t, input, "--preset", presetPath, "--frame-seconds", "0.5")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 0.5, got["frame_seconds"])
}

func TestRoot_ErrorOutcome(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorIs(t, err, errRunFailed)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "error", got["status"])
	assert.Contains(t, got["error"], "file not found")
}

func TestRoot_BadUsage(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t)
	require.Error(t, err)

	_, _, err = execute(t, "a.wav", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, _, err = execute(t, "a.wav", "--preset", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read preset")
}
