package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maauso/stereo-diarizer/internal/bootstrap"
	"github.com/maauso/stereo-diarizer/internal/config"
	"github.com/maauso/stereo-diarizer/internal/diarize"
)

// errRunFailed signals a printed error outcome; the message is already on stdout.
var errRunFailed = errors.New("diarization failed")

// preset is a YAML file of tuning parameters.
type preset struct {
	FrameSeconds      *float64 `yaml:"frame_seconds"`
	SilenceThreshold  *float64 `yaml:"silence_threshold"`
	OverlapMargin     *float64 `yaml:"overlap_margin"`
	MinSegmentSeconds *float64 `yaml:"min_segment_seconds"`
	OutputDir         string   `yaml:"output_dir"`
}

func loadPreset(path string) (diarize.Options, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return diarize.Options{}, fmt.Errorf("read preset: %w", err)
	}
	var p preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return diarize.Options{}, fmt.Errorf("parse preset: %w", err)
	}
	return diarize.Options{
		FrameSeconds:      p.FrameSeconds,
		SilenceThreshold:  p.SilenceThreshold,
		OverlapMargin:     p.OverlapMargin,
		MinSegmentSeconds: p.MinSegmentSeconds,
		OutputDir:         p.OutputDir,
	}, nil
}

type flags struct {
	frameSeconds      float64
	silenceThreshold  float64
	overlapMargin     float64
	minSegmentSeconds float64
	outputDir         string
	presetPath        string
	pushToS3          bool
	format            string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "diarize <file.wav | s3://bucket/key>",
		Short: "Split a two-channel call recording into speaker turns",
		Long: "Labels each frame of a stereo WAV recording as speaker_1 (left), speaker_2 (right),\n" +
			"overlap or silence, prints the segments and writes one isolated track per speaker.\n" +
			"Defaults come from the environment (FRAME_SECONDS, OUTPUT_DIR, S3_BUCKET, ...).",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.format != "json" && f.format != "yaml" {
				return fmt.Errorf("unsupported format %q: want json or yaml", f.format)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.NewLoggerTo(stderr)

			deps, err := bootstrap.NewDependencies(cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			opts, err := f.options(cmd)
			if err != nil {
				return err
			}

			outcome := deps.Service.Run(cmd.Context(), diarize.Request{
				Source:   args[0],
				Options:  opts,
				PushToS3: f.pushToS3,
			})
			if err := printOutcome(stdout, f.format, outcome); err != nil {
				return err
			}
			if !outcome.OK() {
				return errRunFailed
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.Float64Var(&f.frameSeconds, "frame-seconds", diarize.DefaultFrameSeconds, "analysis window length in seconds")
	fs.Float64Var(&f.silenceThreshold, "silence-threshold", diarize.DefaultSilenceThreshold, "overall RMS below which a frame is silence")
	fs.Float64Var(&f.overlapMargin, "overlap-margin", diarize.DefaultOverlapMargin, "relative channel difference below which a frame is overlap")
	fs.Float64Var(&f.minSegmentSeconds, "min-segment-seconds", diarize.DefaultMinSegmentSeconds, "shortest run kept as its own segment")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "base directory for exported tracks")
	fs.StringVar(&f.presetPath, "preset", "", "YAML file with tuning parameters")
	fs.BoolVar(&f.pushToS3, "push-to-s3", false, "upload exported tracks to the configured bucket")
	fs.StringVarP(&f.format, "format", "f", "json", "output format: json or yaml")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// options layers explicitly set flags over the preset. Anything left unset
// falls through to the environment defaults inside the service.
func (f flags) options(cmd *cobra.Command) (diarize.Options, error) {
	var opts diarize.Options
	if f.presetPath != "" {
		p, err := loadPreset(f.presetPath)
		if err != nil {
			return opts, err
		}
		opts = p
	}

	fs := cmd.Flags()
	if fs.Changed("frame-seconds") {
		opts.FrameSeconds = diarize.Float(f.frameSeconds)
	}
	if fs.Changed("silence-threshold") {
		opts.SilenceThreshold = diarize.Float(f.silenceThreshold)
	}
	if fs.Changed("overlap-margin") {
		opts.OverlapMargin = diarize.Float(f.overlapMargin)
	}
	if fs.Changed("min-segment-seconds") {
		opts.MinSegmentSeconds = diarize.Float(f.minSegmentSeconds)
	}
	if fs.Changed("output-dir") {
		opts.OutputDir = f.outputDir
	}
	return opts, nil
}

func printOutcome(w io.Writer, format string, outcome diarize.Outcome) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outcome); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
