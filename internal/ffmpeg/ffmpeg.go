// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package ffmpeg is the only component that talks to the transcoding
// engine: it probes container tags and streams, extracts frames and
// attached pictures, measures loudness (pass 1), and performs the encode
// (pass 2) with fractional progress reporting.

package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/audiobatch/audiobatch/internal/ffmpeg/parse"
	"github.com/audiobatch/audiobatch/internal/meta"
	"github.com/audiobatch/audiobatch/internal/process"
)

// Engine is the transcoding backend boundary the scheduler depends on.
type Engine interface {
	Probe(ctx context.Context, input string) (*ProbeResult, error)
	ExtractFrame(ctx context.Context, input string, seconds float64, outPath string) error
	ExtractAttachedPicture(ctx context.Context, input string, streamIndex int, outPath string) error
	MeasureLoudness(ctx context.Context, input string) (parse.LoudnessStats, error)
	Encode(ctx context.Context, params EncodeParams) error
	Version() string
}

// EncodeParams describes one encode invocation (the only pass, or pass 2
// of the normalization protocol). VBRQuality takes precedence over
// BitrateKbps when both are set; a negative VBRQuality means "unset".
// TrimEnd <= 0 means open-ended.
type EncodeParams struct {
	Input  string
	Output string
	Format string // mp3 | aac | flac | ogg | opus

	BitrateKbps int
	VBRQuality  int
	SampleRate  int
	Channels    int
	Threads     int

	TrimStart float64
	TrimEnd   float64

	Normalize bool
	Loudness  parse.LoudnessStats

	Tags      meta.Bundle
	CoverPath string

	// Duration of the input in seconds, used for percent calculation.
	Duration     float64
	OnProgress   func(percent float64)
	Sampler      process.Sampler
	StallTimeout time.Duration
}

// ProbeStream is one stream from the probe report.
type ProbeStream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Tags        map[string]string `json:"tags"`
	Disposition struct {
		AttachedPic int `json:"attached_pic"`
	} `json:"disposition"`
}

// ProbeFormat is the container-level probe report.
type ProbeFormat struct {
	Duration string            `json:"duration"`
	Size     string            `json:"size"`
	Tags     map[string]string `json:"tags"`
}

// ProbeResult holds container tags, streams, and duration for one input.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

// DurationSeconds returns the container duration, or 0 when unknown.
func (r *ProbeResult) DurationSeconds() float64 {
	d, err := strconv.ParseFloat(r.Format.Duration, 64)
	if err != nil {
		return 0
	}
	return d
}

// AttachedPictureIndex returns the stream index of an embedded cover
// image, or -1 when the container has none.
func (r *ProbeResult) AttachedPictureIndex() int {
	for _, s := range r.Streams {
		if s.Disposition.AttachedPic == 1 {
			return s.Index
		}
	}
	return -1
}

// StreamTags returns the per-stream tag maps in stream order.
func (r *ProbeResult) StreamTags() []map[string]string {
	out := make([]map[string]string, 0, len(r.Streams))
	for _, s := range r.Streams {
		if len(s.Tags) > 0 {
			out = append(out, s.Tags)
		}
	}
	return out
}

// HasVideo reports whether any real (non attached picture) video stream exists.
func (r *ProbeResult) HasVideo() bool {
	for _, s := range r.Streams {
		if s.CodecType == "video" && s.Disposition.AttachedPic == 0 {
			return true
		}
	}
	return false
}

// Config for the engine
type Config struct {
	FFmpeg   string
	FFprobe  string
	LogLines int
}

type engine struct {
	ffmpeg   string
	ffprobe  string
	version  string
	logLines int
}

// New resolves the binaries and verifies the encode binary identifies
// itself as ffmpeg.
func New(config Config) (Engine, error) {
	ffmpegBin, err := exec.LookPath(config.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}
	ffprobeBin, err := exec.LookPath(config.FFprobe)
	if err != nil {
		return nil, fmt.Errorf("invalid ffprobe binary: %w", err)
	}

	version := detectVersion(ffmpegBin)
	if version == "" {
		return nil, fmt.Errorf("invalid ffmpeg: can't parse version")
	}

	e := &engine{
		ffmpeg:   ffmpegBin,
		ffprobe:  ffprobeBin,
		version:  version,
		logLines: config.LogLines,
	}
	if e.logLines <= 0 {
		e.logLines = 100
	}
	return e, nil
}

func (e *engine) Version() string { return e.version }

func (e *engine) Probe(ctx context.Context, input string) (*ProbeResult, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, input)
	}

	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		input,
	)
	cmd.Env = []string{}
	out, err := cmd.Output()
	if err != nil {
		msg := err.Error()
		if exitErr, ok := err.(*exec.ExitError); ok {
			msg = string(exitErr.Stderr)
		}
		if isCorruptMessage(msg) {
			return nil, fmt.Errorf("%w: %s", ErrCorrupt, input)
		}
		return nil, fmt.Errorf("probe %s: %w", input, err)
	}

	var result ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("probe %s: parse report: %w", input, err)
	}
	return &result, nil
}

func (e *engine) ExtractFrame(ctx context.Context, input string, seconds float64, outPath string) error {
	args := []string{
		"-hide_banner", "-y", "-nostdin",
		"-ss", formatSeconds(seconds),
		"-i", input,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	}
	return e.run(ctx, args)
}

func (e *engine) ExtractAttachedPicture(ctx context.Context, input string, streamIndex int, outPath string) error {
	args := []string{
		"-hide_banner", "-y", "-nostdin",
		"-i", input,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-frames:v", "1",
		"-c", "copy",
		outPath,
	}
	return e.run(ctx, args)
}

// run executes a short best-effort ffmpeg invocation (cover extraction).
func (e *engine) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(string(out), 300))
	}
	return nil
}

// MeasureLoudness runs the measurement-only pass against the fixed EBU
// R128 targets and parses the JSON report from stderr. An unparseable
// report yields empty stats, never an error, so the encode pass can fall
// back to static targets.
func (e *engine) MeasureLoudness(ctx context.Context, input string) (parse.LoudnessStats, error) {
	args := []string{
		"-hide_banner", "-nostdin",
		"-i", input,
		"-vn",
		"-af", measureFilter(),
		"-f", "null", "-",
	}
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		if isCorruptMessage(string(out)) {
			return parse.LoudnessStats{}, fmt.Errorf("%w: %s", ErrCorrupt, input)
		}
		return parse.LoudnessStats{}, fmt.Errorf("measure loudness %s: %w", input, err)
	}
	return parse.ParseLoudnessReport(string(out)), nil
}

func (e *engine) Encode(ctx context.Context, params EncodeParams) error {
	args := buildEncodeArgs(params)

	parser := parse.New(parse.Config{
		LogLines:   e.logLines,
		Duration:   encodedDuration(params),
		OnProgress: params.OnProgress,
	})

	err := process.Run(ctx, process.Config{
		Binary:       e.ffmpeg,
		Args:         args,
		Parser:       parser,
		Sampler:      params.Sampler,
		StallTimeout: params.StallTimeout,
	})
	if err != nil {
		if isCorruptMessage(err.Error()) {
			return fmt.Errorf("%w: %s", ErrCorrupt, params.Input)
		}
		return fmt.Errorf("encode %s -> %s: %w", params.Input, params.Output, err)
	}
	return nil
}

// encodedDuration returns the effective output duration given the trim
// window, for percent calculation.
func encodedDuration(params EncodeParams) float64 {
	d := params.Duration
	if d <= 0 {
		return 0
	}
	start := params.TrimStart
	if start < 0 {
		start = 0
	}
	end := d
	if params.TrimEnd > 0 && params.TrimEnd < d {
		end = params.TrimEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
