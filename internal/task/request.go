// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package task is the batch conversion core: it binds resolved candidate
// files to computed output paths and drives them through a
// bounded-concurrency pipeline of probe, metadata merge, cover
// resolution, loudness measurement, and encode.

package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/audiobatch/audiobatch/internal/meta"
)

// ThrottleTier is a coarse concurrency cap independent of the requested
// concurrency value.
type ThrottleTier string

const (
	ThrottleOff    ThrottleTier = "off"
	ThrottleMedium ThrottleTier = "medium"
	ThrottleLow    ThrottleTier = "low"
)

// ParseThrottle validates a throttle tier name. Empty means off.
func ParseThrottle(s string) (ThrottleTier, error) {
	switch ThrottleTier(strings.ToLower(strings.TrimSpace(s))) {
	case "", ThrottleOff:
		return ThrottleOff, nil
	case ThrottleMedium:
		return ThrottleMedium, nil
	case ThrottleLow:
		return ThrottleLow, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrInvalidThrottle, s)
}

// cap returns the tier's concurrency ceiling, 0 meaning unlimited.
func (t ThrottleTier) cap() int {
	switch t {
	case ThrottleLow:
		return 1
	case ThrottleMedium:
		return 2
	}
	return 0
}

// TrimRange is a [start, end) window in seconds. End <= 0 means
// open-ended.
type TrimRange struct {
	Start float64
	End   float64
}

// ParseTrim parses "start-end" or "start" (open-ended). The empty string
// is no trim. A malformed value aborts the run before any task starts.
func ParseTrim(s string) (TrimRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TrimRange{}, nil
	}

	parseSeconds := func(part string) (float64, error) {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: '%s'", ErrInvalidTrim, s)
		}
		return v, nil
	}

	start, end := s, ""
	if idx := strings.Index(s, "-"); idx >= 0 {
		start, end = s[:idx], s[idx+1:]
	}

	var r TrimRange
	var err error
	if r.Start, err = parseSeconds(start); err != nil {
		return TrimRange{}, err
	}
	if end != "" {
		if r.End, err = parseSeconds(end); err != nil {
			return TrimRange{}, err
		}
		if r.End <= r.Start {
			return TrimRange{}, fmt.Errorf("%w: end before start in '%s'", ErrInvalidTrim, s)
		}
	}
	return r, nil
}

// RetryPolicy bounds encode attempts per task. Attempts <= 1 means no
// retry; only the final attempt's error is surfaced.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Request describes one batch conversion job. It is immutable once a run
// starts.
type Request struct {
	// Candidates are already-resolved absolute input paths, in order.
	Candidates []string

	// WorkDir anchors relative-path computation for KeepStructure.
	WorkDir   string
	OutputDir string

	// Format is the target audio format ("mp3" default); it determines
	// the output extension and the encoder branch.
	Format       string
	NameTemplate string

	BitrateKbps int
	// VBRQuality < 0 means unset; VBR wins over bitrate when both given.
	VBRQuality int
	SampleRate int
	Channels   int
	Threads    int

	Trim      TrimRange
	Normalize bool

	KeepStructure bool
	Overwrite     bool
	DryRun        bool

	Concurrency int
	Throttle    ThrottleTier
	StartDelay  time.Duration
	Retry       RetryPolicy

	AutoMeta       bool
	PreferDetected bool
	Overrides      meta.Bundle
	CoverPath      string
}

// effectiveConcurrency clamps the task pool size: requested value, or
// half the logical CPUs when unset, bounded to [1, 64], then capped by
// the throttle tier.
func effectiveConcurrency(requested int, throttle ThrottleTier) int {
	n := requested
	if n <= 0 {
		if logical, err := cpu.Counts(true); err == nil {
			n = logical / 2
		}
	}
	if n < 1 {
		n = 1
	}
	if n > 64 {
		n = 64
	}
	if c := throttle.cap(); c > 0 && n > c {
		n = c
	}
	return n
}
