// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package parse

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LoudnessStats holds the measurement pass of the loudnorm filter.
// Measured is false when no parseable report was found; the encoder then
// falls back to static normalization targets.
type LoudnessStats struct {
	InputI       float64 `json:"input_i"`
	InputTP      float64 `json:"input_tp"`
	InputLRA     float64 `json:"input_lra"`
	InputThresh  float64 `json:"input_thresh"`
	TargetOffset float64 `json:"target_offset"`
	Measured     bool    `json:"measured"`
}

// ParseLoudnessReport extracts the JSON block the loudnorm filter prints
// at the end of a measurement run (print_format=json). The values arrive
// as quoted strings. Any parse failure yields empty stats rather than an
// error; normalization then proceeds with default targets.
func ParseLoudnessReport(stderr string) LoudnessStats {
	start := strings.LastIndex(stderr, "{")
	end := strings.LastIndex(stderr, "}")
	if start < 0 || end <= start {
		return LoudnessStats{}
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(stderr[start:end+1]), &raw); err != nil {
		return LoudnessStats{}
	}

	parse := func(key string) (float64, bool) {
		v, ok := raw[key]
		if !ok {
			return 0, false
		}
		// loudnorm reports silence as "-inf".
		if strings.Contains(v, "inf") {
			return -99, true
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}

	stats := LoudnessStats{}
	var ok bool
	if stats.InputI, ok = parse("input_i"); !ok {
		return LoudnessStats{}
	}
	if stats.InputTP, ok = parse("input_tp"); !ok {
		return LoudnessStats{}
	}
	if stats.InputLRA, ok = parse("input_lra"); !ok {
		return LoudnessStats{}
	}
	if stats.InputThresh, ok = parse("input_thresh"); !ok {
		return LoudnessStats{}
	}
	// target_offset is optional; older builds omit it.
	stats.TargetOffset, _ = parse("target_offset")
	stats.Measured = true
	return stats
}
