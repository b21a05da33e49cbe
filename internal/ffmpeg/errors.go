// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package ffmpeg

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound marks an input that vanished between resolution and probing.
	ErrNotFound = errors.New("input file not found")
	// ErrCorrupt marks unreadable media detected via known engine messages.
	ErrCorrupt = errors.New("invalid or corrupted file")
)

// Stderr fragments the engine emits for unreadable inputs.
var corruptMarkers = []string{
	"Invalid data found when processing input",
	"moov atom not found",
	"could not find codec parameters",
	"Header missing",
	"Invalid argument",
	"EBML header parsing failed",
}

// isCorruptMessage reports whether engine output indicates unreadable media.
func isCorruptMessage(s string) bool {
	for _, marker := range corruptMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
