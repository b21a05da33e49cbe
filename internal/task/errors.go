// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package task

import "errors"

var (
	// ErrEmptyFile marks a zero-byte input, failed before any backend call.
	ErrEmptyFile = errors.New("empty input file")

	// ErrMissingFile marks an input that vanished between resolution and
	// task start.
	ErrMissingFile = errors.New("input file not found")

	// ErrDuplicateOutput marks a task whose computed output path collides
	// with an earlier task in the same run.
	ErrDuplicateOutput = errors.New("duplicate output path")

	// ErrInvalidTrim marks a malformed trim range string. Raised once,
	// synchronously, before any task is created.
	ErrInvalidTrim = errors.New("invalid trim range")

	// ErrInvalidThrottle marks an unrecognized throttle tier name.
	ErrInvalidThrottle = errors.New("invalid throttle tier")
)
