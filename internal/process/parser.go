// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package process

import "time"

// Parser parses process output (e.g. FFmpeg stderr). Parse returns a
// non-zero value when the line indicates forward progress; the runner
// uses that signal for stall detection.
type Parser interface {
	Parse(line string) uint64
	ResetStats()
	ResetLog()
	Log() []Line
}

// Line is a timestamped log line
type Line struct {
	Timestamp time.Time
	Data      string
}

type nullParser struct{}

// NewNullParser returns a Parser that treats every line as progress.
func NewNullParser() Parser { return &nullParser{} }

func (p *nullParser) Parse(line string) uint64 { return 1 }
func (p *nullParser) ResetStats()              {}
func (p *nullParser) ResetLog()                {}
func (p *nullParser) Log() []Line              { return nil }
