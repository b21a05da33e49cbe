// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package parse

import (
	"math"
	"testing"
)

func TestParserPercentFromTime(t *testing.T) {
	p := New(Config{Duration: 200})

	p.Parse("size=    1024kB time=00:00:50.00 bitrate= 128.0kbits/s speed=25.0x")
	prog := p.Progress()
	if math.Abs(prog.Percent-25) > 0.01 {
		t.Errorf("Percent = %v, want 25", prog.Percent)
	}
	if prog.Size != 1024*1024 {
		t.Errorf("Size = %d", prog.Size)
	}
	if prog.Speed != 25.0 {
		t.Errorf("Speed = %v", prog.Speed)
	}

	p.Parse("size=    2048kB time=00:02:00.00 bitrate= 128.0kbits/s speed=25.0x")
	if got := p.Progress().Percent; math.Abs(got-60) > 0.01 {
		t.Errorf("Percent = %v, want 60", got)
	}
}

func TestParserPercentIsMonotonic(t *testing.T) {
	p := New(Config{Duration: 100})
	p.Parse("time=00:00:50.00")
	p.Parse("time=00:00:40.00") // seek backwards must not regress
	if got := p.Progress().Percent; got != 50 {
		t.Errorf("Percent = %v, want 50", got)
	}
}

func TestParserOutTimeMicroseconds(t *testing.T) {
	p := New(Config{Duration: 10})
	p.Parse("out_time_ms=5000000")
	if got := p.Progress().Percent; got != 50 {
		t.Errorf("Percent = %v, want 50", got)
	}
}

func TestParserPercentClampedAt100(t *testing.T) {
	p := New(Config{Duration: 10})
	p.Parse("time=00:00:30.00")
	if got := p.Progress().Percent; got != 100 {
		t.Errorf("Percent = %v, want 100", got)
	}
}

func TestParserNonProgressLinesReturnZero(t *testing.T) {
	p := New(Config{Duration: 10})
	if n := p.Parse("Press [q] to stop, [?] for help"); n != 0 {
		t.Errorf("Parse returned %d for a non-progress line", n)
	}
	if lines := p.Log(); len(lines) != 1 {
		t.Errorf("non-progress line should still be logged, got %d", len(lines))
	}
}

func TestParserOnProgressCallback(t *testing.T) {
	var got []float64
	p := New(Config{Duration: 100, OnProgress: func(pct float64) { got = append(got, pct) }})
	p.Parse("time=00:00:10.00")
	p.Parse("time=00:00:20.00")
	if len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Errorf("callback percents = %v", got)
	}
}

func TestParseLoudnessReport(t *testing.T) {
	stderr := `
[Parsed_loudnorm_0 @ 0x55d]
{
	"input_i" : "-23.61",
	"input_tp" : "-6.33",
	"input_lra" : "4.70",
	"input_thresh" : "-34.13",
	"output_i" : "-16.58",
	"output_tp" : "-2.11",
	"output_lra" : "3.60",
	"output_thresh" : "-27.03",
	"normalization_type" : "dynamic",
	"target_offset" : "0.58"
}`
	stats := ParseLoudnessReport(stderr)
	if !stats.Measured {
		t.Fatal("expected Measured")
	}
	if stats.InputI != -23.61 || stats.InputTP != -6.33 || stats.InputLRA != 4.70 || stats.InputThresh != -34.13 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TargetOffset != 0.58 {
		t.Errorf("TargetOffset = %v", stats.TargetOffset)
	}
}

func TestParseLoudnessReportSilence(t *testing.T) {
	stderr := `{"input_i" : "-inf", "input_tp" : "-inf", "input_lra" : "0.00", "input_thresh" : "-inf"}`
	stats := ParseLoudnessReport(stderr)
	if !stats.Measured {
		t.Fatal("expected Measured for -inf report")
	}
	if stats.InputI != -99 {
		t.Errorf("InputI = %v, want -99 sentinel", stats.InputI)
	}
}

func TestParseLoudnessReportGarbage(t *testing.T) {
	for _, s := range []string{"", "no json here", "{broken", `{"input_i":"abc"}`} {
		if stats := ParseLoudnessReport(s); stats.Measured {
			t.Errorf("ParseLoudnessReport(%q) claimed Measured", s)
		}
	}
}
