// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package process

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

func TestScanLineSplitsOnCarriageReturn(t *testing.T) {
	in := "frame=1\rframe=2\rdone\n"
	scanner := bufio.NewScanner(strings.NewReader(in))
	scanner.Split(scanLine)

	var got []string
	for scanner.Scan() {
		got = append(got, scanner.Text())
	}
	want := []string{"frame=1", "frame=2", "done"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

type collectParser struct {
	lines []Line
}

func (p *collectParser) Parse(line string) uint64 {
	p.lines = append(p.lines, Line{Data: line})
	return 1
}
func (p *collectParser) ResetStats() {}
func (p *collectParser) ResetLog()   { p.lines = nil }
func (p *collectParser) Log() []Line { return p.lines }

func TestRunCapturesStderrThroughParser(t *testing.T) {
	p := &collectParser{}
	err := Run(context.Background(), Config{
		Binary: "sh",
		Args:   []string{"-c", "echo one 1>&2; echo two 1>&2"},
		Parser: p,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(p.lines) != 2 {
		t.Fatalf("parsed %d lines, want 2: %v", len(p.lines), p.lines)
	}
}

func TestRunReturnsErrorWithLogTail(t *testing.T) {
	p := &collectParser{}
	err := Run(context.Background(), Config{
		Binary: "sh",
		Args:   []string{"-c", "echo boom 1>&2; exit 3"},
		Parser: p,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry stderr tail: %v", err)
	}
}

func TestRunRejectsEmptyBinary(t *testing.T) {
	if err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
