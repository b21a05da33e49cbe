// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package task

import (
	"errors"
	"testing"
)

func TestParseTrim(t *testing.T) {
	cases := []struct {
		in         string
		start, end float64
		wantErr    bool
	}{
		{"5-65", 5, 65, false},
		{"5", 5, 0, false}, // open-ended
		{"", 0, 0, false},
		{"0-10.5", 0, 10.5, false},
		{"abc", 0, 0, true},
		{"5-abc", 0, 0, true},
		{"65-5", 0, 0, true}, // end before start
		{"-5", 0, 0, true},
	}
	for _, tc := range cases {
		r, err := ParseTrim(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidTrim) {
				t.Errorf("ParseTrim(%q): want ErrInvalidTrim, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTrim(%q): %v", tc.in, err)
			continue
		}
		if r.Start != tc.start || r.End != tc.end {
			t.Errorf("ParseTrim(%q) = (%v, %v), want (%v, %v)", tc.in, r.Start, r.End, tc.start, tc.end)
		}
	}
}

func TestParseThrottle(t *testing.T) {
	for in, want := range map[string]ThrottleTier{
		"":       ThrottleOff,
		"off":    ThrottleOff,
		"Medium": ThrottleMedium,
		"low":    ThrottleLow,
	} {
		got, err := ParseThrottle(in)
		if err != nil || got != want {
			t.Errorf("ParseThrottle(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}
	if _, err := ParseThrottle("turbo"); !errors.Is(err, ErrInvalidThrottle) {
		t.Errorf("want ErrInvalidThrottle, got %v", err)
	}
}

func TestEffectiveConcurrency(t *testing.T) {
	cases := []struct {
		requested int
		throttle  ThrottleTier
		want      int
	}{
		{4, ThrottleOff, 4},
		{4, ThrottleLow, 1},
		{4, ThrottleMedium, 2},
		{1, ThrottleMedium, 1},
		{1000, ThrottleOff, 64},
	}
	for _, tc := range cases {
		if got := effectiveConcurrency(tc.requested, tc.throttle); got != tc.want {
			t.Errorf("effectiveConcurrency(%d, %s) = %d, want %d", tc.requested, tc.throttle, got, tc.want)
		}
	}

	// Unset concurrency derives from the host CPU count but stays in range.
	if got := effectiveConcurrency(0, ThrottleOff); got < 1 || got > 64 {
		t.Errorf("derived concurrency %d out of range", got)
	}
}
