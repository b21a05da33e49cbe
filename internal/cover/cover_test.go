// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package cover

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/audiobatch/audiobatch/internal/config"
	"github.com/audiobatch/audiobatch/internal/ffmpeg"
	"github.com/audiobatch/audiobatch/internal/ffmpeg/parse"
)

// fakeEngine records extraction calls and can be told to fail them.
type fakeEngine struct {
	failPicture bool
	failFrame   bool

	pictureCalls int
	frameCalls   int
	frameSeconds float64
}

func (f *fakeEngine) Probe(ctx context.Context, input string) (*ffmpeg.ProbeResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeEngine) ExtractFrame(ctx context.Context, input string, seconds float64, outPath string) error {
	f.frameCalls++
	f.frameSeconds = seconds
	if f.failFrame {
		return errors.New("frame extraction failed")
	}
	return os.WriteFile(outPath, []byte("jpg"), 0o644)
}

func (f *fakeEngine) ExtractAttachedPicture(ctx context.Context, input string, streamIndex int, outPath string) error {
	f.pictureCalls++
	if f.failPicture {
		return errors.New("no attached picture")
	}
	return os.WriteFile(outPath, []byte("jpg"), 0o644)
}

func (f *fakeEngine) MeasureLoudness(ctx context.Context, input string) (parse.LoudnessStats, error) {
	return parse.LoudnessStats{}, nil
}

func (f *fakeEngine) Encode(ctx context.Context, params ffmpeg.EncodeParams) error { return nil }
func (f *fakeEngine) Version() string                                              { return "test" }

func probeWith(attachedPic bool, video bool) *ffmpeg.ProbeResult {
	pr := &ffmpeg.ProbeResult{}
	pr.Streams = append(pr.Streams, ffmpeg.ProbeStream{Index: 0, CodecType: "audio"})
	if video {
		pr.Streams = append(pr.Streams, ffmpeg.ProbeStream{Index: 1, CodecType: "video"})
	}
	if attachedPic {
		s := ffmpeg.ProbeStream{Index: 2, CodecType: "video"}
		s.Disposition.AttachedPic = 1
		pr.Streams = append(pr.Streams, s)
	}
	return pr
}

func TestResolveExplicitUserCover(t *testing.T) {
	eng := &fakeEngine{}
	r := NewResolver(eng, nil, 0)

	path, temp := r.Resolve(context.Background(), "in.mp4", probeWith(true, true), "my.png", t.TempDir())
	if path != "my.png" || temp {
		t.Fatalf("got (%q, %v), want explicit cover with no cleanup", path, temp)
	}
	if eng.pictureCalls+eng.frameCalls != 0 {
		t.Error("no extraction expected for explicit cover")
	}
}

func TestResolveAttachedPicture(t *testing.T) {
	eng := &fakeEngine{}
	r := NewResolver(eng, nil, 0)
	dir := t.TempDir()

	path, temp := r.Resolve(context.Background(), "in.mp4", probeWith(true, true), "", dir)
	if path == "" || !temp {
		t.Fatalf("got (%q, %v), want temp attached picture", path, temp)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("temp file %q not under output dir", path)
	}
	if eng.frameCalls != 0 {
		t.Error("frame fallback must not run when attached picture succeeds")
	}
}

func TestResolveFrameFallback(t *testing.T) {
	eng := &fakeEngine{failPicture: true}
	r := NewResolver(eng, nil, 12)

	path, temp := r.Resolve(context.Background(), "in.mp4", probeWith(true, true), "", t.TempDir())
	if path == "" || !temp {
		t.Fatalf("got (%q, %v), want frame fallback", path, temp)
	}
	if eng.frameSeconds != 12 {
		t.Errorf("frame at %v, want configured default 12", eng.frameSeconds)
	}
}

func TestResolveAllFailuresSwallowed(t *testing.T) {
	eng := &fakeEngine{failPicture: true, failFrame: true}
	r := NewResolver(eng, nil, 0)

	path, temp := r.Resolve(context.Background(), "in.mp4", probeWith(true, true), "", t.TempDir())
	if path != "" || temp {
		t.Fatalf("got (%q, %v), want absent cover", path, temp)
	}
}

func TestResolveAudioOnlyNoFallback(t *testing.T) {
	eng := &fakeEngine{failPicture: true}
	r := NewResolver(eng, nil, 0)

	path, _ := r.Resolve(context.Background(), "in.mp3", probeWith(false, false), "", t.TempDir())
	if path != "" {
		t.Fatalf("audio-only input must not grab a frame, got %q", path)
	}
	if eng.frameCalls != 0 {
		t.Error("frame extraction attempted on audio-only input")
	}
}

func TestTimestampRules(t *testing.T) {
	rules, err := CompileRules([]config.CoverRule{
		{Pattern: `live`, Seconds: 30},
		{Pattern: `^intro`, Seconds: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	r := NewResolver(&fakeEngine{}, rules, 8)

	cases := []struct {
		base string
		want float64
	}{
		{"Band - Live at Wembley.mp4", 30}, // case-insensitive match
		{"intro sequence.mp4", 1},
		{"plain.mp4", 8}, // configured default
	}
	for _, tc := range cases {
		if got := r.TimestampFor(tc.base); got != tc.want {
			t.Errorf("TimestampFor(%q) = %v, want %v", tc.base, got, tc.want)
		}
	}
}

func TestCompileRulesRejectsBadPattern(t *testing.T) {
	if _, err := CompileRules([]config.CoverRule{{Pattern: "(", Seconds: 1}}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestFixedDefaultTimestamp(t *testing.T) {
	r := NewResolver(&fakeEngine{}, nil, 0)
	if got := r.TimestampFor("x.mp4"); got != 5 {
		t.Errorf("TimestampFor = %v, want fixed default 5", got)
	}
}
