// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package cover locates cover art for an output file: an explicit user
// image, an embedded attached-picture stream, or a representative video
// frame as a fallback. Extraction failures are never fatal.

package cover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lithammer/shortuuid/v4"

	"github.com/audiobatch/audiobatch/internal/config"
	"github.com/audiobatch/audiobatch/internal/ffmpeg"
)

// defaultFrameSeconds is used when neither a rule nor a configured
// default picks the frame-grab timestamp.
const defaultFrameSeconds = 5

// Rule maps a compiled filename pattern to a frame timestamp.
type Rule struct {
	Pattern *regexp.Regexp
	Seconds float64
}

// CompileRules compiles the configured timestamp rules. Patterns match
// case-insensitively against the base filename. A malformed pattern is a
// configuration error reported before any task starts.
func CompileRules(rules []config.CoverRule) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		pattern := strings.TrimSpace(r.Pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid cover rule pattern '%s': %w", r.Pattern, err)
		}
		out = append(out, Rule{Pattern: re, Seconds: r.Seconds})
	}
	return out, nil
}

// Resolver picks cover art for conversion tasks.
type Resolver struct {
	engine         ffmpeg.Engine
	rules          []Rule
	defaultSeconds float64
}

// NewResolver creates a Resolver. defaultSeconds <= 0 falls back to the
// fixed default.
func NewResolver(engine ffmpeg.Engine, rules []Rule, defaultSeconds float64) *Resolver {
	if defaultSeconds <= 0 {
		defaultSeconds = defaultFrameSeconds
	}
	return &Resolver{engine: engine, rules: rules, defaultSeconds: defaultSeconds}
}

// Resolve returns the path to a cover image for input, and whether it is
// a temporary file the caller must delete after the task reaches its
// terminal state. An empty path means "no cover"; that is never an error.
func (r *Resolver) Resolve(ctx context.Context, input string, probed *ffmpeg.ProbeResult, userCover, outDir string) (string, bool) {
	if userCover != "" {
		return userCover, false
	}
	if probed == nil {
		return "", false
	}

	if idx := probed.AttachedPictureIndex(); idx >= 0 {
		tmp := r.tempPath(outDir)
		if err := r.engine.ExtractAttachedPicture(ctx, input, idx, tmp); err == nil {
			return tmp, true
		}
		os.Remove(tmp)
	}

	if probed.HasVideo() {
		tmp := r.tempPath(outDir)
		seconds := r.TimestampFor(filepath.Base(input))
		if err := r.engine.ExtractFrame(ctx, input, seconds, tmp); err == nil {
			return tmp, true
		}
		os.Remove(tmp)
	}

	return "", false
}

// TimestampFor picks the frame-grab timestamp for a base filename: the
// first matching rule wins, else the configured default.
func (r *Resolver) TimestampFor(base string) float64 {
	for _, rule := range r.rules {
		if rule.Pattern.MatchString(base) {
			return rule.Seconds
		}
	}
	return r.defaultSeconds
}

// tempPath builds a uniquely named temp file under the task's output
// directory.
func (r *Resolver) tempPath(outDir string) string {
	return filepath.Join(outDir, fmt.Sprintf(".cover-%s.jpg", shortuuid.New()))
}
