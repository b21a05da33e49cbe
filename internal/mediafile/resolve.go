// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package mediafile resolves input specifiers (literal paths and glob
// patterns) into a deduplicated, extension-filtered candidate list.

package mediafile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Supported media container extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	// video
	".mp4": true, ".mov": true, ".mkv": true, ".avi": true, ".webm": true,
	".flv": true, ".wmv": true, ".m4v": true, ".3gp": true,
	// audio
	".mp3": true, ".wav": true, ".m4a": true, ".aac": true, ".flac": true,
	".ogg": true, ".opus": true, ".wma": true,
}

// IsMedia reports whether path carries a recognized media extension.
func IsMedia(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// Resolve turns a mixed list of literal paths and glob patterns into a
// deduplicated list of absolute paths with recognized media extensions,
// in first-seen order.
//
// A specifier naming an existing regular file is always literal, even when
// it contains glob metacharacters. Otherwise, specifiers containing glob
// metacharacters are expanded against the filesystem; patterns matching
// nothing (or failing to compile) are silently dropped. An empty result is
// not an error.
func Resolve(specifiers []string, cwd string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(path string) error {
		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, abs)
		}
		abs, err := filepath.Abs(abs)
		if err != nil {
			return err
		}
		if seen[abs] || !IsMedia(abs) {
			return nil
		}
		seen[abs] = true
		out = append(out, abs)
		return nil
	}

	for _, spec := range specifiers {
		if spec == "" {
			continue
		}

		if isRegularFile(resolveAgainst(cwd, spec)) {
			if err := add(spec); err != nil {
				return nil, err
			}
			continue
		}

		if !hasGlobMeta(spec) {
			continue
		}

		pattern := resolveAgainst(cwd, spec)
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			continue
		}
		for _, m := range matches {
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func resolveAgainst(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

func isRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[]{}!")
}
