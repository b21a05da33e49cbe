// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package task

import (
	"path/filepath"
	"testing"
)

func TestOutputPathDefaultTemplate(t *testing.T) {
	req := Request{OutputDir: "/out", VBRQuality: -1}
	got := OutputPath(req, "/media/Daft Punk - One More Time.mp4")
	want := filepath.Join("/out", "Daft Punk - One More Time.mp3")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestOutputPathTemplateTokens(t *testing.T) {
	req := Request{
		OutputDir:    "/out",
		NameTemplate: "{basename}_{bitrate}kbps.{ext}",
		BitrateKbps:  192,
		VBRQuality:   -1,
	}
	got := OutputPath(req, "/media/song.mp4")
	want := filepath.Join("/out", "song_192kbps.mp3")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestOutputPathUnknownTokenStaysLiteral(t *testing.T) {
	req := Request{OutputDir: "/out", NameTemplate: "{basename}-{codec}", VBRQuality: -1}
	got := OutputPath(req, "/media/song.mp4")
	want := filepath.Join("/out", "song-{codec}.mp3")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestOutputPathFormatRewritesExtension(t *testing.T) {
	req := Request{OutputDir: "/out", Format: "flac", VBRQuality: -1}
	got := OutputPath(req, "/media/song.mp4")
	want := filepath.Join("/out", "song.flac")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestOutputPathKeepStructure(t *testing.T) {
	req := Request{
		OutputDir:     "/out",
		WorkDir:       "/media",
		KeepStructure: true,
		VBRQuality:    -1,
	}
	got := OutputPath(req, "/media/albums/discovery/song.mp4")
	want := filepath.Join("/out", "albums", "discovery", "song.mp3")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}

	// Inputs outside the working directory fall back to the flat root.
	got = OutputPath(req, "/elsewhere/song.mp4")
	want = filepath.Join("/out", "song.mp3")
	if got != want {
		t.Errorf("OutputPath outside workdir = %q, want %q", got, want)
	}
}

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{
		"mp3":  "mp3",
		"m4a":  "aac",
		"aac":  "aac",
		"FLAC": "flac",
		"ogg":  "ogg",
		"opus": "opus",
		"xyz":  "mp3",
		"":     "mp3",
	} {
		if got := normalizeFormat(in); got != want {
			t.Errorf("normalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
