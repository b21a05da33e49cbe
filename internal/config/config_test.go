// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.FFmpeg != "ffmpeg" || cfg.Engine.FFprobe != "ffprobe" {
		t.Errorf("unexpected engine defaults: %+v", cfg.Engine)
	}
	if cfg.Convert.RetryAttempts != 1 {
		t.Errorf("RetryAttempts = %d, want 1", cfg.Convert.RetryAttempts)
	}
	if cfg.Convert.NameTemplate != "{basename}.mp3" {
		t.Errorf("NameTemplate = %q", cfg.Convert.NameTemplate)
	}
}

func TestLoadBackfillsEmptyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
engine:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
convert:
  concurrency: 3
  throttle: low
cover:
  default_seconds: 12
  rules:
    - pattern: "(?i)live"
      seconds: 30
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpeg = %q", cfg.Engine.FFmpeg)
	}
	if cfg.Engine.FFprobe != "ffprobe" {
		t.Errorf("FFprobe not backfilled: %q", cfg.Engine.FFprobe)
	}
	if cfg.Convert.Concurrency != 3 || cfg.Convert.Throttle != "low" {
		t.Errorf("unexpected convert config: %+v", cfg.Convert)
	}
	if cfg.Cover.DefaultSeconds != 12 || len(cfg.Cover.Rules) != 1 {
		t.Errorf("unexpected cover config: %+v", cfg.Cover)
	}
	if cfg.Server.Bind != ":8080" {
		t.Errorf("Bind not backfilled: %q", cfg.Server.Bind)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("convert: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
