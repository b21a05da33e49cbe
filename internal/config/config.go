// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Convert ConvertConfig `yaml:"convert"`
	Cover   CoverConfig   `yaml:"cover"`
}

// ServerConfig configures the optional HTTP control surface
type ServerConfig struct {
	Bind string `yaml:"bind"`
}

// EngineConfig locates the transcoding binaries
type EngineConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
}

// ConvertConfig holds batch conversion defaults. Zero values mean
// "let the scheduler decide" (e.g. concurrency from CPU count).
type ConvertConfig struct {
	Concurrency      int    `yaml:"concurrency"`
	Throttle         string `yaml:"throttle"`
	StartDelayMillis int    `yaml:"start_delay_millis"`
	RetryAttempts    int    `yaml:"retry_attempts"`
	RetryDelayMillis int    `yaml:"retry_delay_millis"`
	StallTimeoutSecs int    `yaml:"stall_timeout_seconds"`
	NameTemplate     string `yaml:"name_template"`
}

// CoverRule maps a filename pattern to a frame-grab timestamp
type CoverRule struct {
	Pattern string  `yaml:"pattern"`
	Seconds float64 `yaml:"seconds"`
}

// CoverConfig configures cover art fallback extraction
type CoverConfig struct {
	DefaultSeconds float64     `yaml:"default_seconds"`
	Rules          []CoverRule `yaml:"rules"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Bind: ":8080"},
		Engine:  EngineConfig{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Convert: ConvertConfig{
			Throttle:      "off",
			RetryAttempts: 1,
			NameTemplate:  "{basename}.mp3",
		},
		Cover: CoverConfig{DefaultSeconds: 5},
	}
}

// Load reads a YAML config file. A missing file yields the defaults;
// empty values are backfilled after unmarshalling.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Bind == "" {
		cfg.Server.Bind = ":8080"
	}
	if cfg.Engine.FFmpeg == "" {
		cfg.Engine.FFmpeg = "ffmpeg"
	}
	if cfg.Engine.FFprobe == "" {
		cfg.Engine.FFprobe = "ffprobe"
	}
	if cfg.Convert.Throttle == "" {
		cfg.Convert.Throttle = "off"
	}
	if cfg.Convert.RetryAttempts <= 0 {
		cfg.Convert.RetryAttempts = 1
	}
	if cfg.Convert.NameTemplate == "" {
		cfg.Convert.NameTemplate = "{basename}.mp3"
	}
	if cfg.Cover.DefaultSeconds <= 0 {
		cfg.Cover.DefaultSeconds = 5
	}

	return cfg, nil
}
