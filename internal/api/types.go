// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package api

import (
	"github.com/audiobatch/audiobatch/internal/meta"
	"github.com/audiobatch/audiobatch/internal/report"
)

// TagOverrides is the user-supplied metadata layer.
type TagOverrides struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Genre   string `json:"genre"`
	Date    string `json:"date"`
	Track   string `json:"track"`
	Comment string `json:"comment"`
}

func (o TagOverrides) bundle() meta.Bundle {
	return meta.Bundle{
		Title:   o.Title,
		Artist:  o.Artist,
		Album:   o.Album,
		Genre:   o.Genre,
		Date:    o.Date,
		Track:   o.Track,
		Comment: o.Comment,
	}
}

// RunRequest for Add
type RunRequest struct {
	Inputs    []string `json:"inputs" binding:"required"`
	OutputDir string   `json:"output_dir" binding:"required"`

	Format       string `json:"format"`
	NameTemplate string `json:"name_template"`

	BitrateKbps int  `json:"bitrate_kbps"`
	VBRQuality  *int `json:"vbr_quality"`
	SampleRate  int  `json:"sample_rate"`
	Channels    int  `json:"channels"`
	Threads     int  `json:"threads"`

	Trim      string `json:"trim"`
	Normalize bool   `json:"normalize"`

	KeepStructure bool `json:"keep_structure"`
	Overwrite     bool `json:"overwrite"`
	DryRun        bool `json:"dry_run"`

	Concurrency      int    `json:"concurrency"`
	Throttle         string `json:"throttle"`
	StartDelayMillis int    `json:"start_delay_millis"`
	RetryAttempts    int    `json:"retry_attempts"`
	RetryDelayMillis int    `json:"retry_delay_millis"`

	AutoMeta       *bool        `json:"auto_meta"`
	PreferDetected bool         `json:"prefer_detected"`
	Overrides      TagOverrides `json:"overrides"`
	Cover          string       `json:"cover"`
}

// RunResponse describes one run in API responses.
type RunResponse struct {
	ID         string          `json:"id"`
	State      string          `json:"state"`
	CreatedAt  int64           `json:"created_at"`
	Candidates int             `json:"candidates"`
	Paused     bool            `json:"paused"`
	Results    []report.Result `json:"results,omitempty"`
	Summary    *report.Summary `json:"summary,omitempty"`
}

// EventsResponse for incremental event reads.
type EventsResponse struct {
	Events []report.Event `json:"events"`
	Last   int64          `json:"last"`
}

// CommandRequest for run control
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// EngineResponse describes the transcoding backend.
type EngineResponse struct {
	Version string `json:"version"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
