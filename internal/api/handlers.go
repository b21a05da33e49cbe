// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"

	"github.com/audiobatch/audiobatch/internal/cover"
	"github.com/audiobatch/audiobatch/internal/ffmpeg"
	"github.com/audiobatch/audiobatch/internal/logger"
	"github.com/audiobatch/audiobatch/internal/mediafile"
	"github.com/audiobatch/audiobatch/internal/report"
	"github.com/audiobatch/audiobatch/internal/task"
)

// Handler holds dependencies
type Handler struct {
	store        *Store
	engine       ffmpeg.Engine
	covers       *cover.Resolver
	log          logger.Logger
	workDir      string
	stallTimeout time.Duration
}

// NewHandler creates API handler. workDir anchors relative input
// specifiers and structure preservation.
func NewHandler(engine ffmpeg.Engine, covers *cover.Resolver, log logger.Logger, workDir string, stallTimeout time.Duration) *Handler {
	return &Handler{
		store:        NewStore(),
		engine:       engine,
		covers:       covers,
		log:          log,
		workDir:      workDir,
		stallTimeout: stallTimeout,
	}
}

func errResp(c *gin.Context, code int, msg, detail string) {
	c.JSON(code, ErrorResponse{Code: code, Message: msg, Detail: detail})
}

// AddRun POST /api/v1/runs
func (h *Handler) AddRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	treq, err := h.buildRequest(&req)
	if err != nil {
		errResp(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	candidates, err := mediafile.Resolve(req.Inputs, h.workDir)
	if err != nil {
		errResp(c, http.StatusBadRequest, "Input resolution failed", err.Error())
		return
	}
	treq.Candidates = candidates

	run := newRun(shortuuid.New(), len(candidates))
	h.store.Add(run)

	stream := report.NewStream(256, run)
	runner := task.NewRunner(task.Config{
		Engine:       h.engine,
		Covers:       h.covers,
		Logger:       h.log,
		Pause:        run.Controller,
		Events:       stream,
		StallTimeout: h.stallTimeout,
	})

	go func() {
		results := runner.Run(context.Background(), treq)
		stream.Close()
		run.Finish(results)
		h.log.Info("run %s finished: %s", run.ID, report.FormatSummary(report.Summarize(results)))
	}()

	c.JSON(http.StatusOK, run.response(false))
}

// buildRequest validates the scheduling-level fields, which must fail
// before any task is created.
func (h *Handler) buildRequest(req *RunRequest) (task.Request, error) {
	trim, err := task.ParseTrim(req.Trim)
	if err != nil {
		return task.Request{}, err
	}
	throttle, err := task.ParseThrottle(req.Throttle)
	if err != nil {
		return task.Request{}, err
	}

	vbr := -1
	if req.VBRQuality != nil {
		vbr = *req.VBRQuality
	}
	autoMeta := true
	if req.AutoMeta != nil {
		autoMeta = *req.AutoMeta
	}

	return task.Request{
		WorkDir:        h.workDir,
		OutputDir:      req.OutputDir,
		Format:         req.Format,
		NameTemplate:   req.NameTemplate,
		BitrateKbps:    req.BitrateKbps,
		VBRQuality:     vbr,
		SampleRate:     req.SampleRate,
		Channels:       req.Channels,
		Threads:        req.Threads,
		Trim:           trim,
		Normalize:      req.Normalize,
		KeepStructure:  req.KeepStructure,
		Overwrite:      req.Overwrite,
		DryRun:         req.DryRun,
		Concurrency:    req.Concurrency,
		Throttle:       throttle,
		StartDelay:     time.Duration(req.StartDelayMillis) * time.Millisecond,
		Retry:          task.RetryPolicy{Attempts: req.RetryAttempts, Delay: time.Duration(req.RetryDelayMillis) * time.Millisecond},
		AutoMeta:       autoMeta,
		PreferDetected: req.PreferDetected,
		Overrides:      req.Overrides.bundle(),
		CoverPath:      req.Cover,
	}, nil
}

// ListRuns GET /api/v1/runs
func (h *Handler) ListRuns(c *gin.Context) {
	runs := h.store.List()
	out := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.response(false))
	}
	c.JSON(http.StatusOK, out)
}

// GetRun GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown run ID", err.Error())
		return
	}
	c.JSON(http.StatusOK, run.response(true))
}

// GetEvents GET /api/v1/runs/:id/events?since=N
func (h *Handler) GetEvents(c *gin.Context) {
	run, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown run ID", err.Error())
		return
	}

	since, err := strconv.ParseInt(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil {
		errResp(c, http.StatusBadRequest, "Invalid since parameter", err.Error())
		return
	}

	events := run.EventsSince(since)
	last := since
	if n := len(events); n > 0 {
		last = events[n-1].Seq
	}
	c.JSON(http.StatusOK, EventsResponse{Events: events, Last: last})
}

// Command PUT /api/v1/runs/:id/command
func (h *Handler) Command(c *gin.Context) {
	run, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown run ID", err.Error())
		return
	}

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	switch req.Command {
	case "pause":
		run.Controller.Pause()
	case "resume":
		run.Controller.Resume()
	default:
		errResp(c, http.StatusBadRequest, "Unknown command", req.Command)
		return
	}
	c.JSON(http.StatusOK, run.response(false))
}

// Engine GET /api/v1/engine
func (h *Handler) Engine(c *gin.Context) {
	c.JSON(http.StatusOK, EngineResponse{Version: h.engine.Version()})
}
