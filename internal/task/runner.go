// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/audiobatch/audiobatch/internal/cover"
	"github.com/audiobatch/audiobatch/internal/ffmpeg"
	"github.com/audiobatch/audiobatch/internal/logger"
	"github.com/audiobatch/audiobatch/internal/meta"
	"github.com/audiobatch/audiobatch/internal/process"
	"github.com/audiobatch/audiobatch/internal/report"
)

// defaultPausePoll is the interval at which a paused task re-checks the
// gate. The task keeps its concurrency slot while waiting.
const defaultPausePoll = 500 * time.Millisecond

// Gate is the external pause capability polled by the scheduler. Pause
// only keeps new task bodies from proceeding; it never stops a running
// encode.
type Gate interface {
	Paused() bool
}

// Controller is the togglable Gate handed to a UI or API surface.
type Controller struct {
	paused atomic.Bool
}

// NewController creates an unpaused Controller.
func NewController() *Controller { return &Controller{} }

func (c *Controller) Pause()       { c.paused.Store(true) }
func (c *Controller) Resume()      { c.paused.Store(false) }
func (c *Controller) Paused() bool { return c.paused.Load() }

// Config wires the scheduler's collaborators.
type Config struct {
	Engine ffmpeg.Engine
	Covers *cover.Resolver
	Logger logger.Logger

	// Pause is optional; nil means the run is never gated.
	Pause Gate
	// Events is optional; nil disables lifecycle events.
	Events *report.Stream

	// StallTimeout > 0 fails an encode whose engine process goes silent.
	StallTimeout time.Duration
	PausePoll    time.Duration
}

// Runner drives conversion tasks at a bounded concurrency.
type Runner struct {
	engine       ffmpeg.Engine
	covers       *cover.Resolver
	log          logger.Logger
	pause        Gate
	events       *report.Stream
	stallTimeout time.Duration
	pausePoll    time.Duration
}

// NewRunner creates a Runner.
func NewRunner(config Config) *Runner {
	r := &Runner{
		engine:       config.Engine,
		covers:       config.Covers,
		log:          config.Logger,
		pause:        config.Pause,
		events:       config.Events,
		stallTimeout: config.StallTimeout,
		pausePoll:    config.PausePoll,
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	if r.pausePoll <= 0 {
		r.pausePoll = defaultPausePoll
	}
	return r
}

// Run converts every candidate and returns one result per candidate, in
// candidate order. It resolves only when every task reached its terminal
// state; per-task failures never abort the run.
func (r *Runner) Run(ctx context.Context, req Request) []report.Result {
	results := make([]report.Result, len(req.Candidates))
	if len(req.Candidates) == 0 {
		return results
	}

	tasks := make([]*Task, len(req.Candidates))
	firstByOutput := make(map[string]int, len(req.Candidates))
	for i, input := range req.Candidates {
		tasks[i] = newTask(i, input, OutputPath(req, input))
		if _, taken := firstByOutput[tasks[i].Output]; !taken {
			firstByOutput[tasks[i].Output] = i
		}
	}

	workers := effectiveConcurrency(req.Concurrency, req.Throttle)
	r.log.Debug("running %d tasks at concurrency %d", len(tasks), workers)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, t := range tasks {
		// Slots are granted in candidate-list order.
		sem <- struct{}{}
		if i > 0 && req.StartDelay > 0 {
			time.Sleep(req.StartDelay)
		}

		wg.Add(1)
		go func(t *Task) {
			defer wg.Done()
			defer func() { <-sem }()
			results[t.Index] = r.runTask(ctx, req, t, firstByOutput[t.Output] != t.Index)
		}(t)
	}
	wg.Wait()
	return results
}

// runTask drives one task to its terminal state and emits exactly one
// done event for it.
func (r *Runner) runTask(ctx context.Context, req Request, t *Task, duplicateOutput bool) report.Result {
	res := report.Result{Input: t.Input, Output: t.Output}

	fail := func(err error) report.Result {
		t.setState(StateFailed)
		res.Error = err.Error()
		r.publish(report.Event{Type: report.EventDone, TaskIndex: t.Index, Input: t.Input, Output: t.Output, Error: res.Error})
		return res
	}
	succeed := func() report.Result {
		t.setState(StateDone)
		res.OK = true
		r.publish(report.Event{Type: report.EventDone, TaskIndex: t.Index, Input: t.Input, Output: t.Output, OK: true})
		return res
	}

	r.waitResumed(ctx)

	if duplicateOutput {
		return fail(fmt.Errorf("%w: %s", ErrDuplicateOutput, t.Output))
	}

	info, err := os.Stat(t.Input)
	if err != nil {
		return fail(fmt.Errorf("%w: %s", ErrMissingFile, t.Input))
	}
	if info.Size() == 0 {
		return fail(fmt.Errorf("%w: %s", ErrEmptyFile, t.Input))
	}

	// Skip rule: an existing output without overwrite is an immediate
	// success, before any backend call.
	if !req.Overwrite {
		if _, err := os.Stat(t.Output); err == nil {
			res.Skipped = true
			return succeed()
		}
	}
	if req.DryRun {
		res.DryRun = true
		return succeed()
	}

	r.publish(report.Event{Type: report.EventStart, TaskIndex: t.Index, Input: t.Input, Output: t.Output})

	if err := os.MkdirAll(filepath.Dir(t.Output), 0o755); err != nil {
		return fail(fmt.Errorf("create output directory: %w", err))
	}

	// The cover is resolved on the first attempt and its temp file
	// removed once, after the whole task completes.
	pipeline := &taskPipeline{runner: r, req: req, task: t, sampler: process.NewSysSampler()}
	defer pipeline.cleanup()

	// Progress is monotonic per task across retries, clamped to [1,99]
	// while in flight. Each event carries the encode process's current
	// resource usage.
	var lastPercent float64
	pipeline.onProgress = func(percent float64) {
		if percent < 1 {
			percent = 1
		}
		if percent > 99 {
			percent = 99
		}
		if percent <= lastPercent {
			return
		}
		lastPercent = percent
		cpu, memory := pipeline.sampler.Current()
		r.publish(report.Event{
			Type:      report.EventProgress,
			TaskIndex: t.Index,
			Input:     t.Input,
			Output:    t.Output,
			Percent:   percent,
			CPU:       cpu,
			Memory:    memory,
		})
	}

	attempts := req.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		err = pipeline.attempt(ctx)
		if err == nil {
			return succeed()
		}
		if attempt >= attempts {
			break
		}
		r.log.Debug("attempt %d/%d failed for %s: %v", attempt, attempts, t.Input, err)
		if req.Retry.Delay > 0 {
			select {
			case <-ctx.Done():
				return fail(ctx.Err())
			case <-time.After(req.Retry.Delay):
			}
		}
	}
	return fail(err)
}

// waitResumed blocks while the pause gate is closed, re-checking on a
// fixed interval. The concurrency slot stays held.
func (r *Runner) waitResumed(ctx context.Context) {
	if r.pause == nil {
		return
	}
	for r.pause.Paused() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.pausePoll):
		}
	}
}

func (r *Runner) publish(e report.Event) {
	if r.events == nil {
		return
	}
	r.events.Publish(e)
}

// taskPipeline holds per-task state that survives retry attempts.
type taskPipeline struct {
	runner     *Runner
	req        Request
	task       *Task
	sampler    process.Sampler
	onProgress func(float64)

	coverResolved bool
	coverPath     string
	coverTemp     bool
}

// attempt runs the sequential pipeline once: probe, metadata merge,
// cover resolution, loudness measurement, encode.
func (p *taskPipeline) attempt(ctx context.Context) error {
	r, req, t := p.runner, p.req, p.task

	t.setState(StateProbing)
	probed, err := r.engine.Probe(ctx, t.Input)
	if err != nil {
		return err
	}

	base := filepath.Base(t.Input)
	basename := base[:len(base)-len(filepath.Ext(base))]
	tags := meta.Detect(basename, probed.Format.Tags, probed.StreamTags(), req.Overrides, req.AutoMeta, req.PreferDetected)

	if !p.coverResolved {
		p.coverResolved = true
		if r.covers != nil {
			p.coverPath, p.coverTemp = r.covers.Resolve(ctx, t.Input, probed, req.CoverPath, filepath.Dir(t.Output))
		} else if req.CoverPath != "" {
			p.coverPath = req.CoverPath
		}
	}
	tags.CoverImagePath = p.coverPath

	params := ffmpeg.EncodeParams{
		Input:        t.Input,
		Output:       t.Output,
		Format:       normalizeFormat(req.Format),
		BitrateKbps:  req.BitrateKbps,
		VBRQuality:   req.VBRQuality,
		SampleRate:   req.SampleRate,
		Channels:     req.Channels,
		Threads:      req.Threads,
		TrimStart:    req.Trim.Start,
		TrimEnd:      req.Trim.End,
		Normalize:    req.Normalize,
		Tags:         tags,
		CoverPath:    p.coverPath,
		Duration:     probed.DurationSeconds(),
		OnProgress:   p.onProgress,
		Sampler:      p.sampler,
		StallTimeout: r.stallTimeout,
	}

	if req.Normalize {
		stats, err := r.engine.MeasureLoudness(ctx, t.Input)
		if err != nil {
			return err
		}
		params.Loudness = stats
	}

	t.setState(StateEncoding)
	return r.engine.Encode(ctx, params)
}

// cleanup removes the temp cover file, once per task.
func (p *taskPipeline) cleanup() {
	if p.coverTemp && p.coverPath != "" {
		if err := os.Remove(p.coverPath); err != nil && !os.IsNotExist(err) {
			p.runner.log.Debug("remove temp cover %s: %v", p.coverPath, err)
		}
		p.coverPath, p.coverTemp = "", false
	}
}
