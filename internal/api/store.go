// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package api

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/audiobatch/audiobatch/internal/report"
	"github.com/audiobatch/audiobatch/internal/task"
)

// ErrUnknownRun is returned for lookups of IDs the store never issued.
var ErrUnknownRun = errors.New("unknown run ID")

const (
	stateRunning  = "running"
	stateFinished = "finished"
)

// Run is one submitted conversion job. It consumes the run's event
// stream, retaining every event so clients can read incrementally by
// sequence number.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Candidates int
	Controller *task.Controller

	mu      sync.Mutex
	state   string
	events  []report.Event
	results []report.Result
	summary report.Summary
}

func newRun(id string, candidates int) *Run {
	return &Run{
		ID:         id,
		CreatedAt:  time.Now(),
		Candidates: candidates,
		Controller: task.NewController(),
		state:      stateRunning,
	}
}

// Consume implements report.Consumer.
func (r *Run) Consume(e report.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// EventsSince returns events with a sequence number greater than seq.
func (r *Run) EventsSince(seq int64) []report.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Sequence numbers are contiguous from 1, so the slice offset is direct.
	if seq < 0 {
		seq = 0
	}
	if int(seq) >= len(r.events) {
		return nil
	}
	out := make([]report.Event, len(r.events)-int(seq))
	copy(out, r.events[seq:])
	return out
}

// Finish records the terminal results. Called once, after the event
// stream is closed.
func (r *Run) Finish(results []report.Result) {
	r.mu.Lock()
	r.state = stateFinished
	r.results = results
	r.summary = report.Summarize(results)
	r.mu.Unlock()
}

func (r *Run) response(includeResults bool) RunResponse {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp := RunResponse{
		ID:         r.ID,
		State:      r.state,
		CreatedAt:  r.CreatedAt.Unix(),
		Candidates: r.Candidates,
		Paused:     r.Controller.Paused(),
	}
	if includeResults && r.state == stateFinished {
		resp.Results = r.results
		summary := r.summary
		resp.Summary = &summary
	}
	return resp
}

// Store indexes runs by ID.
type Store struct {
	mu   sync.Mutex
	runs map[string]*Run
}

// NewStore creates an empty run store.
func NewStore() *Store {
	return &Store{runs: make(map[string]*Run)}
}

// Add registers a new run.
func (s *Store) Add(r *Run) {
	s.mu.Lock()
	s.runs[r.ID] = r
	s.mu.Unlock()
}

// Get looks up one run.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, ErrUnknownRun
	}
	return r, nil
}

// List returns all runs, oldest first.
func (s *Store) List() []*Run {
	s.mu.Lock()
	out := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
