// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package queue is the shell-facing resume queue: persisted pending,
// done, and failed path sets an interrupted run leaves behind. The
// conversion core never reads or writes it; it only accepts the merged
// input list.

package queue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/audiobatch/audiobatch/internal/report"
)

// ResumeQueue records run state across interruptions.
type ResumeQueue struct {
	Pending []string `yaml:"pending,omitempty"`
	Done    []string `yaml:"done,omitempty"`
	Failed  []string `yaml:"failed,omitempty"`
}

// Load reads a persisted queue. A missing file is an empty queue.
func Load(path string) (ResumeQueue, error) {
	var q ResumeQueue
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return q, nil
		}
		return q, fmt.Errorf("read resume queue: %w", err)
	}
	if err := yaml.Unmarshal(data, &q); err != nil {
		return ResumeQueue{}, fmt.Errorf("parse resume queue %s: %w", path, err)
	}
	return q, nil
}

// Save persists the queue as YAML.
func (q ResumeQueue) Save(path string) error {
	data, err := yaml.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode resume queue: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write resume queue: %w", err)
	}
	return nil
}

// Merge combines the interrupted run's pending and failed paths with new
// inputs into one deduplicated list, excluding paths already done.
// First-seen order is preserved.
func (q ResumeQueue) Merge(inputs []string) []string {
	done := make(map[string]bool, len(q.Done))
	for _, p := range q.Done {
		done[p] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{q.Pending, q.Failed, inputs} {
		for _, p := range group {
			if p == "" || done[p] || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Record folds a finished run's results into the queue: inputs move from
// pending into done or failed.
func (q *ResumeQueue) Record(results []report.Result) {
	outcome := make(map[string]bool, len(results))
	for _, r := range results {
		outcome[r.Input] = r.OK
	}

	var pending []string
	for _, p := range q.Pending {
		if _, finished := outcome[p]; !finished {
			pending = append(pending, p)
		}
	}
	q.Pending = pending

	for _, r := range results {
		if r.OK {
			q.Done = appendUnique(q.Done, r.Input)
		} else {
			q.Failed = appendUnique(q.Failed, r.Input)
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, p := range list {
		if p == v {
			return list
		}
	}
	return append(list, v)
}
