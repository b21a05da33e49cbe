// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package task

import "sync"

// State is a task's pipeline stage.
type State string

const (
	StatePending  State = "pending"
	StateProbing  State = "probing"
	StateEncoding State = "encoding"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Task is one candidate bound to its computed output path. The terminal
// state is immutable once reached.
type Task struct {
	Index  int
	Input  string
	Output string

	mu    sync.Mutex
	state State
}

func newTask(index int, input, output string) *Task {
	return &Task{Index: index, Input: input, Output: output, state: StatePending}
}

// State returns the current pipeline stage.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	t.state = s
}
