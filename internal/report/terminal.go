// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/audiobatch/audiobatch/internal/logger"
)

// Terminal renders run progress as a single bar across all tasks: the
// bar total is tasks*100 and each task contributes its own 0-100 range.
// It is driven by the Stream's drain goroutine, so no locking is needed
// for the bar itself; the mutex only guards Finish racing late events.
type Terminal struct {
	log logger.Logger
	bar *progressbar.ProgressBar

	mu       sync.Mutex
	percents map[int]float64
	finished bool
}

// NewTerminal creates the renderer for a run of total tasks, writing the
// bar to out.
func NewTerminal(out io.Writer, log logger.Logger, total int) *Terminal {
	bar := progressbar.NewOptions64(int64(total)*100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Terminal{
		log:      log,
		bar:      bar,
		percents: make(map[int]float64),
	}
}

// Consume implements Consumer.
func (t *Terminal) Consume(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}

	switch e.Type {
	case EventStart:
		t.log.Info("converting %s", filepath.Base(e.Input))
	case EventProgress:
		t.advance(e.TaskIndex, e.Percent)
	case EventDone:
		t.advance(e.TaskIndex, 100)
		if e.OK {
			t.log.Info("done %s", filepath.Base(e.Output))
		} else {
			t.log.Error("failed %s: %s", filepath.Base(e.Input), e.Error)
		}
	}
}

// advance moves a task to percent, adding only the delta to the shared
// bar so out-of-order task completion never overshoots.
func (t *Terminal) advance(taskIndex int, percent float64) {
	prev := t.percents[taskIndex]
	if percent <= prev {
		return
	}
	t.percents[taskIndex] = percent
	_ = t.bar.Add64(int64(percent - prev))
}

// Finish closes the bar and prints the run summary.
func (t *Terminal) Finish(s Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = true
	_ = t.bar.Finish()

	t.log.Info("%s", FormatSummary(s))
	for _, f := range s.Failures {
		t.log.Error("  %s: %s", f.Input, f.Error)
	}
}

// FormatSummary renders the one-line run summary.
func FormatSummary(s Summary) string {
	line := fmt.Sprintf("%d/%d converted", s.Succeeded, s.Total)
	if s.Skipped > 0 {
		line += fmt.Sprintf(" (%d already existed)", s.Skipped)
	}
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	return line
}
