// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package report

// Result is the terminal outcome of one conversion task.
type Result struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary aggregates a finished run.
type Summary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Failures  []Result `json:"failures,omitempty"`
}

// Summarize folds per-task results into run totals. Skipped outputs
// count as successes for the run outcome but are reported separately.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.OK && r.Skipped:
			s.Succeeded++
			s.Skipped++
		case r.OK:
			s.Succeeded++
		default:
			s.Failed++
			s.Failures = append(s.Failures, r)
		}
	}
	return s
}

// AllOK reports whether every task reached a successful terminal state.
func (s Summary) AllOK() bool { return s.Failed == 0 }
