// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package process runs one external encode/probe process to completion,
// feeding its stderr line by line through a Parser. An optional stall
// timeout kills the process when the parser stops reporting progress.

package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ErrStalled is returned when the stall timeout elapses without the
// parser reporting any forward progress.
var ErrStalled = errors.New("process stalled: no progress before timeout")

// Config for a one-shot process run
type Config struct {
	Binary       string
	Args         []string
	Parser       Parser
	Sampler      Sampler
	StallTimeout time.Duration
}

// Run starts the process and blocks until it exits, the context is
// cancelled, or the stall timeout fires. On failure the returned error
// carries the tail of the captured stderr log.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Binary == "" {
		return fmt.Errorf("no valid binary given")
	}

	parser := cfg.Parser
	if parser == nil {
		parser = NewNullParser()
	}
	sampler := cfg.Sampler
	if sampler == nil {
		sampler = NewNullSampler()
	}

	cmd := exec.CommandContext(ctx, cfg.Binary, cfg.Args...)
	cmd.Env = []string{}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	sampler.Start(cmd.Process.Pid)
	defer sampler.Stop()

	parser.ResetStats()
	parser.ResetLog()

	var stall struct {
		last  time.Time
		fired bool
		lock  sync.Mutex
	}
	stall.last = time.Now()

	stallCtx, stopStaler := context.WithCancel(context.Background())
	defer stopStaler()

	if cfg.StallTimeout > 0 {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-stallCtx.Done():
					return
				case t := <-ticker.C:
					stall.lock.Lock()
					expired := t.Sub(stall.last) > cfg.StallTimeout
					if expired {
						stall.fired = true
					}
					stall.lock.Unlock()
					if expired {
						cmd.Process.Kill()
						return
					}
				}
			}
		}()
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanLine)
	for scanner.Scan() {
		if parser.Parse(scanner.Text()) != 0 {
			stall.lock.Lock()
			stall.last = time.Now()
			stall.lock.Unlock()
		}
	}

	waitErr := cmd.Wait()

	stall.lock.Lock()
	stalled := stall.fired
	stall.lock.Unlock()
	if stalled {
		return ErrStalled
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return fmt.Errorf("%w: %s", waitErr, logTail(parser, 5))
	}
	return nil
}

// logTail joins the last n captured stderr lines for error context.
func logTail(parser Parser, n int) string {
	lines := parser.Log()
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Data)
	}
	return strings.Join(out, " | ")
}

// scanLine splits on both \n and \r so FFmpeg's carriage-return status
// updates arrive as separate lines.
func scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, w := utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
		start += w
	}

	for i := start; i < len(data); {
		r, w := utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + w, data[start:i], nil
		}
		i += w
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
