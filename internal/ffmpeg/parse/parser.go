// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package parse

import (
	"container/ring"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/audiobatch/audiobatch/internal/process"
)

// Progress holds FFmpeg progress info parsed from stderr. Percent is
// derived from the processed time against the known input duration and
// never decreases.
type Progress struct {
	Percent float64 `json:"percent"`
	Time    float64 `json:"time_seconds"`
	Size    uint64  `json:"size_bytes"`
	Speed   float64 `json:"speed"`
}

// Parser implements process.Parser and parses FFmpeg stderr
type Parser interface {
	process.Parser
	Progress() Progress
}

type parser struct {
	re struct {
		size      *regexp.Regexp
		sizeBytes *regexp.Regexp
		time      *regexp.Regexp
		timeMs    *regexp.Regexp
		speed     *regexp.Regexp
	}

	duration   float64
	onProgress func(percent float64)

	log      *ring.Ring
	logLines int

	progress Progress
	lock     sync.RWMutex
}

// Config for the parser. Duration is the input duration in seconds used
// to turn processed time into a percentage; zero disables the percent
// calculation (progress stays at 0 until completion is synthesized by
// the caller). OnProgress, when set, is invoked outside the lock for
// every percent advance.
type Config struct {
	LogLines   int
	Duration   float64
	OnProgress func(percent float64)
}

// New creates a Parser
func New(config Config) Parser {
	p := &parser{
		logLines:   config.LogLines,
		duration:   config.Duration,
		onProgress: config.OnProgress,
	}
	if p.logLines <= 0 {
		p.logLines = 100
	}
	p.re.size = regexp.MustCompile(`size=\s*([0-9]+)kB`)
	p.re.sizeBytes = regexp.MustCompile(`total_size=\s*([0-9]+)`)
	p.re.time = regexp.MustCompile(`time=\s*([0-9]+):([0-9]{2}):([0-9]{2})\.([0-9]+)`)
	p.re.timeMs = regexp.MustCompile(`out_time_ms=\s*([0-9]+)`) // microseconds despite the name
	p.re.speed = regexp.MustCompile(`speed=\s*([0-9\.]+)x`)

	p.log = ring.New(p.logLines)
	return p
}

func (p *parser) Parse(line string) uint64 {
	isProgress := strings.Contains(line, "time=") || strings.Contains(line, "out_time_ms=")
	now := time.Now()

	p.lock.Lock()
	p.log.Value = process.Line{Timestamp: now, Data: line}
	p.log = p.log.Next()

	if !isProgress {
		p.lock.Unlock()
		return 0
	}

	if m := p.re.size.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.progress.Size = x * 1024
		}
	}
	if m := p.re.sizeBytes.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.progress.Size = x
		}
	}
	if m := p.re.time.FindStringSubmatch(line); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		s, _ := strconv.Atoi(m[3])
		frac := 0.0
		if len(m[4]) > 0 {
			if x, err := strconv.ParseUint(m[4], 10, 64); err == nil {
				div := 1.0
				for range m[4] {
					div *= 10
				}
				frac = float64(x) / div
			}
		}
		p.setTime(float64(h*3600+mm*60+s) + frac)
	}
	if m := p.re.timeMs.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.setTime(float64(x) / 1000000.0)
		}
	}
	if m := p.re.speed.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.progress.Speed = x
		}
	}

	percent := p.progress.Percent
	cb := p.onProgress
	millis := uint64(p.progress.Time * 1000)
	p.lock.Unlock()

	if cb != nil {
		cb(percent)
	}
	if millis == 0 {
		// Still counts as activity for stall detection.
		return 1
	}
	return millis
}

// setTime records processed seconds and advances the monotonic percent.
// Caller holds the lock.
func (p *parser) setTime(seconds float64) {
	if seconds > p.progress.Time {
		p.progress.Time = seconds
	}
	if p.duration <= 0 {
		return
	}
	pct := p.progress.Time / p.duration * 100
	if pct > 100 {
		pct = 100
	}
	if pct > p.progress.Percent {
		p.progress.Percent = pct
	}
}

func (p *parser) ResetStats() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.progress = Progress{}
}

func (p *parser) ResetLog() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.log = ring.New(p.logLines)
}

func (p *parser) Log() []process.Line {
	var out []process.Line
	p.lock.RLock()
	p.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(process.Line))
		}
	})
	p.lock.RUnlock()
	return out
}

func (p *parser) Progress() Progress {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.progress
}
