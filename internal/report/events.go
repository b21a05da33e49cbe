// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package report aggregates per-task lifecycle events into a terminal
// progress display or an external event sink, and renders the run
// summary. Per task the contract is: at most one start event, zero or
// more non-decreasing progress events, exactly one terminal done event.

package report

import (
	"sync"
	"time"
)

// EventType classifies task lifecycle events.
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventDone     EventType = "done"
)

// Event is one sequenced task lifecycle message.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TaskIndex int       `json:"task_index"`
	Input     string    `json:"input"`
	Output    string    `json:"output,omitempty"`
	Percent   float64   `json:"percent,omitempty"`
	CPU       float64   `json:"cpu_usage,omitempty"`
	Memory    uint64    `json:"memory_bytes,omitempty"`
	OK        bool      `json:"ok,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Consumer drains events. Exactly one consumer is attached to a Stream;
// it observes events in publish order and never concurrently.
type Consumer interface {
	Consume(Event)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(Event)

func (f ConsumerFunc) Consume(e Event) { f(e) }

// Stream is a bounded, ordered event channel between the scheduler and
// one consumer. Publish blocks when the buffer is full, which
// backpressures the scheduler instead of dropping events.
type Stream struct {
	mu     sync.Mutex
	seq    int64
	ch     chan Event
	closed bool
	drain  sync.WaitGroup
}

// NewStream starts the drain goroutine for consumer. buffer <= 0 gets a
// small default.
func NewStream(buffer int, consumer Consumer) *Stream {
	if buffer <= 0 {
		buffer = 64
	}
	s := &Stream{ch: make(chan Event, buffer)}
	s.drain.Add(1)
	go func() {
		defer s.drain.Done()
		for e := range s.ch {
			consumer.Consume(e)
		}
	}()
	return s
}

// Publish assigns the next sequence number and enqueues the event.
// Publishing after Close is a no-op.
func (s *Stream) Publish(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	e.Seq = s.seq
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.ch <- e
	s.mu.Unlock()
}

// Close stops the stream and waits until the consumer has drained every
// published event.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.drain.Wait()
}
