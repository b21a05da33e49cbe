// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package queue

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/audiobatch/audiobatch/internal/report"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	q, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(q.Pending)+len(q.Done)+len(q.Failed) != 0 {
		t.Errorf("expected empty queue, got %+v", q)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.yaml")
	q := ResumeQueue{
		Pending: []string{"/a.mp4"},
		Done:    []string{"/b.mp4"},
		Failed:  []string{"/c.mp4"},
	}
	if err := q.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(q, loaded) {
		t.Errorf("round trip mismatch: %+v != %+v", loaded, q)
	}
}

func TestMerge(t *testing.T) {
	q := ResumeQueue{
		Pending: []string{"/a.mp4", "/b.mp4"},
		Done:    []string{"/c.mp4"},
		Failed:  []string{"/d.mp4"},
	}
	got := q.Merge([]string{"/b.mp4", "/c.mp4", "/e.mp4"})
	want := []string{"/a.mp4", "/b.mp4", "/d.mp4", "/e.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge = %v, want %v", got, want)
	}
}

func TestRecord(t *testing.T) {
	q := ResumeQueue{Pending: []string{"/a.mp4", "/b.mp4", "/c.mp4"}}
	q.Record([]report.Result{
		{Input: "/a.mp4", OK: true},
		{Input: "/b.mp4", Error: "encode boom"},
	})

	if !reflect.DeepEqual(q.Pending, []string{"/c.mp4"}) {
		t.Errorf("pending = %v", q.Pending)
	}
	if !reflect.DeepEqual(q.Done, []string{"/a.mp4"}) {
		t.Errorf("done = %v", q.Done)
	}
	if !reflect.DeepEqual(q.Failed, []string{"/b.mp4"}) {
		t.Errorf("failed = %v", q.Failed)
	}

	// Recording the same outcome twice must not duplicate entries.
	q.Record([]report.Result{{Input: "/a.mp4", OK: true}})
	if len(q.Done) != 1 {
		t.Errorf("done duplicated: %v", q.Done)
	}
}
