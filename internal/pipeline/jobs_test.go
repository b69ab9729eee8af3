package pipeline

import (
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("book.txt", "", nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusStructuring, "structuring"},
		{StatusArranging, "arranging"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)
		snap := job.Snapshot()
		if snap.Status != tr.status || snap.Phase != tr.phase {
			t.Errorf("expected (%s, %s), got (%s, %s)", tr.status, tr.phase, snap.Status, snap.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Error("UpdatedAt must advance on status change")
		}
	}
}

func TestJob_ChunkProgress(t *testing.T) {
	job := NewJob("book.txt", "", nil)
	job.SetChunkProgress(1, 4, 3)
	snap := job.Snapshot()
	if snap.Progress.ChunksProcessed != 1 || snap.Progress.TotalChunks != 4 || snap.Progress.Attempt != 3 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}

func TestJob_SnapshotErrorsNeverNil(t *testing.T) {
	job := NewJob("book.txt", "", nil)
	if job.Snapshot().Progress.Errors == nil {
		t.Error("snapshot errors must be an empty slice, not nil")
	}
	job.AddError("boom")
	if got := job.Snapshot().Progress.Errors; len(got) != 1 || got[0] != "boom" {
		t.Errorf("unexpected errors %v", got)
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	job := NewJob("book.txt", "", nil)
	store.Put(job)

	if store.Get(job.ID) != job {
		t.Fatal("expected stored job back")
	}
	if store.Get("missing") != nil {
		t.Error("unknown id must return nil")
	}

	time.Sleep(20 * time.Millisecond)
	store.Cleanup()
	if store.Get(job.ID) != nil {
		t.Error("expired job must be evicted")
	}
}

func TestNewJob_Defaults(t *testing.T) {
	data := []byte("payload")
	job := NewJob("story.md", "Custom Title", data)

	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("unexpected initial state %s/%s", job.Status, job.Phase)
	}
	if job.Title != "Custom Title" || job.Filename != "story.md" {
		t.Errorf("unexpected metadata %+v", job)
	}
	if string(job.FileData()) != "payload" {
		t.Error("file data must round-trip")
	}
	if len(job.ID) != 26 {
		t.Errorf("expected 26-char ULID, got %q", job.ID)
	}
}

func TestGenerateULID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := generateULID()
		if len(id) != 26 {
			t.Fatalf("expected 26 chars, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ULID %q", id)
		}
		seen[id] = true
	}
}
