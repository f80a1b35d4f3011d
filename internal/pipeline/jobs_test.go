package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/caretcaret/aurora/internal/config"
	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/store"
)

func TestNewIngestJob(t *testing.T) {
	job := NewIngestJob("song.xml", []byte("<theorytab/>"))

	if job.ID == "" {
		t.Fatal("expected non-empty job ID")
	}
	if job.Kind != KindIngest {
		t.Errorf("expected kind %q, got %q", KindIngest, job.Kind)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if string(job.FileData()) != "<theorytab/>" {
		t.Error("file data not retained")
	}

	other := NewIngestJob("song.xml", nil)
	if other.ID == job.ID {
		t.Error("expected unique job IDs")
	}
}

func TestJobStatusTransitions(t *testing.T) {
	job := NewCrawlJob("ab")
	before := job.UpdatedAt

	time.Sleep(time.Millisecond)
	job.SetStatus(StatusCrawling, "walking listings")

	if job.Status != StatusCrawling {
		t.Errorf("expected status %q, got %q", StatusCrawling, job.Status)
	}
	if job.Phase != "walking listings" {
		t.Errorf("unexpected phase %q", job.Phase)
	}
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestJobSnapshot(t *testing.T) {
	job := NewIngestJob("song.xml", nil)
	job.SetClips(3)
	job.AddDiagnostics([]diag.Event{
		{Level: diag.Warning, Code: diag.SectionCountMismatch, File: "song.xml"},
	})
	job.SetStatus(StatusCompleted, "done")

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, snap.Status)
	}
	if snap.Progress.Clips != 3 {
		t.Errorf("expected 3 clips, got %d", snap.Progress.Clips)
	}
	if len(snap.Progress.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(snap.Progress.Diagnostics))
	}

	// Snapshot of a fresh job serializes diagnostics as [], not null.
	if diags := NewCrawlJob("a").Snapshot().Progress.Diagnostics; diags == nil {
		t.Error("expected non-nil diagnostics slice")
	}
}

func TestJobStoreCleanup(t *testing.T) {
	s := NewJobStore(50 * time.Millisecond)

	stale := NewIngestJob("old.xml", nil)
	stale.UpdatedAt = time.Now().Add(-time.Second)
	fresh := NewIngestJob("new.xml", nil)
	s.Put(stale)
	s.Put(fresh)

	s.Cleanup()

	if s.Get(stale.ID) != nil {
		t.Error("expected stale job to be evicted")
	}
	if s.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive")
	}
}

const workerDoc = `<theorytab>
  <version>1.2</version>
  <meta>
    <key>C</key>
    <mode>1</mode>
    <beats_in_measure>4</beats_in_measure>
    <YouTubeID>dQw4w9WgXcQ</YouTubeID>
    <global_start>2</global_start>
    <active_start>0</active_start>
    <active_stop>8</active_stop>
  </meta>
  <data>
    <numMeasures>4</numMeasures>
  </data>
</theorytab>`

func newTestWorker(t *testing.T) (*Worker, *store.Store) {
	t.Helper()
	clips, err := store.Open(filepath.Join(t.TempDir(), "clips.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { clips.Close() })
	return NewWorker(clips, nil, slog.New(slog.DiscardHandler)), clips
}

func TestWorkerIngest(t *testing.T) {
	w, clips := newTestWorker(t)

	job := NewIngestJob("song.xml", []byte(workerDoc))
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (phase %q)", StatusCompleted, job.Status, job.Phase)
	}
	if job.Progress.Clips != 1 {
		t.Errorf("expected 1 clip, got %d", job.Progress.Clips)
	}

	stored, err := clips.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored clip, got %d", len(stored))
	}
	if stored[0].Audio.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected video id %q", stored[0].Audio.VideoID)
	}
}

func TestWorkerIngestNoClips(t *testing.T) {
	w, _ := newTestWorker(t)

	// A document without a video ID aborts and yields nothing.
	job := NewIngestJob("bad.xml", []byte(`<theorytab><meta><key>C</key></meta></theorytab>`))
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, job.Status)
	}
	if len(job.Progress.Diagnostics) == 0 {
		t.Error("expected diagnostics explaining the failure")
	}
}

func TestOrchestratorProcessesSubmittedJob(t *testing.T) {
	clips, err := store.Open(filepath.Join(t.TempDir(), "clips.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer clips.Close()

	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, clips, nil, slog.New(slog.DiscardHandler))
	o.Start(context.Background())
	defer o.Stop()

	job := NewIngestJob("song.xml", []byte(workerDoc))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected submitted job to be retrievable")
	}

	deadline := time.After(5 * time.Second)
	for {
		if s := job.Snapshot().Status; s == StatusCompleted || s == StatusFailed {
			if s != StatusCompleted {
				t.Fatalf("expected job to complete, got %q", s)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for job")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestOrchestratorQueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, nil, nil, slog.New(slog.DiscardHandler))
	// Never started, so nothing drains the queue.

	if err := o.Submit(NewCrawlJob("a")); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	overflow := NewCrawlJob("b")
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected overflow submit to fail")
	}
	if overflow.Status != StatusFailed {
		t.Errorf("expected overflow job marked failed, got %q", overflow.Status)
	}
}
