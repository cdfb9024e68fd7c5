package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/bookseg/internal/config"
	"github.com/dgallion1/bookseg/internal/segment"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	seg, err := segment.New(segment.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := config.Config{
		WorkerCount:  1,
		MaxQueueSize: 2,
		JobTTL:       time.Hour,
		PageWords:    350,
		StatsWindow:  time.Hour,
	}
	return NewOrchestrator(cfg, seg, testLogger())
}

const pasted = `<p>Preface</p><p class="p8">Chapter One</p><p>body one</p><p>2 Next</p><p>body two</p>`

func TestSegmentNow(t *testing.T) {
	o := testOrchestrator(t)
	job, err := o.SegmentNow("", pasted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, snap.Status)
	}
	if snap.Title != DefaultTitle {
		t.Errorf("expected title %q, got %q", DefaultTitle, snap.Title)
	}
	if snap.Progress.Chapters != 2 {
		t.Errorf("expected 2 chapters, got %d", snap.Progress.Chapters)
	}
	if snap.Progress.Discarded != 1 {
		t.Errorf("expected 1 discarded block, got %d", snap.Progress.Discarded)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected job to be stored")
	}
	if o.Stats().Snapshot().Count != 1 {
		t.Errorf("expected 1 recorded run, got %d", o.Stats().Snapshot().Count)
	}

	b := job.Book()
	if b == nil {
		t.Fatal("expected a book")
	}
	if len(b.Pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(b.Pages))
	}
}

func TestSegmentNow_EmptyInput(t *testing.T) {
	o := testOrchestrator(t)
	job, err := o.SegmentNow("x", "  \n\t ")
	if !errors.Is(err, segment.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if job != nil {
		t.Error("expected no job for empty input")
	}
}

func TestSegmentNow_ReusesIdenticalContent(t *testing.T) {
	o := testOrchestrator(t)
	first, err := o.SegmentNow("Same", pasted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := o.SegmentNow("Same", pasted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected distinct jobs")
	}
	if first.Book() != second.Book() {
		t.Error("expected the second job to reuse the first book")
	}
	if o.Stats().Snapshot().Count != 1 {
		t.Errorf("expected one segmentation run, got %d", o.Stats().Snapshot().Count)
	}
}

func TestSubmit_Process(t *testing.T) {
	o := testOrchestrator(t)
	o.Start(context.Background())
	defer o.Stop()

	now := time.Now()
	job := &Job{
		ID:        NewJobID("book.txt", now),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  "book.txt",
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData([]byte("1 Opening\n\nfirst words here\n\n2 Closing\n\nlast words"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s := job.Snapshot().Status
		if s == StatusCompleted || s == StatusFailed {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Title != "book" {
		t.Errorf("expected title from filename, got %q", snap.Title)
	}
	if snap.Progress.Chapters != 2 {
		t.Errorf("expected 2 chapters, got %d", snap.Progress.Chapters)
	}
	if job.FileData() != nil {
		t.Error("expected upload bytes released after parsing")
	}
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	o := testOrchestrator(t)
	job := &Job{ID: "bad", Filename: "book.xyz"}
	o.newWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", snap.Progress.Errors)
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	o := testOrchestrator(t)
	// No workers started, so the queue only fills.
	for i := 0; i < 2; i++ {
		job := &Job{ID: NewJobID("q", time.Unix(int64(i), 0)), Filename: "a.txt"}
		if err := o.Submit(job); err != nil {
			t.Fatalf("unexpected error on job %d: %v", i, err)
		}
	}
	if o.QueueDepth() != 2 {
		t.Errorf("expected queue depth 2, got %d", o.QueueDepth())
	}

	overflow := &Job{ID: "overflow", Filename: "a.txt"}
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if overflow.Snapshot().Status != StatusFailed {
		t.Errorf("expected overflow job failed, got %q", overflow.Snapshot().Status)
	}
}
