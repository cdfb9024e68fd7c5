package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/config"
	"github.com/dgallion1/bookseg/internal/paginate"
	"github.com/dgallion1/bookseg/internal/parser"
	"github.com/dgallion1/bookseg/internal/segment"
	"github.com/dgallion1/bookseg/internal/stats"
)

// DefaultTitle names pasted books that arrive without a title.
const DefaultTitle = "Untitled"

// Orchestrator manages the book processing pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	segmenter *segment.Segmenter
	stats     *stats.Segments
	log       *slog.Logger
	cfg       config.Config
	pageCfg   paginate.Config
	parseOpts parser.Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, seg *segment.Segmenter, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		segmenter: seg,
		stats:     stats.NewSegments(cfg.StatsWindow),
		log:       log,
		cfg:       cfg,
		pageCfg:   paginate.Config{PageWords: cfg.PageWords},
		parseOpts: parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}
}

func (o *Orchestrator) newWorker() *Worker {
	return NewWorker(o.segmenter, o.jobs, o.stats, o.log, o.pageCfg, o.parseOpts)
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := o.newWorker()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues an upload job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// SegmentNow segments pasted markup on the caller's goroutine and records
// the result as a completed job.
func (o *Orchestrator) SegmentNow(title, markup string) (*Job, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, segment.ErrEmptyInput
	}
	if title == "" {
		title = DefaultTitle
	}

	now := time.Now()
	job := &Job{
		ID:        NewJobID("paste", now),
		Status:    StatusQueued,
		Phase:     "queued",
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.jobs.Put(job)

	o.newWorker().run(job, &book.Source{Title: title, Markup: markup}, o.log.With("job_id", job.ID))
	if job.Book() == nil {
		snap := job.Snapshot()
		return job, fmt.Errorf("segmentation failed: %s", strings.Join(snap.Progress.Errors, "; "))
	}
	return job, nil
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the segmentation statistics collector.
func (o *Orchestrator) Stats() *stats.Segments {
	return o.stats
}
