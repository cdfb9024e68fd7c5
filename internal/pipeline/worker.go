package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/paginate"
	"github.com/dgallion1/bookseg/internal/parser"
	"github.com/dgallion1/bookseg/internal/segment"
	"github.com/dgallion1/bookseg/internal/stats"
)

// Worker processes a single book job.
type Worker struct {
	segmenter *segment.Segmenter
	jobs      *JobStore
	stats     *stats.Segments
	log       *slog.Logger
	pageCfg   paginate.Config
	parseOpts parser.Options
}

func NewWorker(seg *segment.Segmenter, jobs *JobStore, st *stats.Segments, log *slog.Logger, pageCfg paginate.Config, parseOpts parser.Options) *Worker {
	return &Worker{
		segmenter: seg,
		jobs:      jobs,
		stats:     st,
		log:       log,
		pageCfg:   pageCfg,
		parseOpts: parseOpts,
	}
}

// Process runs parse, segment and paginate for an uploaded file.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	src, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		src.Title = job.Title
	}
	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	w.run(job, src, log)
}

// run segments and paginates src and stores the result on job. Identical
// markup seen earlier reuses the earlier book.
func (w *Worker) run(job *Job, src *book.Source, log *slog.Logger) {
	hash := ContentHashHex([]byte(src.Markup))
	job.SetContentHash(hash)

	if prev := w.jobs.ByHash(hash); prev != nil && prev != job {
		if b := prev.Book(); b != nil && b.Title == src.Title {
			log.Info("identical content, reusing book", "book_id", b.ID, "from_job", prev.ID)
			job.SetBook(b)
			return
		}
	}

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	start := time.Now()
	res, err := w.segmenter.Segment(src.Markup)
	if err != nil {
		log.Warn("segmentation failed", "error", err)
		job.AddError(fmt.Sprintf("segment: %s", err))
		job.SetStatus(StatusFailed, "segmenting")
		return
	}
	w.stats.Record(time.Since(start), len(res.Chapters), res.Discarded)
	log.Info("segmented book",
		"blocks", res.Blocks,
		"chapters", len(res.Chapters),
		"discarded", res.Discarded,
		"annotated", res.Annotated,
	)
	if len(res.Chapters) == 0 {
		log.Warn("no chapter titles detected", "discarded", res.Discarded)
	}

	// Phase 3: Paginate
	job.SetStatus(StatusPaginating, "paginating")
	pages := paginate.Paginate(res.Chapters, w.pageCfg)

	job.SetBook(&book.Book{
		ID:        hash[:16],
		Title:     src.Title,
		Chapters:  res.Chapters,
		Pages:     pages,
		Blocks:    res.Blocks,
		Discarded: res.Discarded,
		Annotated: res.Annotated,
		CreatedAt: time.Now(),
	})
	log.Info("book ready", "pages", len(pages))
}
