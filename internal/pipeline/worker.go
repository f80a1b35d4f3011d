package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/caretcaret/aurora/internal/crawler"
	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/store"
	"github.com/caretcaret/aurora/internal/theorytab"
)

// Worker processes jobs from the queue.
type Worker struct {
	clips *store.Store
	crawl *crawler.Crawler
	log   *slog.Logger
}

func NewWorker(clips *store.Store, crawl *crawler.Crawler, log *slog.Logger) *Worker {
	return &Worker{clips: clips, crawl: crawl, log: log}
}

// Process runs a single job to completion.
func (w *Worker) Process(ctx context.Context, job *Job) {
	switch job.Kind {
	case KindCrawl:
		w.processCrawl(ctx, job)
	default:
		w.processIngest(ctx, job)
	}
}

func (w *Worker) processIngest(ctx context.Context, job *Job) {
	w.log.Info("processing ingest job", "job_id", job.ID, "filename", job.Filename)
	job.SetStatus(StatusParsing, "parsing document")

	doc, err := theorytab.ParseDocument(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.log.Error("parse failed", "job_id", job.ID, "error", err)
		job.SetStatus(StatusFailed, "unreadable document")
		return
	}

	collector := &diag.Collector{}
	clips := doc.Clips(diag.Tee{collector, diag.Logger{Log: w.log}})
	job.AddDiagnostics(collector.Events())

	if len(clips) == 0 {
		job.SetStatus(StatusFailed, "no clips produced")
		return
	}

	job.SetStatus(StatusStoring, "storing clips")
	saved, err := w.clips.SaveClips(ctx, clips)
	if err != nil {
		w.log.Error("store failed", "job_id", job.ID, "error", err)
		job.SetStatus(StatusFailed, "store error")
		return
	}

	job.SetClips(saved)
	job.SetStatus(StatusCompleted, "done")
	w.log.Info("ingest job completed", "job_id", job.ID, "clips", saved)
}

func (w *Worker) processCrawl(ctx context.Context, job *Job) {
	w.log.Info("processing crawl job", "job_id", job.ID, "characters", job.Characters)
	job.SetStatus(StatusCrawling, "walking listings")

	summary, err := w.crawl.Run(ctx, job.Characters)
	job.SetCrawlSummary(summary)
	if err != nil {
		w.log.Error("crawl failed", "job_id", job.ID, "error", err)
		job.SetStatus(StatusFailed, "crawl error")
		return
	}

	job.SetStatus(StatusCompleted, "done")
	w.log.Info("crawl job completed", "job_id", job.ID,
		"artists", summary.Artists, "songs", summary.Songs, "clips", summary.Clips)
}
