package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rgower/typeset/internal/ai"
	"github.com/rgower/typeset/internal/config"
	"github.com/rgower/typeset/internal/sink"
	"github.com/rgower/typeset/internal/structure"
	"github.com/rgower/typeset/internal/styles"
)

// Orchestrator manages the conversion job queue and worker pool. Each
// worker owns its own converter and arranger; one conversion owns its
// structural state exclusively for its lifetime.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	runner  *ai.CLIRunner
	sink    *sink.Client
	catalog *styles.Catalog
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Start must be called before
// jobs are submitted.
func NewOrchestrator(cfg config.Config, runner *ai.CLIRunner, sinkClient *sink.Client, catalog *styles.Catalog, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		runner:  runner,
		sink:    sinkClient,
		catalog: catalog,
		log:     log,
		cfg:     cfg,
	}
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

func (o *Orchestrator) newWorker() *Worker {
	var converter *ai.Orchestrator
	if o.cfg.AIEnabled && o.runner != nil {
		var validator *ai.Validator
		if o.cfg.ValidationEnabled {
			validator = ai.NewValidator(o.cfg.MaxLengthRatio, o.cfg.DialogueTolerance)
		}
		converter = ai.NewOrchestrator(o.runner, validator, o.log, ai.Models{
			Primary: o.cfg.ModelPrimary,
			Strong:  o.cfg.ModelStrong,
			Fast:    o.cfg.ModelFast,
		}, o.cfg.ChunkThreshold, o.cfg.ContentsKeywords)
	}

	fallback := ai.NewFallback(o.cfg.ChapterKeywords, o.cfg.OpeningQuoteKeywords, o.cfg.NumberedPattern)
	arranger := structure.NewArranger(layoutOptions(o.cfg))
	return NewWorker(converter, fallback, arranger, o.catalog, o.sink, o.log, o.cfg.SeparatorSymbol)
}

func layoutOptions(cfg config.Config) structure.Options {
	return structure.Options{
		TitleKeywords:       cfg.TitleKeywords,
		SectionKeywords:     cfg.SectionKeywords,
		ChapterKeywords:     cfg.ChapterKeywords,
		DedicationKeywords:  cfg.DedicationKeywords,
		ContentsKeywords:    cfg.ContentsKeywords,
		PrefaceKeywords:     cfg.PrefaceKeywords,
		BreakBeforeSections: cfg.BreakBeforeSections,
		BreakBeforeChapters: cfg.BreakBeforeChapters,
		SeparatorEnabled:    cfg.SeparatorEnabled,
		SeparatorPosition:   cfg.SeparatorPosition,
		HierListEnabled:     cfg.HierListsEnabled,
		HierListKeywords:    cfg.HierListKeywords,
		NumberedPattern:     cfg.NumberedPattern,
		SingleChapter:       cfg.SingleChapter,
	}
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
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

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// ModelStats exposes the rolling model-latency aggregate for the API.
func (o *Orchestrator) ModelStats() ai.StatsSnapshot {
	if o.runner == nil || o.runner.Stats == nil {
		return ai.StatsSnapshot{}
	}
	return o.runner.Stats.Snapshot()
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename, title string, data []byte) *Job {
	now := time.Now()
	job := &Job{
		ID:        generateULID(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)
	return job
}
