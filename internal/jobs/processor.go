package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

const (
	DefaultBatchSize    = 10
	DefaultPollInterval = 2 * time.Second
)

// Processor claims batches of runnable jobs and dispatches them to handlers.
// Job failures are recorded on the job row and never stop the processor.
type Processor struct {
	repo      repository.JobRepository
	handlers  Registry
	batchSize int
	interval  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

type ProcessorOption func(*Processor)

func WithBatchSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProcessor(repo repository.JobRepository, handlers Registry, opts ...ProcessorOption) *Processor {
	p := &Processor{
		repo:      repo,
		handlers:  handlers,
		batchSize: DefaultBatchSize,
		interval:  DefaultPollInterval,
		now:       time.Now,
		log:       logger.Default().WithPrefix("job-processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is done, sleeping for the poll interval after every
// cycle that processed nothing.
func (p *Processor) Run(ctx context.Context, workerID string) error {
	log := p.log.WithField("worker_id", workerID)
	log.Info("processor started: batch=%d, interval=%s", p.batchSize, p.interval)

	for {
		if ctx.Err() != nil {
			log.Info("processor stopped")
			return nil
		}
		n, err := p.RunOnce(ctx, workerID)
		if err != nil {
			log.Error("poll failed: %v", err)
		}
		if n > 0 && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			log.Info("processor stopped")
			return nil
		case <-time.After(p.interval):
		}
	}
}

// RunOnce claims one batch and processes it in queue order. It returns the
// number of jobs processed.
func (p *Processor) RunOnce(ctx context.Context, workerID string) (int, error) {
	log := p.log.WithField("worker_id", workerID)
	ctx = logger.NewContext(ctx, log)

	jobs, err := p.repo.ClaimBatch(ctx, workerID, p.batchSize, p.now())
	if err != nil {
		return 0, fmt.Errorf("claim jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}
	log.Debug("claimed %d jobs", len(jobs))

	for _, job := range jobs {
		p.process(ctx, log, job)
	}
	return len(jobs), nil
}

func (p *Processor) process(ctx context.Context, workerLog *logger.Logger, job models.Job) {
	log := workerLog.WithFields(map[string]any{"job_id": job.ID, "job_type": job.Type})
	jobCtx := logger.NewContext(ctx, log)
	start := time.Now()
	log.Debug("starting job: attempt %d/%d", job.Attempts, job.MaxAttempts)

	result, err := p.execute(jobCtx, job)
	if err != nil {
		status, markErr := p.repo.MarkFailed(jobCtx, job.ID, err.Error(), p.now())
		if markErr != nil {
			log.Error("failed to record job failure: %v", markErr)
			return
		}
		log.Error("job failed after %v (now %s): %v", time.Since(start), status, err)
		return
	}

	raw, err := encodePayload(result)
	if err != nil {
		raw = nil
		log.Warn("job result is not encodable: %v", err)
	}
	if err := p.repo.MarkDone(jobCtx, job.ID, raw, p.now()); err != nil {
		log.Error("failed to record job success: %v", err)
		return
	}
	log.Info("job completed in %v", time.Since(start))
}

// execute runs the handler, turning panics into errors.
func (p *Processor) execute(ctx context.Context, job models.Job) (result any, err error) {
	handler, ok := p.handlers[job.Type]
	if !ok {
		return nil, fmt.Errorf("unknown job type %q", job.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("job panicked: %v\n%s", r, debug.Stack())
			result, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return handler.Handle(ctx, job)
}
