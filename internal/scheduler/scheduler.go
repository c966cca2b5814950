package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

// Options control the periodic tasks. A zero duration disables a task.
type Options struct {
	NotifyEvery time.Duration
	StaleAfter  time.Duration
}

// Scheduler enqueues recurring background work on a fixed cadence.
type Scheduler struct {
	scheduler *gocron.Scheduler
	queue     jobs.JobQueue
	opts      Options
	log       *logger.Logger
}

func New(queue jobs.JobQueue, opts Options) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		queue:     queue,
		opts:      opts,
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Start registers the enabled tasks and runs them in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx = logger.NewContext(ctx, s.log)

	if s.opts.NotifyEvery > 0 {
		if _, err := s.scheduler.Every(s.opts.NotifyEvery).Do(func() { s.EnqueueNotifications(ctx) }); err != nil {
			return fmt.Errorf("schedule notifications: %w", err)
		}
		s.log.Info("review notifications every %s", s.opts.NotifyEvery)
	}
	if s.opts.StaleAfter > 0 {
		every := max(s.opts.StaleAfter/2, time.Minute)
		if _, err := s.scheduler.Every(every).Do(func() { s.SweepStale(ctx) }); err != nil {
			return fmt.Errorf("schedule stale sweep: %w", err)
		}
		s.log.Info("stale job sweep every %s (threshold %s)", every, s.opts.StaleAfter)
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// Run starts the scheduler and stops it when ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// EnqueueNotifications queues a send_review_notifications job unless one is
// already waiting.
func (s *Scheduler) EnqueueNotifications(ctx context.Context) {
	log := logger.FromContext(ctx)

	pending, err := s.queue.List(ctx, models.JobFilter{
		Status: models.JobPending,
		Type:   models.JobSendReviewNotifications,
		Limit:  1,
	})
	if err != nil {
		log.Error("failed to check pending notification jobs: %v", err)
		return
	}
	if len(pending) > 0 {
		log.Debug("notification job %d still pending", pending[0].ID)
		return
	}
	job, err := s.queue.Enqueue(ctx, models.JobSendReviewNotifications, nil, nil, time.Time{})
	if err != nil {
		log.Error("failed to enqueue notification job: %v", err)
		return
	}
	log.Debug("notification job %d enqueued", job.ID)
}

func (s *Scheduler) SweepStale(ctx context.Context) {
	if s.opts.StaleAfter <= 0 {
		return
	}
	n, err := s.queue.ReclaimStale(ctx, s.opts.StaleAfter)
	if err != nil {
		logger.FromContext(ctx).Error("stale sweep failed: %v", err)
		return
	}
	if n > 0 {
		logger.FromContext(ctx).Warn("reclaimed %d stale jobs", n)
	}
}
