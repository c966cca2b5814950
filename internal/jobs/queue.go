package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// JobQueue provides an abstraction for enqueueing and inspecting background jobs
type JobQueue interface {
	// Enqueue stores a pending job. A zero runAfter means "now"; payload is
	// encoded as JSON unless it already is models.RawJSON.
	Enqueue(ctx context.Context, jobType models.JobType, profileID *int64, payload any, runAfter time.Time) (*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	// ReclaimStale returns running jobs started more than olderThan ago to
	// the queue. A non-positive olderThan does nothing.
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// Queue implements JobQueue on top of the persistent job store.
type Queue struct {
	repo repository.JobRepository
	now  func() time.Time
}

// NewQueue creates a JobQueue. A nil clock uses time.Now.
func NewQueue(repo repository.JobRepository, now func() time.Time) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{repo: repo, now: now}
}

func (q *Queue) Enqueue(ctx context.Context, jobType models.JobType, profileID *int64, payload any, runAfter time.Time) (*models.Job, error) {
	log := logger.FromContext(ctx)
	log.Debug("enqueueing job: type=%s", jobType)

	if !jobType.Valid() {
		return nil, errors.NewValidationError("job_type", "unknown job type "+string(jobType))
	}
	if profileID != nil && *profileID <= 0 {
		return nil, errors.NewValidationError("profile_id", "must be positive")
	}
	raw, err := encodePayload(payload)
	if err != nil {
		return nil, errors.NewValidationError("payload", err.Error())
	}

	job, err := q.repo.Enqueue(ctx, models.NewJob{
		Type:      jobType,
		ProfileID: profileID,
		Payload:   raw,
		RunAfter:  runAfter,
	}, q.now())
	if err != nil {
		log.Error("failed to enqueue job: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("job %d enqueued: type=%s", job.ID, job.Type)
	return job, nil
}

func (q *Queue) Get(ctx context.Context, id int64) (*models.Job, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting job: id=%d", id)

	job, err := q.repo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get job: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if job == nil {
		return nil, errors.NewNotFoundError("job", id)
	}
	return job, nil
}

func (q *Queue) List(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing jobs")

	switch filter.Status {
	case "", models.JobPending, models.JobRunning, models.JobDone, models.JobFailed:
	default:
		return nil, errors.NewValidationError("status", "unknown job status "+string(filter.Status))
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, errors.NewValidationError("job_type", "unknown job type "+string(filter.Type))
	}

	jobs, err := q.repo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list jobs: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (q *Queue) ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	now := q.now()
	n, err := q.repo.ReclaimStale(ctx, now.Add(-olderThan), now)
	if err != nil {
		logger.FromContext(ctx).Error("failed to reclaim stale jobs: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func encodePayload(payload any) (models.RawJSON, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case models.RawJSON:
		if len(p) > 0 && !json.Valid(p) {
			return nil, errInvalidJSON
		}
		return p, nil
	case json.RawMessage:
		if len(p) > 0 && !json.Valid(p) {
			return nil, errInvalidJSON
		}
		return models.RawJSON(p), nil
	default:
		return json.Marshal(p)
	}
}
