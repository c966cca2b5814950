package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

var jobColumns = []string{
	"id", "job_type", "status", "payload", "result", "profile_id", "run_after",
	"attempts", "max_attempts", "last_error", "claimed_by", "started_at",
	"finished_at", "created_at", "updated_at",
}

const staleRunMessage = "reclaimed: worker did not report an outcome"

type jobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new JobRepository implementation
func NewJobRepository(db *sqlx.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Enqueue(ctx context.Context, job models.NewJob, now time.Time) (*models.Job, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("enqueueing job: type=%s", job.Type)

	if job.MaxAttempts <= 0 {
		job.MaxAttempts = models.DefaultMaxAttempts
	}
	if job.RunAfter.IsZero() {
		job.RunAfter = now
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO background_jobs (job_type, status, payload, profile_id, run_after, attempts, max_attempts, created_at, updated_at)
VALUES (?, 'pending', ?, ?, ?, 0, ?, ?, ?)
`, job.Type, job.Payload, job.ProfileID, utc(job.RunAfter), job.MaxAttempts, utc(now), utc(now))
	if err != nil {
		log.Error("failed to enqueue job: %v", err)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get job id: %v", err)
		return nil, err
	}
	log.Debug("job enqueued: id=%d", id)
	return r.Get(ctx, id)
}

func (r *jobRepository) Get(ctx context.Context, id int64) (*models.Job, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("getting job: id=%d", id)

	query, args, err := sqlBuilder.Select(jobColumns...).From("background_jobs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var j models.Job
	err = r.db.GetContext(ctx, &j, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("job not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get job: %v", err)
		return nil, err
	}
	return &j, nil
}

func (r *jobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("listing jobs: status=%s, type=%s, profile_id=%d", filter.Status, filter.Type, filter.ProfileID)

	query := sqlBuilder.Select(jobColumns...).From("background_jobs")
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"job_type": filter.Type})
	}
	if filter.ProfileID != 0 {
		query = query.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query = query.OrderBy("id DESC").Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, sqlStr, args...); err != nil {
		log.Error("failed to list jobs: %v", err)
		return nil, err
	}
	log.Debug("found %d jobs", len(jobs))
	return jobs, nil
}

// ClaimBatch moves runnable pending jobs to running in a single UPDATE, so
// two workers can never claim the same job.
func (r *jobRepository) ClaimBatch(ctx context.Context, workerID string, limit int, now time.Time) ([]models.Job, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("claiming jobs: worker=%s, limit=%d", workerID, limit)

	if limit <= 0 {
		return nil, nil
	}
	var jobs []models.Job
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		var ids []int64
		if err := tx.SelectContext(ctx, &ids, `
UPDATE background_jobs
SET status = 'running', attempts = attempts + 1, started_at = ?, claimed_by = ?, finished_at = NULL, updated_at = ?
WHERE id IN (
    SELECT id FROM background_jobs
    WHERE status = 'pending' AND run_after <= ?
    ORDER BY run_after, id
    LIMIT ?
) AND status = 'pending'
RETURNING id
`, utc(now), workerID, utc(now), utc(now), limit); err != nil {
			log.Error("failed to claim jobs: %v", err)
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		query, args, err := sqlBuilder.Select(jobColumns...).From("background_jobs").
			Where(squirrel.Eq{"id": ids}).
			OrderBy("run_after", "id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.SelectContext(ctx, &jobs, query, args...); err != nil {
			log.Error("failed to load claimed jobs: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// RETURNING order is unspecified; keep the queue order.
	sort.SliceStable(jobs, func(i, j int) bool {
		if !jobs[i].RunAfter.Equal(jobs[j].RunAfter) {
			return jobs[i].RunAfter.Before(jobs[j].RunAfter)
		}
		return jobs[i].ID < jobs[j].ID
	})
	log.Debug("claimed %d jobs", len(jobs))
	return jobs, nil
}

func (r *jobRepository) MarkDone(ctx context.Context, id int64, result models.RawJSON, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("marking job done: id=%d", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE background_jobs
SET status = 'done', result = ?, last_error = NULL, finished_at = ?, updated_at = ?
WHERE id = ? AND status = 'running'
`, result, utc(now), utc(now), id)
	if err != nil {
		log.Error("failed to mark job done: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Warn("job %d was not running, outcome dropped", id)
	}
	return nil
}

// MarkFailed returns the job to pending, or fails it for good once its
// attempts are used up. run_after is left as is.
func (r *jobRepository) MarkFailed(ctx context.Context, id int64, message string, now time.Time) (models.JobStatus, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("marking job failed: id=%d", id)

	var status models.JobStatus
	err := r.db.QueryRowxContext(ctx, `
UPDATE background_jobs
SET last_error = ?,
    status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
    finished_at = CASE WHEN attempts >= max_attempts THEN ? ELSE NULL END,
    updated_at = ?
WHERE id = ? AND status = 'running'
RETURNING status
`, message, utc(now), utc(now), id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("job %d was not running, failure dropped", id)
		return "", nil
	}
	if err != nil {
		log.Error("failed to mark job failed: %v", err)
		return "", err
	}
	return status, nil
}

func (r *jobRepository) ReclaimStale(ctx context.Context, startedBefore, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("reclaiming jobs started before %s", startedBefore.Format(time.RFC3339))

	res, err := r.db.ExecContext(ctx, `
UPDATE background_jobs
SET last_error = ?,
    status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
    finished_at = CASE WHEN attempts >= max_attempts THEN ? ELSE NULL END,
    updated_at = ?
WHERE status = 'running' AND started_at < ?
`, staleRunMessage, utc(now), utc(now), utc(startedBefore))
	if err != nil {
		log.Error("failed to reclaim stale jobs: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info("reclaimed %d stale jobs", n)
	}
	return int(n), nil
}
