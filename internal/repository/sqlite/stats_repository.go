package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sqlx.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context, profileID int64, now time.Time) (*models.ProfileCounts, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("counting progress: profile_id=%d", profileID)

	var c models.ProfileCounts
	err := r.db.GetContext(ctx, &c, `
SELECT
    COALESCE(SUM(CASE WHEN status IN ('known', 'learned') THEN 1 ELSE 0 END), 0) AS known_words,
    COALESCE(SUM(CASE WHEN next_review_at IS NOT NULL AND next_review_at <= ? THEN 1 ELSE 0 END), 0) AS review_available
FROM user_words
WHERE profile_id = ?
`, utc(now), profileID)
	if err != nil {
		log.Error("failed to count progress: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *statsRepository) LearnedSince(ctx context.Context, profileID int64, since time.Time) ([]time.Time, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading learned timestamps: profile_id=%d", profileID)

	var stamps []time.Time
	err := r.db.SelectContext(ctx, &stamps, `
SELECT learned_at
FROM user_words
WHERE profile_id = ? AND learned_at IS NOT NULL AND learned_at >= ? AND status IN ('known', 'learned')
ORDER BY learned_at
`, profileID, utc(since))
	if err != nil {
		log.Error("failed to load learned timestamps: %v", err)
		return nil, err
	}
	return stamps, nil
}

func (r *statsRepository) WeakWords(ctx context.Context, profileID int64, limit int) (*models.WeakWords, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading weak words: profile_id=%d, limit=%d", profileID, limit)

	out := &models.WeakWords{Items: []models.WeakWord{}}
	if err := r.db.GetContext(ctx, &out.Total, `
SELECT COUNT(DISTINCT e.word_id)
FROM review_events e
JOIN user_words uw ON uw.profile_id = e.profile_id AND uw.word_id = e.word_id
WHERE e.profile_id = ? AND e.result = 'wrong'
`, profileID); err != nil {
		log.Error("failed to count weak words: %v", err)
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &out.Items, `
SELECT e.word_id, w.lemma, COUNT(*) AS wrong_count, uw.wrong_streak, uw.stage
FROM review_events e
JOIN words w ON w.id = e.word_id
JOIN user_words uw ON uw.profile_id = e.profile_id AND uw.word_id = e.word_id
WHERE e.profile_id = ? AND e.result = 'wrong'
GROUP BY e.word_id
ORDER BY wrong_count DESC, uw.wrong_streak DESC, e.word_id
LIMIT ?
`, profileID, limit); err != nil {
		log.Error("failed to load weak words: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *statsRepository) SaveDashboard(ctx context.Context, profileID int64, data models.RawJSON, now time.Time) error {
	return r.saveCache(ctx, "dashboard_cache", profileID, data, now)
}

func (r *statsRepository) SaveWeakWords(ctx context.Context, profileID int64, data models.RawJSON, now time.Time) error {
	return r.saveCache(ctx, "weak_words_cache", profileID, data, now)
}

func (r *statsRepository) saveCache(ctx context.Context, table string, profileID int64, data models.RawJSON, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("saving %s: profile_id=%d", table, profileID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO `+table+` (profile_id, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(profile_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
`, profileID, data, utc(now))
	if err != nil {
		log.Error("failed to save %s: %v", table, err)
	}
	return err
}

func (r *statsRepository) CachedDashboard(ctx context.Context, profileID int64) (models.RawJSON, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading cached dashboard: profile_id=%d", profileID)

	var data models.RawJSON
	err := r.db.GetContext(ctx, &data, `SELECT data FROM dashboard_cache WHERE profile_id = ?`, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load cached dashboard: %v", err)
		return nil, err
	}
	return data, nil
}
