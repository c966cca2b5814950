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

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, profileID int64, sessionType models.SessionType, wordsTotal int, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating %s session: profile_id=%d, words=%d", sessionType, profileID, wordsTotal)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO study_sessions (profile_id, session_type, words_total, started_at) VALUES (?, ?, ?, ?)
`, profileID, sessionType, wordsTotal, utc(now))
	if err != nil {
		log.Error("failed to create session: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get session id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%d", id)

	var s models.StudySession
	err := r.db.GetContext(ctx, &s, `
SELECT id, profile_id, session_type, words_total, words_correct, started_at, finished_at
FROM study_sessions
WHERE id = ?
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return &s, nil
}
