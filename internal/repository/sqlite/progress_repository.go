package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

const progressColumns = `profile_id, word_id, status, stage, repetitions, interval_days,
    learned_at, last_review_at, next_review_at, correct_streak, wrong_streak`

type progressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sqlx.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, profileID, wordID int64) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: profile_id=%d, word_id=%d", profileID, wordID)

	var p models.Progress
	err := r.db.GetContext(ctx, &p, `SELECT `+progressColumns+` FROM user_words WHERE profile_id = ? AND word_id = ?`, profileID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) ListByWords(ctx context.Context, profileID int64, wordIDs []int64) (map[int64]models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("listing progress: profile_id=%d, words=%d", profileID, len(wordIDs))

	out := make(map[int64]models.Progress, len(wordIDs))
	if len(wordIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlBuilder.Select(progressColumns).From("user_words").
		Where(squirrel.Eq{"profile_id": profileID, "word_id": wordIDs}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var rows []models.Progress
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to list progress: %v", err)
		return nil, err
	}
	for _, p := range rows {
		out[p.WordID] = p
	}
	return out, nil
}

func (r *progressRepository) DueForReview(ctx context.Context, profileID int64, targetLang string, now time.Time, limit int) ([]models.ReviewWord, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("selecting due reviews: profile_id=%d, limit=%d", profileID, limit)

	query, args, err := sqlBuilder.
		Select("uw.word_id", "w.lemma").
		Column(squirrel.Expr(displayTranslation+" AS translation", targetLang, profileID, targetLang)).
		Columns("uw.learned_at", "uw.next_review_at", "uw.stage").
		From("user_words uw").
		Join("words w ON w.id = uw.word_id").
		Where(squirrel.Eq{"uw.profile_id": profileID}).
		Where(squirrel.NotEq{"uw.next_review_at": nil}).
		Where(squirrel.LtOrEq{"uw.next_review_at": utc(now)}).
		Where(translationExists, targetLang, profileID, targetLang).
		OrderBy("uw.next_review_at", "uw.word_id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var words []models.ReviewWord
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		log.Error("failed to select due reviews: %v", err)
		return nil, err
	}
	log.Debug("found %d due reviews", len(words))
	return words, nil
}

func (r *progressRepository) ApplyLearn(ctx context.Context, rows []models.Progress, finish *models.SessionFinish) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("applying learn: rows=%d", len(rows))

	inserted := 0
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, p := range rows {
			res, err := tx.NamedExecContext(ctx, `
INSERT INTO user_words (`+progressColumns+`)
VALUES (:profile_id, :word_id, :status, :stage, :repetitions, :interval_days,
    :learned_at, :last_review_at, :next_review_at, :correct_streak, :wrong_streak)
ON CONFLICT(profile_id, word_id) DO NOTHING
`, normalizeProgress(p))
			if err != nil {
				log.Error("failed to insert progress for word %d: %v", p.WordID, err)
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted += int(n)
			}
		}
		return finishSession(ctx, tx, finish)
	})
	if err != nil {
		return 0, err
	}
	log.Debug("learn applied: inserted=%d", inserted)
	return inserted, nil
}

func (r *progressRepository) ApplyReview(ctx context.Context, rows []models.Progress, events []models.ReviewEvent, finish *models.SessionFinish) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("applying review: rows=%d, events=%d", len(rows), len(events))

	return tx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, p := range rows {
			if _, err := tx.NamedExecContext(ctx, `
UPDATE user_words SET
    status = :status,
    stage = :stage,
    repetitions = :repetitions,
    interval_days = :interval_days,
    learned_at = :learned_at,
    last_review_at = :last_review_at,
    next_review_at = :next_review_at,
    correct_streak = :correct_streak,
    wrong_streak = :wrong_streak
WHERE profile_id = :profile_id AND word_id = :word_id
`, normalizeProgress(p)); err != nil {
				log.Error("failed to update progress for word %d: %v", p.WordID, err)
				return err
			}
		}
		for _, e := range events {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO review_events (profile_id, word_id, result, created_at) VALUES (?, ?, ?, ?)
`, e.ProfileID, e.WordID, e.Result, utc(e.CreatedAt)); err != nil {
				log.Error("failed to insert review event for word %d: %v", e.WordID, err)
				return err
			}
		}
		return finishSession(ctx, tx, finish)
	})
}

// finishSession stamps totals on a session that is still open. A finished
// session is left untouched.
func finishSession(ctx context.Context, tx *sqlx.Tx, finish *models.SessionFinish) error {
	if finish == nil {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	res, err := tx.ExecContext(ctx, `
UPDATE study_sessions
SET words_total = ?, words_correct = ?, finished_at = ?
WHERE id = ? AND finished_at IS NULL
`, finish.WordsTotal, finish.WordsCorrect, utc(finish.FinishedAt), finish.SessionID)
	if err != nil {
		log.Error("failed to finish session %d: %v", finish.SessionID, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debug("session %d already finished, totals kept", finish.SessionID)
	}
	return nil
}

func normalizeProgress(p models.Progress) models.Progress {
	p.LearnedAt = utcPtr(p.LearnedAt)
	p.LastReviewAt = utcPtr(p.LastReviewAt)
	p.NextReviewAt = utcPtr(p.NextReviewAt)
	return p
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
