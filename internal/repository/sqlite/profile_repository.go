package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%d", id)

	var p models.Profile
	err := r.db.GetContext(ctx, &p, `
SELECT id, user_id, native_lang, target_lang, created_at
FROM learning_profiles
WHERE id = ?
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, p models.Profile) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("creating profile: user_id=%d, target_lang=%s", p.UserID, p.TargetLang)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO learning_profiles (user_id, native_lang, target_lang, created_at)
VALUES (?, ?, ?, ?)
`, p.UserID, p.NativeLang, p.TargetLang, utc(p.CreatedAt))
	if err != nil {
		log.Error("failed to create profile: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get profile id: %v", err)
		return 0, err
	}
	log.Debug("profile created: id=%d", id)
	return id, nil
}

func (r *profileRepository) Settings(ctx context.Context, profileID int64) (*models.ProfileSettings, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("loading settings: profile_id=%d", profileID)

	defaults := models.DefaultProfileSettings(profileID)
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO profile_settings (profile_id, daily_new_words, daily_review_words, learn_batch_size)
VALUES (?, ?, ?, ?)
ON CONFLICT(profile_id) DO NOTHING
`, profileID, defaults.DailyNewWords, defaults.DailyReviewWords, defaults.LearnBatchSize); err != nil {
		log.Error("failed to ensure settings row: %v", err)
		return nil, err
	}

	var s models.ProfileSettings
	if err := r.db.GetContext(ctx, &s, `
SELECT profile_id, daily_new_words, daily_review_words, learn_batch_size
FROM profile_settings
WHERE profile_id = ?
`, profileID); err != nil {
		log.Error("failed to load settings: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *profileRepository) UpdateSettings(ctx context.Context, s models.ProfileSettings) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating settings: profile_id=%d", s.ProfileID)

	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO profile_settings (profile_id, daily_new_words, daily_review_words, learn_batch_size)
VALUES (:profile_id, :daily_new_words, :daily_review_words, :learn_batch_size)
ON CONFLICT(profile_id) DO UPDATE SET
    daily_new_words = excluded.daily_new_words,
    daily_review_words = excluded.daily_review_words,
    learn_batch_size = excluded.learn_batch_size
`, s)
	if err != nil {
		log.Error("failed to update settings: %v", err)
	}
	return err
}

func (r *profileRepository) EnableCorpus(ctx context.Context, profileID, corpusID int64, targetWordLimit int) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("enabling corpus: profile_id=%d, corpus_id=%d, limit=%d", profileID, corpusID, targetWordLimit)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO profile_corpora (profile_id, corpus_id, enabled, target_word_limit)
VALUES (?, ?, 1, ?)
ON CONFLICT(profile_id, corpus_id) DO UPDATE SET enabled = 1, target_word_limit = excluded.target_word_limit
`, profileID, corpusID, targetWordLimit)
	if err != nil {
		log.Error("failed to enable corpus: %v", err)
	}
	return err
}
