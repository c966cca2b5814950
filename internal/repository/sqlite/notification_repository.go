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

const notificationSettingsColumns = "profile_id, email_enabled, telegram_enabled, push_enabled, review_hour, last_notified_at"

type notificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository implementation
func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

// GetSettings returns the stored settings, or disabled defaults when the
// profile never saved any.
func (r *notificationRepository) GetSettings(ctx context.Context, profileID int64) (*models.NotificationSettings, error) {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("getting notification settings: profile_id=%d", profileID)

	var s models.NotificationSettings
	err := r.db.GetContext(ctx, &s, `SELECT `+notificationSettingsColumns+` FROM notification_settings WHERE profile_id = ?`, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.NotificationSettings{ProfileID: profileID, ReviewHour: models.DefaultReviewHour}, nil
	}
	if err != nil {
		log.Error("failed to get notification settings: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *notificationRepository) UpsertSettings(ctx context.Context, s models.NotificationSettings) error {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("saving notification settings: profile_id=%d", s.ProfileID)

	s.LastNotifiedAt = utcPtr(s.LastNotifiedAt)
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO notification_settings (`+notificationSettingsColumns+`)
VALUES (:profile_id, :email_enabled, :telegram_enabled, :push_enabled, :review_hour, :last_notified_at)
ON CONFLICT(profile_id) DO UPDATE SET
    email_enabled = excluded.email_enabled,
    telegram_enabled = excluded.telegram_enabled,
    push_enabled = excluded.push_enabled,
    review_hour = excluded.review_hour
`, s)
	if err != nil {
		log.Error("failed to save notification settings: %v", err)
	}
	return err
}

func (r *notificationRepository) ListActive(ctx context.Context, profileID *int64) ([]models.NotificationSettings, error) {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("listing active notification settings")

	query := sqlBuilder.Select(notificationSettingsColumns).From("notification_settings").
		Where(squirrel.Or{
			squirrel.Eq{"email_enabled": 1},
			squirrel.Eq{"telegram_enabled": 1},
			squirrel.Eq{"push_enabled": 1},
		}).
		OrderBy("profile_id")
	if profileID != nil {
		query = query.Where(squirrel.Eq{"profile_id": *profileID})
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var settings []models.NotificationSettings
	if err := r.db.SelectContext(ctx, &settings, sqlStr, args...); err != nil {
		log.Error("failed to list notification settings: %v", err)
		return nil, err
	}
	return settings, nil
}

func (r *notificationRepository) CountReviewDue(ctx context.Context, profileID int64, targetLang string, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("counting due reviews: profile_id=%d, lang=%s", profileID, targetLang)

	var count int
	err := r.db.GetContext(ctx, &count, `
SELECT COUNT(*) FROM (
    SELECT uw.word_id
    FROM user_words uw
    JOIN translations t ON t.word_id = uw.word_id AND t.target_lang = ?
    WHERE uw.profile_id = ? AND uw.next_review_at IS NOT NULL AND uw.next_review_at <= ?
    UNION
    SELECT uw.word_id
    FROM user_words uw
    JOIN user_custom_words cw ON cw.word_id = uw.word_id AND cw.profile_id = uw.profile_id AND cw.target_lang = ?
    WHERE uw.profile_id = ? AND uw.next_review_at IS NOT NULL AND uw.next_review_at <= ?
)
`, targetLang, profileID, utc(now), targetLang, profileID, utc(now))
	if err != nil {
		log.Error("failed to count due reviews: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) Notify(ctx context.Context, profileID int64, channels []models.Channel, payload models.RawJSON, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("queueing notifications: profile_id=%d, channels=%v", profileID, channels)

	return tx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, ch := range channels {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO notification_outbox (profile_id, channel, payload, status, scheduled_at)
VALUES (?, ?, ?, 'pending', ?)
`, profileID, ch, payload, utc(now)); err != nil {
				log.Error("failed to insert outbox row: %v", err)
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE notification_settings SET last_notified_at = ? WHERE profile_id = ?
`, utc(now), profileID); err != nil {
			log.Error("failed to stamp last_notified_at: %v", err)
			return err
		}
		return nil
	})
}

func (r *notificationRepository) PendingOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("listing pending outbox: limit=%d", limit)

	if limit <= 0 {
		limit = 100
	}
	var entries []models.OutboxEntry
	err := r.db.SelectContext(ctx, &entries, `
SELECT id, profile_id, channel, payload, status, scheduled_at, sent_at, error
FROM notification_outbox
WHERE status = 'pending'
ORDER BY scheduled_at, id
LIMIT ?
`, limit)
	if err != nil {
		log.Error("failed to list outbox: %v", err)
		return nil, err
	}
	return entries, nil
}

func (r *notificationRepository) MarkOutbox(ctx context.Context, id int64, status models.OutboxStatus, errMsg *string, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("notification_repo")
	log.Debug("marking outbox entry: id=%d, status=%s", id, status)

	var sentAt *time.Time
	if status == models.OutboxSent {
		t := utc(now)
		sentAt = &t
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE notification_outbox SET status = ?, sent_at = ?, error = ? WHERE id = ?
`, status, sentAt, errMsg, id)
	if err != nil {
		log.Error("failed to mark outbox entry: %v", err)
	}
	return err
}
