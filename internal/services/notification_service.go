package services

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// NotificationService manages review reminders and their outbox.
type NotificationService interface {
	GetSettings(ctx context.Context, profileID int64) (*models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, profileID int64, update models.NotificationSettingsUpdate) (*models.NotificationSettings, error)
	// SendReviewNotifications queues reminders for every active profile, or
	// only for profileID when set, and returns how many profiles were notified.
	SendReviewNotifications(ctx context.Context, profileID *int64, now time.Time) (int, error)
	PendingOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	MarkOutbox(ctx context.Context, id int64, status models.OutboxStatus, errMsg *string, now time.Time) error
}

type notificationService struct {
	profileRepo      repository.ProfileRepository
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(profileRepo repository.ProfileRepository, notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{profileRepo: profileRepo, notificationRepo: notificationRepo}
}

func (s *notificationService) GetSettings(ctx context.Context, profileID int64) (*models.NotificationSettings, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting notification settings: profile_id=%d", profileID)

	if _, err := loadProfile(ctx, s.profileRepo, profileID); err != nil {
		return nil, err
	}
	settings, err := s.notificationRepo.GetSettings(ctx, profileID)
	if err != nil {
		log.Error("failed to get notification settings: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return settings, nil
}

func (s *notificationService) UpdateSettings(ctx context.Context, profileID int64, update models.NotificationSettingsUpdate) (*models.NotificationSettings, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating notification settings: profile_id=%d", profileID)

	if err := ValidateRequest(update); err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if update.EmailEnabled != nil {
		settings.EmailEnabled = *update.EmailEnabled
	}
	if update.TelegramEnabled != nil {
		settings.TelegramEnabled = *update.TelegramEnabled
	}
	if update.PushEnabled != nil {
		settings.PushEnabled = *update.PushEnabled
	}
	if update.ReviewHour != nil {
		settings.ReviewHour = *update.ReviewHour
	}

	if err := s.notificationRepo.UpsertSettings(ctx, *settings); err != nil {
		log.Error("failed to save notification settings: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return settings, nil
}

func (s *notificationService) SendReviewNotifications(ctx context.Context, profileID *int64, now time.Time) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("sending review notifications")

	now = now.UTC()
	active, err := s.notificationRepo.ListActive(ctx, profileID)
	if err != nil {
		log.Error("failed to list notification settings: %v", err)
		return 0, errors.NewInternalError(err)
	}

	created := 0
	for _, settings := range active {
		plog := log.WithField("profile_id", settings.ProfileID)
		if now.Hour() < settings.ReviewHour {
			plog.Debug("before review hour %d", settings.ReviewHour)
			continue
		}
		if notifiedToday(settings.LastNotifiedAt, now) {
			plog.Debug("already notified today")
			continue
		}

		profile, err := s.profileRepo.Get(ctx, settings.ProfileID)
		if err != nil {
			plog.Error("failed to get profile: %v", err)
			return created, errors.NewInternalError(err)
		}
		if profile == nil {
			plog.Warn("notification settings without profile")
			continue
		}

		due, err := s.notificationRepo.CountReviewDue(ctx, profile.ID, profile.TargetLang, now)
		if err != nil {
			plog.Error("failed to count due reviews: %v", err)
			return created, errors.NewInternalError(err)
		}
		if due == 0 {
			continue
		}

		payload := models.MustJSON(map[string]int{"review_due": due})
		if err := s.notificationRepo.Notify(ctx, profile.ID, settings.Channels(), payload, now); err != nil {
			plog.Error("failed to queue notification: %v", err)
			return created, errors.NewInternalError(err)
		}
		plog.Info("queued review reminder: due=%d, channels=%d", due, len(settings.Channels()))
		created++
	}
	return created, nil
}

func (s *notificationService) PendingOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing pending outbox: limit=%d", limit)

	if limit <= 0 {
		limit = 100
	}
	entries, err := s.notificationRepo.PendingOutbox(ctx, limit)
	if err != nil {
		log.Error("failed to list outbox: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *notificationService) MarkOutbox(ctx context.Context, id int64, status models.OutboxStatus, errMsg *string, now time.Time) error {
	log := logger.FromContext(ctx)
	log.Debug("marking outbox entry %d as %s", id, status)

	switch status {
	case models.OutboxSent, models.OutboxError:
	default:
		return errors.NewValidationError("status", "must be sent or error")
	}
	if err := s.notificationRepo.MarkOutbox(ctx, id, status, errMsg, now); err != nil {
		log.Error("failed to mark outbox entry: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func notifiedToday(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	return dayStart(*last).Equal(dayStart(now))
}
