package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// ProfileService handles profile-related business logic
type ProfileService interface {
	CreateProfile(ctx context.Context, userID int64, nativeLang, targetLang string, now time.Time) (*models.Profile, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	GetSettings(ctx context.Context, profileID int64) (*models.ProfileSettings, error)
	UpdateSettings(ctx context.Context, settings models.ProfileSettings) (*models.ProfileSettings, error)
	EnableCorpus(ctx context.Context, profileID int64, slug string, targetWordLimit int) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
	catalogRepo repository.CatalogRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository, catalogRepo repository.CatalogRepository) ProfileService {
	return &profileService{profileRepo: profileRepo, catalogRepo: catalogRepo}
}

func (s *profileService) CreateProfile(ctx context.Context, userID int64, nativeLang, targetLang string, now time.Time) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating profile: user_id=%d, target_lang=%s", userID, targetLang)

	nativeLang = strings.ToLower(strings.TrimSpace(nativeLang))
	targetLang = strings.ToLower(strings.TrimSpace(targetLang))
	if targetLang == "" {
		return nil, errors.NewValidationError("target_lang", "cannot be empty")
	}
	if nativeLang == "" {
		return nil, errors.NewValidationError("native_lang", "cannot be empty")
	}

	profile := models.Profile{UserID: userID, NativeLang: nativeLang, TargetLang: targetLang, CreatedAt: now}
	id, err := s.profileRepo.Create(ctx, profile)
	if err != nil {
		log.Error("failed to create profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	profile.ID = id
	return &profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	return loadProfile(ctx, s.profileRepo, id)
}

func (s *profileService) GetSettings(ctx context.Context, profileID int64) (*models.ProfileSettings, error) {
	_, settings, err := loadProfileSettings(ctx, s.profileRepo, profileID)
	return settings, err
}

func (s *profileService) UpdateSettings(ctx context.Context, settings models.ProfileSettings) (*models.ProfileSettings, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating settings: profile_id=%d", settings.ProfileID)

	if settings.DailyNewWords < 0 {
		return nil, errors.NewValidationError("daily_new_words", "cannot be negative")
	}
	if settings.DailyReviewWords < 0 {
		return nil, errors.NewValidationError("daily_review_words", "cannot be negative")
	}
	if settings.LearnBatchSize <= 0 {
		return nil, errors.NewValidationError("learn_batch_size", "must be positive")
	}
	if _, err := loadProfile(ctx, s.profileRepo, settings.ProfileID); err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateSettings(ctx, settings); err != nil {
		log.Error("failed to update settings: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &settings, nil
}

func (s *profileService) EnableCorpus(ctx context.Context, profileID int64, slug string, targetWordLimit int) error {
	log := logger.FromContext(ctx)
	log.Debug("enabling corpus: profile_id=%d, slug=%s", profileID, slug)

	if targetWordLimit < 0 {
		return errors.NewValidationError("target_word_limit", "cannot be negative")
	}
	if _, err := loadProfile(ctx, s.profileRepo, profileID); err != nil {
		return err
	}
	corpus, err := s.catalogRepo.CorpusBySlug(ctx, slug)
	if err != nil {
		log.Error("failed to load corpus: %v", err)
		return errors.NewInternalError(err)
	}
	if corpus == nil {
		return errors.NewNotFoundError("corpus", slug)
	}
	if err := s.profileRepo.EnableCorpus(ctx, profileID, corpus.ID, targetWordLimit); err != nil {
		log.Error("failed to enable corpus: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func loadProfile(ctx context.Context, repo repository.ProfileRepository, id int64) (*models.Profile, error) {
	profile, err := repo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", id)
	}
	return profile, nil
}

func loadProfileSettings(ctx context.Context, repo repository.ProfileRepository, id int64) (*models.Profile, *models.ProfileSettings, error) {
	profile, err := loadProfile(ctx, repo, id)
	if err != nil {
		return nil, nil, err
	}
	settings, err := repo.Settings(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load settings: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	return profile, settings, nil
}
