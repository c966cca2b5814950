package services

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

const (
	// LearnedSeriesDays is the length of the learned-per-day series, today included.
	LearnedSeriesDays = 14
	// WeakWordsLimit bounds the weak words kept in the cache.
	WeakWordsLimit = 20
)

// RefreshSummary reports what a stats refresh wrote.
type RefreshSummary struct {
	Dashboard  *models.Dashboard
	WeakWords  *models.WeakWords
	KnownWords int
	WeakTotal  int
}

// StatsService handles statistics-related business logic
type StatsService interface {
	Dashboard(ctx context.Context, profileID int64, now time.Time) (*models.Dashboard, error)
	// CachedDashboard returns the last refreshed dashboard, computing a live
	// one when no cache exists.
	CachedDashboard(ctx context.Context, profileID int64, now time.Time) (*models.Dashboard, error)
	WeakWords(ctx context.Context, profileID int64, limit int) (*models.WeakWords, error)
	Refresh(ctx context.Context, profileID int64, now time.Time) (*RefreshSummary, error)
}

type statsService struct {
	profileRepo repository.ProfileRepository
	catalogRepo repository.CatalogRepository
	statsRepo   repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(profileRepo repository.ProfileRepository, catalogRepo repository.CatalogRepository, statsRepo repository.StatsRepository) StatsService {
	return &statsService{profileRepo: profileRepo, catalogRepo: catalogRepo, statsRepo: statsRepo}
}

func (s *statsService) Dashboard(ctx context.Context, profileID int64, now time.Time) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing dashboard: profile_id=%d", profileID)

	profile, settings, err := loadProfileSettings(ctx, s.profileRepo, profileID)
	if err != nil {
		return nil, err
	}

	counts, err := s.statsRepo.Counts(ctx, profileID, now)
	if err != nil {
		log.Error("failed to count progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	learnAvailable, err := s.catalogRepo.CountLearnAvailable(ctx, profileID, profile.TargetLang)
	if err != nil {
		log.Error("failed to count learn candidates: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now = now.UTC()
	today := dayStart(now)
	since := today.AddDate(0, 0, -(LearnedSeriesDays - 1))
	stamps, err := s.statsRepo.LearnedSince(ctx, profileID, since)
	if err != nil {
		log.Error("failed to load learned series: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.Dashboard{
		ProfileID:        profileID,
		TargetLang:       profile.TargetLang,
		DaysLearning:     daysLearning(profile.CreatedAt, now),
		KnownWords:       counts.KnownWords,
		LearnAvailable:   learnAvailable,
		LearnToday:       min(settings.DailyNewWords, learnAvailable),
		ReviewAvailable:  counts.ReviewAvailable,
		ReviewToday:      min(settings.DailyReviewWords, counts.ReviewAvailable),
		DailyNewWords:    settings.DailyNewWords,
		DailyReviewWords: settings.DailyReviewWords,
		LearnBatchSize:   settings.LearnBatchSize,
		LearnedSeries:    learnedSeries(stamps, since, LearnedSeriesDays),
		GeneratedAt:      now,
	}, nil
}

func (s *statsService) CachedDashboard(ctx context.Context, profileID int64, now time.Time) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting cached dashboard: profile_id=%d", profileID)

	if _, err := loadProfile(ctx, s.profileRepo, profileID); err != nil {
		return nil, err
	}
	data, err := s.statsRepo.CachedDashboard(ctx, profileID)
	if err != nil {
		log.Error("failed to load cached dashboard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if data == nil {
		return s.Dashboard(ctx, profileID, now)
	}

	var dashboard models.Dashboard
	if err := data.Decode(&dashboard); err != nil {
		log.Warn("discarding unreadable dashboard cache: %v", err)
		return s.Dashboard(ctx, profileID, now)
	}
	return &dashboard, nil
}

func (s *statsService) WeakWords(ctx context.Context, profileID int64, limit int) (*models.WeakWords, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting weak words: profile_id=%d, limit=%d", profileID, limit)

	if limit <= 0 {
		limit = WeakWordsLimit
	}
	if _, err := loadProfile(ctx, s.profileRepo, profileID); err != nil {
		return nil, err
	}
	weak, err := s.statsRepo.WeakWords(ctx, profileID, limit)
	if err != nil {
		log.Error("failed to load weak words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return weak, nil
}

func (s *statsService) Refresh(ctx context.Context, profileID int64, now time.Time) (*RefreshSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("refreshing stats: profile_id=%d", profileID)

	dashboard, err := s.Dashboard(ctx, profileID, now)
	if err != nil {
		return nil, err
	}
	weak, err := s.WeakWords(ctx, profileID, WeakWordsLimit)
	if err != nil {
		return nil, err
	}

	if err := s.statsRepo.SaveDashboard(ctx, profileID, models.MustJSON(dashboard), now); err != nil {
		log.Error("failed to save dashboard cache: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.statsRepo.SaveWeakWords(ctx, profileID, models.MustJSON(weak), now); err != nil {
		log.Error("failed to save weak words cache: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("stats refreshed: profile_id=%d, known=%d, weak=%d", profileID, dashboard.KnownWords, weak.Total)
	return &RefreshSummary{
		Dashboard:  dashboard,
		WeakWords:  weak,
		KnownWords: dashboard.KnownWords,
		WeakTotal:  weak.Total,
	}, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysLearning counts calendar days since the profile was created, today included.
func daysLearning(createdAt, now time.Time) int {
	days := int(dayStart(now).Sub(dayStart(createdAt)).Hours()/24) + 1
	return max(days, 1)
}

func learnedSeries(stamps []time.Time, since time.Time, days int) []models.LearnedSeriesPoint {
	series := make([]models.LearnedSeriesPoint, days)
	index := make(map[string]int, days)
	for i := range series {
		date := since.AddDate(0, 0, i).Format(time.DateOnly)
		series[i].Date = date
		index[date] = i
	}
	for _, ts := range stamps {
		if i, ok := index[ts.UTC().Format(time.DateOnly)]; ok {
			series[i].Count++
		}
	}
	return series
}
