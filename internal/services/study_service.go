package services

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/answer"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/srs"
)

// StudyService coordinates learn and review sessions.
type StudyService interface {
	StartLearn(ctx context.Context, profileID int64, limit int, now time.Time) (*models.LearnStart, error)
	StartReview(ctx context.Context, profileID int64, limit int, now time.Time) (*models.ReviewStart, error)
	SubmitLearn(ctx context.Context, profileID int64, req models.SubmitRequest, now time.Time) (*models.LearnSubmitResult, error)
	SubmitReview(ctx context.Context, profileID int64, req models.SubmitRequest, now time.Time) (*models.ReviewSubmitResult, error)
	// SeedReview marks up to limit unseen words as learned and due now.
	SeedReview(ctx context.Context, profileID int64, limit int, now time.Time) (int, error)
}

type studyService struct {
	profileRepo  repository.ProfileRepository
	catalogRepo  repository.CatalogRepository
	progressRepo repository.ProgressRepository
	sessionRepo  repository.SessionRepository
}

// NewStudyService creates a new StudyService
func NewStudyService(
	profileRepo repository.ProfileRepository,
	catalogRepo repository.CatalogRepository,
	progressRepo repository.ProgressRepository,
	sessionRepo repository.SessionRepository,
) StudyService {
	return &studyService{
		profileRepo:  profileRepo,
		catalogRepo:  catalogRepo,
		progressRepo: progressRepo,
		sessionRepo:  sessionRepo,
	}
}

func (s *studyService) StartLearn(ctx context.Context, profileID int64, limit int, now time.Time) (*models.LearnStart, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("starting learn session: limit=%d", limit)

	profile, settings, err := loadProfileSettings(ctx, s.profileRepo, profileID)
	if err != nil {
		return nil, err
	}
	size, err := batchSize(limit, settings.LearnBatchSize)
	if err != nil {
		return nil, err
	}

	words, err := s.catalogRepo.LearnCandidates(ctx, profile.ID, profile.TargetLang, size)
	if err != nil {
		log.Error("failed to select learn words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	out := &models.LearnStart{Words: words}
	if len(words) == 0 {
		out.Words = []models.LearnWord{}
		log.Debug("no words to learn")
		return out, nil
	}

	sessionID, err := s.sessionRepo.Create(ctx, profile.ID, models.SessionLearn, len(words), now)
	if err != nil {
		log.Error("failed to create learn session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	out.SessionID = &sessionID
	log.Info("learn session %d started with %d words", sessionID, len(words))
	return out, nil
}

func (s *studyService) StartReview(ctx context.Context, profileID int64, limit int, now time.Time) (*models.ReviewStart, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("starting review session: limit=%d", limit)

	profile, settings, err := loadProfileSettings(ctx, s.profileRepo, profileID)
	if err != nil {
		return nil, err
	}
	size, err := batchSize(limit, settings.DailyReviewWords)
	if err != nil {
		return nil, err
	}

	words, err := s.progressRepo.DueForReview(ctx, profile.ID, profile.TargetLang, now, size)
	if err != nil {
		log.Error("failed to select review words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	out := &models.ReviewStart{Words: words}
	if len(words) == 0 {
		out.Words = []models.ReviewWord{}
		log.Debug("nothing due for review")
		return out, nil
	}

	sessionID, err := s.sessionRepo.Create(ctx, profile.ID, models.SessionReview, len(words), now)
	if err != nil {
		log.Error("failed to create review session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	out.SessionID = &sessionID
	log.Info("review session %d started with %d words", sessionID, len(words))
	return out, nil
}

func (s *studyService) SubmitLearn(ctx context.Context, profileID int64, req models.SubmitRequest, now time.Time) (*models.LearnSubmitResult, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("submitting learn answers: words=%d", len(req.Words))

	ids, err := validateBatch(req.Words)
	if err != nil {
		return nil, err
	}
	profile, err := loadProfile(ctx, s.profileRepo, profileID)
	if err != nil {
		return nil, err
	}

	existing, err := s.catalogRepo.ExistingWordIDs(ctx, ids)
	if err != nil {
		log.Error("failed to check word ids: %v", err)
		return nil, errors.NewInternalError(err)
	}
	for _, id := range ids {
		if !existing[id] {
			return nil, errors.NewNotFoundError("word", id)
		}
	}
	if err := s.checkSession(ctx, profile.ID, req.SessionID); err != nil {
		return nil, err
	}

	accepted, err := s.catalogRepo.AcceptedTranslations(ctx, profile.ID, profile.TargetLang, ids)
	if err != nil {
		log.Error("failed to load accepted translations: %v", err)
		return nil, errors.NewInternalError(err)
	}

	result := &models.LearnSubmitResult{WordsTotal: len(req.Words), Results: make([]models.ItemResult, 0, len(req.Words))}
	for _, item := range req.Words {
		scored := score(item, accepted[item.WordID])
		if scored.Correct {
			result.WordsCorrect++
		}
		result.Results = append(result.Results, scored)
	}
	result.AllCorrect = result.WordsCorrect == result.WordsTotal

	var rows []models.Progress
	if result.AllCorrect {
		rows = make([]models.Progress, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, learnedProgress(profile.ID, id, now))
		}
	}
	learned, err := s.progressRepo.ApplyLearn(ctx, rows, sessionFinish(req.SessionID, result.WordsTotal, result.WordsCorrect, now))
	if err != nil {
		log.Error("failed to store learn results: %v", err)
		return nil, errors.NewInternalError(err)
	}
	result.Learned = learned

	log.Info("learn submitted: correct=%d/%d, learned=%d", result.WordsCorrect, result.WordsTotal, learned)
	return result, nil
}

func (s *studyService) SubmitReview(ctx context.Context, profileID int64, req models.SubmitRequest, now time.Time) (*models.ReviewSubmitResult, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("submitting review answers: words=%d", len(req.Words))

	ids, err := validateBatch(req.Words)
	if err != nil {
		return nil, err
	}
	profile, err := loadProfile(ctx, s.profileRepo, profileID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSession(ctx, profile.ID, req.SessionID); err != nil {
		return nil, err
	}

	current, err := s.progressRepo.ListByWords(ctx, profile.ID, ids)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	for _, id := range ids {
		if _, ok := current[id]; !ok {
			return nil, errors.NewNotFoundError("word progress", id)
		}
	}

	accepted, err := s.catalogRepo.AcceptedTranslations(ctx, profile.ID, profile.TargetLang, ids)
	if err != nil {
		log.Error("failed to load accepted translations: %v", err)
		return nil, errors.NewInternalError(err)
	}

	result := &models.ReviewSubmitResult{WordsTotal: len(req.Words), Results: make([]models.ItemResult, 0, len(req.Words))}
	rows := make([]models.Progress, 0, len(ids))
	events := make([]models.ReviewEvent, 0, len(ids))
	for _, item := range req.Words {
		scored := score(item, accepted[item.WordID])
		result.Results = append(result.Results, scored)

		p := reviewedProgress(current[item.WordID], scored.Correct, now)
		rows = append(rows, p)

		outcome := models.ReviewWrong
		if scored.Correct {
			outcome = models.ReviewCorrect
			result.WordsCorrect++
		} else {
			result.WordsIncorrect++
		}
		events = append(events, models.ReviewEvent{ProfileID: profile.ID, WordID: item.WordID, Result: outcome, CreatedAt: now})
	}

	if err := s.progressRepo.ApplyReview(ctx, rows, events, sessionFinish(req.SessionID, result.WordsTotal, result.WordsCorrect, now)); err != nil {
		log.Error("failed to store review results: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("review submitted: correct=%d, incorrect=%d", result.WordsCorrect, result.WordsIncorrect)
	return result, nil
}

func (s *studyService) SeedReview(ctx context.Context, profileID int64, limit int, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("seeding review words: limit=%d", limit)

	if limit <= 0 {
		return 0, errors.NewValidationError("limit", "must be positive")
	}
	profile, err := loadProfile(ctx, s.profileRepo, profileID)
	if err != nil {
		return 0, err
	}

	ids, err := s.catalogRepo.SeedCandidates(ctx, profile.ID, limit)
	if err != nil {
		log.Error("failed to select seed words: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	rows := make([]models.Progress, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Progress{
			ProfileID:    profile.ID,
			WordID:       id,
			Status:       models.StatusLearned,
			LearnedAt:    &now,
			LastReviewAt: &now,
			NextReviewAt: &now,
		})
	}
	seeded, err := s.progressRepo.ApplyLearn(ctx, rows, nil)
	if err != nil {
		log.Error("failed to seed review words: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("seeded %d review words", seeded)
	return seeded, nil
}

// checkSession verifies that an optional session exists and belongs to the profile.
func (s *studyService) checkSession(ctx context.Context, profileID int64, sessionID *int64) error {
	if sessionID == nil {
		return nil
	}
	session, err := s.sessionRepo.Get(ctx, *sessionID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load session: %v", err)
		return errors.NewInternalError(err)
	}
	if session == nil || session.ProfileID != profileID {
		return errors.NewNotFoundError("session", *sessionID)
	}
	return nil
}

func validateBatch(items []models.AnswerItem) ([]int64, error) {
	if len(items) == 0 {
		return nil, errors.NewValidationError("words", "cannot be empty")
	}
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.WordID <= 0 {
			return nil, errors.NewValidationError("word_id", "must be positive")
		}
		if seen[item.WordID] {
			return nil, errors.NewValidationError("words", "duplicate word ids")
		}
		seen[item.WordID] = true
		ids = append(ids, item.WordID)
	}
	return ids, nil
}

func batchSize(limit, fallback int) (int, error) {
	size := fallback
	if limit > 0 {
		size = limit
	}
	if size <= 0 {
		return 0, errors.NewValidationError("limit", "invalid batch size")
	}
	return size, nil
}

func score(item models.AnswerItem, accepted []string) models.ItemResult {
	return models.ItemResult{
		WordID:         item.WordID,
		Correct:        answer.IsCorrect(item.Answer, accepted),
		CorrectAnswers: answer.Options(accepted),
	}
}

func sessionFinish(sessionID *int64, total, correct int, now time.Time) *models.SessionFinish {
	if sessionID == nil {
		return nil
	}
	return &models.SessionFinish{SessionID: *sessionID, WordsTotal: total, WordsCorrect: correct, FinishedAt: now}
}

func learnedProgress(profileID, wordID int64, now time.Time) models.Progress {
	stage, due := srs.Advance(true, 0, now)
	return models.Progress{
		ProfileID:     profileID,
		WordID:        wordID,
		Status:        models.StatusLearned,
		Stage:         stage,
		Repetitions:   1,
		IntervalDays:  srs.IntervalDays(stage),
		LearnedAt:     &now,
		LastReviewAt:  &now,
		NextReviewAt:  &due,
		CorrectStreak: 1,
	}
}

// reviewedProgress applies one review outcome to a progress row.
func reviewedProgress(p models.Progress, correct bool, now time.Time) models.Progress {
	stage, due := srs.Advance(correct, p.Stage, now)
	p.Stage = stage
	p.IntervalDays = srs.IntervalDays(stage)
	p.LastReviewAt = &now
	p.NextReviewAt = &due

	if correct {
		p.Repetitions++
		p.CorrectStreak++
		p.WrongStreak = 0
		if p.Status != models.StatusLearned && p.Status != models.StatusKnown {
			p.Status = models.StatusLearned
		}
		if p.LearnedAt == nil {
			p.LearnedAt = &now
		}
		return p
	}

	p.CorrectStreak = 0
	p.WrongStreak++
	if p.Status == models.StatusNew {
		// a word never introduced has no due date
		p.NextReviewAt = nil
	}
	return p
}
