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

const (
	AuditMergeWords = "merge_words"
	AuditRenameWord = "rename_word"
)

// ContentService is the administrative entry point for catalog maintenance.
type ContentService interface {
	MergeWords(ctx context.Context, req models.MergeWordsRequest, now time.Time) (*models.WordEditResult, error)
	// RenameWord changes a lemma. When another word in the same language
	// already carries the new lemma, the renamed word is merged into it.
	RenameWord(ctx context.Context, wordID int64, req models.RenameWordRequest, now time.Time) (*models.WordEditResult, error)
	AuditLog(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type contentService struct {
	catalogRepo repository.CatalogRepository
	contentRepo repository.ContentRepository
	auditRepo   repository.AuditRepository
}

// NewContentService creates a new ContentService
func NewContentService(catalogRepo repository.CatalogRepository, contentRepo repository.ContentRepository, auditRepo repository.AuditRepository) ContentService {
	return &contentService{catalogRepo: catalogRepo, contentRepo: contentRepo, auditRepo: auditRepo}
}

func (s *contentService) MergeWords(ctx context.Context, req models.MergeWordsRequest, now time.Time) (*models.WordEditResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("merging words: source=%d, target=%d", req.SourceID, req.TargetID)

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	target, err := s.word(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.NewNotFoundError("word", req.TargetID)
	}
	out := &models.WordEditResult{WordID: target.ID}
	if req.SourceID == req.TargetID {
		return out, nil
	}

	source, err := s.word(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		log.Debug("source word %d already gone", req.SourceID)
		return out, nil
	}
	if source.Lang != target.Lang {
		return nil, errors.NewValidationError("target_id", "words must share a language")
	}

	return s.merge(ctx, AuditMergeWords, *source, *target, now)
}

func (s *contentService) RenameWord(ctx context.Context, wordID int64, req models.RenameWordRequest, now time.Time) (*models.WordEditResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("renaming word: word_id=%d", wordID)

	req.Lemma = strings.TrimSpace(req.Lemma)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	word, err := s.word(ctx, wordID)
	if err != nil {
		return nil, err
	}
	if word == nil {
		return nil, errors.NewNotFoundError("word", wordID)
	}
	out := &models.WordEditResult{WordID: word.ID}
	if word.Lemma == req.Lemma {
		return out, nil
	}

	existing, err := s.catalogRepo.FindWord(ctx, req.Lemma, word.Lang)
	if err != nil {
		log.Error("failed to look up lemma: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing != nil && existing.ID != word.ID {
		return s.merge(ctx, AuditRenameWord, *word, *existing, now)
	}

	if err := s.catalogRepo.UpdateLemma(ctx, word.ID, req.Lemma); err != nil {
		log.Error("failed to update lemma: %v", err)
		return nil, errors.NewInternalError(err)
	}
	s.audit(ctx, AuditRenameWord, map[string]any{
		"word_id": word.ID,
		"from":    word.Lemma,
		"to":      req.Lemma,
	}, now)
	log.Info("word %d renamed", word.ID)
	return out, nil
}

func (s *contentService) AuditLog(ctx context.Context, limit int) ([]models.AuditLog, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing audit log: limit=%d", limit)

	if limit <= 0 {
		limit = 50
	}
	entries, err := s.auditRepo.List(ctx, limit)
	if err != nil {
		log.Error("failed to list audit log: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *contentService) merge(ctx context.Context, action string, source, target models.Word, now time.Time) (*models.WordEditResult, error) {
	log := logger.FromContext(ctx)

	merged, err := s.contentRepo.MergeWords(ctx, source.ID, target.ID)
	if err != nil {
		log.Error("failed to merge word %d into %d: %v", source.ID, target.ID, err)
		return nil, errors.NewInternalError(err)
	}
	out := &models.WordEditResult{WordID: target.ID}
	if !merged {
		return out, nil
	}
	out.Merged = true
	out.MergedID = source.ID

	s.audit(ctx, action, map[string]any{
		"source_id": source.ID,
		"target_id": target.ID,
		"lemma":     source.Lemma,
		"merged":    true,
	}, now)
	log.Info("word %d merged into %d", source.ID, target.ID)
	return out, nil
}

// audit records an admin action. The edit is already committed, so a failed
// audit insert is logged and not returned.
func (s *contentService) audit(ctx context.Context, action string, meta map[string]any, now time.Time) {
	if _, err := s.auditRepo.Insert(ctx, action, models.MustJSON(meta), now); err != nil {
		logger.FromContext(ctx).Error("failed to write audit entry %s: %v", action, err)
	}
}

func (s *contentService) word(ctx context.Context, id int64) (*models.Word, error) {
	word, err := s.catalogRepo.GetWord(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return word, nil
}
