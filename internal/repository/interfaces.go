package repository

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// ProfileRepository handles learner profiles and their study settings.
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	Create(ctx context.Context, p models.Profile) (int64, error)
	// Settings returns the stored settings, creating the default row when absent.
	Settings(ctx context.Context, profileID int64) (*models.ProfileSettings, error)
	UpdateSettings(ctx context.Context, s models.ProfileSettings) error
	EnableCorpus(ctx context.Context, profileID, corpusID int64, targetWordLimit int) error
}

// CatalogRepository is the vocabulary catalog: words, translations and corpora.
type CatalogRepository interface {
	GetWord(ctx context.Context, id int64) (*models.Word, error)
	FindWord(ctx context.Context, lemma, lang string) (*models.Word, error)
	ExistingWordIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	// AcceptedTranslations returns, per word, the catalog translations in
	// targetLang followed by the profile's custom translation.
	AcceptedTranslations(ctx context.Context, profileID int64, targetLang string, wordIDs []int64) (map[int64][]string, error)
	LearnCandidates(ctx context.Context, profileID int64, targetLang string, limit int) ([]models.LearnWord, error)
	CountLearnAvailable(ctx context.Context, profileID int64, targetLang string) (int, error)
	// SeedCandidates returns unseen words from the profile's enabled corpora,
	// best rank first, regardless of translations.
	SeedCandidates(ctx context.Context, profileID int64, limit int) ([]int64, error)
	UpdateLemma(ctx context.Context, wordID int64, lemma string) error
	UpsertCustomWord(ctx context.Context, c models.CustomWord) error
	CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error)
	ImportCorpus(ctx context.Context, batch models.CorpusImport) (models.ImportStats, error)
}

// ProgressRepository is the progress store: per-profile word progress,
// review events and session finalization.
type ProgressRepository interface {
	Get(ctx context.Context, profileID, wordID int64) (*models.Progress, error)
	ListByWords(ctx context.Context, profileID int64, wordIDs []int64) (map[int64]models.Progress, error)
	DueForReview(ctx context.Context, profileID int64, targetLang string, now time.Time, limit int) ([]models.ReviewWord, error)
	// ApplyLearn inserts the rows that do not exist yet and finalizes the
	// session, if any, in one transaction. It returns the number of rows inserted.
	ApplyLearn(ctx context.Context, rows []models.Progress, finish *models.SessionFinish) (int, error)
	// ApplyReview overwrites progress rows, appends review events and
	// finalizes the session, if any, in one transaction.
	ApplyReview(ctx context.Context, rows []models.Progress, events []models.ReviewEvent, finish *models.SessionFinish) error
}

type SessionRepository interface {
	Create(ctx context.Context, profileID int64, sessionType models.SessionType, wordsTotal int, now time.Time) (int64, error)
	Get(ctx context.Context, id int64) (*models.StudySession, error)
}

// JobRepository is the persistent background job queue.
type JobRepository interface {
	Enqueue(ctx context.Context, job models.NewJob, now time.Time) (*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	// ClaimBatch atomically moves up to limit runnable pending jobs to running.
	ClaimBatch(ctx context.Context, workerID string, limit int, now time.Time) ([]models.Job, error)
	MarkDone(ctx context.Context, id int64, result models.RawJSON, now time.Time) error
	// MarkFailed records the error and returns the resulting status.
	MarkFailed(ctx context.Context, id int64, message string, now time.Time) (models.JobStatus, error)
	ReclaimStale(ctx context.Context, startedBefore, now time.Time) (int, error)
}

type NotificationRepository interface {
	GetSettings(ctx context.Context, profileID int64) (*models.NotificationSettings, error)
	UpsertSettings(ctx context.Context, s models.NotificationSettings) error
	// ListActive returns settings rows with at least one enabled channel,
	// optionally restricted to one profile.
	ListActive(ctx context.Context, profileID *int64) ([]models.NotificationSettings, error)
	// CountReviewDue counts the distinct words due for review that have a
	// catalog or custom translation in targetLang.
	CountReviewDue(ctx context.Context, profileID int64, targetLang string, now time.Time) (int, error)
	// Notify writes one outbox row per channel and stamps last_notified_at.
	Notify(ctx context.Context, profileID int64, channels []models.Channel, payload models.RawJSON, now time.Time) error
	PendingOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	MarkOutbox(ctx context.Context, id int64, status models.OutboxStatus, errMsg *string, now time.Time) error
}

type StatsRepository interface {
	Counts(ctx context.Context, profileID int64, now time.Time) (*models.ProfileCounts, error)
	LearnedSince(ctx context.Context, profileID int64, since time.Time) ([]time.Time, error)
	WeakWords(ctx context.Context, profileID int64, limit int) (*models.WeakWords, error)
	SaveDashboard(ctx context.Context, profileID int64, data models.RawJSON, now time.Time) error
	SaveWeakWords(ctx context.Context, profileID int64, data models.RawJSON, now time.Time) error
	CachedDashboard(ctx context.Context, profileID int64) (models.RawJSON, error)
}

// ContentRepository performs administrative content maintenance.
type ContentRepository interface {
	// MergeWords folds sourceID into targetID. It reports false when there
	// was nothing to merge.
	MergeWords(ctx context.Context, sourceID, targetID int64) (bool, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, action string, meta models.RawJSON, now time.Time) (int64, error)
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}
