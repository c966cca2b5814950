package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/wordflash/internal/catalog"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/services"
)

// ImportDefaults fill in an import_words payload that omits its paths.
type ImportDefaults struct {
	SourceDir string
	MapPath   string
}

// HandlerDeps are the services the built-in handlers delegate to.
type HandlerDeps struct {
	Stats         services.StatsService
	Notifications services.NotificationService
	Importer      catalog.Importer
	Import        ImportDefaults
	Now           func() time.Time
}

// NewRegistry wires the built-in handler for every job type.
func NewRegistry(deps HandlerDeps) Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Registry{
		models.JobRefreshStats:            RefreshStatsHandler(deps.Stats, deps.Now),
		models.JobGenerateReport:          GenerateReportHandler(deps.Stats, deps.Now),
		models.JobSendReviewNotifications: SendReviewNotificationsHandler(deps.Notifications, deps.Now),
		models.JobImportWords:             ImportWordsHandler(deps.Importer, deps.Import),
	}
}

// RefreshStatsHandler recomputes and caches the dashboard and weak words of
// the job's profile.
func RefreshStatsHandler(stats services.StatsService, now func() time.Time) Handler {
	return HandlerFunc(func(ctx context.Context, job models.Job) (any, error) {
		if job.ProfileID == nil {
			return nil, errMissingProfile
		}
		summary, err := stats.Refresh(ctx, *job.ProfileID, now())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"dashboard":   true,
			"weak_words":  true,
			"known_words": summary.KnownWords,
			"weak_total":  summary.WeakTotal,
		}, nil
	})
}

// GenerateReportHandler computes a fresh dashboard and returns its headline
// numbers as the job result.
func GenerateReportHandler(stats services.StatsService, now func() time.Time) Handler {
	return HandlerFunc(func(ctx context.Context, job models.Job) (any, error) {
		if job.ProfileID == nil {
			return nil, errMissingProfile
		}
		d, err := stats.Dashboard(ctx, *job.ProfileID, now())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"generated_at":     d.GeneratedAt,
			"known_words":      d.KnownWords,
			"learn_today":      d.LearnToday,
			"review_today":     d.ReviewToday,
			"review_available": d.ReviewAvailable,
			"days_learning":    d.DaysLearning,
		}, nil
	})
}

func SendReviewNotificationsHandler(notifications services.NotificationService, now func() time.Time) Handler {
	return HandlerFunc(func(ctx context.Context, job models.Job) (any, error) {
		created, err := notifications.SendReviewNotifications(ctx, job.ProfileID, now())
		if err != nil {
			return nil, err
		}
		return map[string]int{"notifications_created": created}, nil
	})
}

func ImportWordsHandler(importer catalog.Importer, defaults ImportDefaults) Handler {
	return HandlerFunc(func(ctx context.Context, job models.Job) (any, error) {
		var payload models.ImportPayload
		if err := job.Payload.Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		if payload.SourceDir == "" {
			payload.SourceDir = defaults.SourceDir
		}
		if payload.MapPath == "" {
			payload.MapPath = defaults.MapPath
		}
		if payload.SourceDir == "" || payload.MapPath == "" {
			return nil, fmt.Errorf("import needs source_dir and map_path")
		}

		logger.FromContext(ctx).Info("importing words from %s", payload.SourceDir)
		stats, err := importer.Import(ctx, payload.SourceDir, payload.MapPath)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"imported":     true,
			"source_dir":   payload.SourceDir,
			"map_path":     payload.MapPath,
			"corpora":      stats.Corpora,
			"words":        stats.Words,
			"translations": stats.Translations,
			"skipped":      stats.Skipped,
		}, nil
	})
}
