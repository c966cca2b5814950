package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/catalog"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/scheduler"
	"github.com/vytor/wordflash/internal/services"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg           config.Config
	db            *db.DB
	jobRepo       repository.JobRepository
	queue         *jobs.Queue
	importer      *catalog.XLSXImporter
	profiles      services.ProfileService
	study         services.StudyService
	stats         services.StatsService
	notifications services.NotificationService
	content       services.ContentService
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	database, err := db.OpenContext(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	conn := database.DB
	profileRepo := sqlite.NewProfileRepository(conn)
	catalogRepo := sqlite.NewCatalogRepository(conn)
	jobRepo := sqlite.NewJobRepository(conn)

	return &app{
		cfg:           cfg,
		db:            database,
		jobRepo:       jobRepo,
		queue:         jobs.NewQueue(jobRepo, utcNow),
		importer:      catalog.NewXLSXImporter(catalogRepo),
		profiles:      services.NewProfileService(profileRepo, catalogRepo),
		study:         services.NewStudyService(profileRepo, catalogRepo, sqlite.NewProgressRepository(conn), sqlite.NewSessionRepository(conn)),
		stats:         services.NewStatsService(profileRepo, catalogRepo, sqlite.NewStatsRepository(conn)),
		notifications: services.NewNotificationService(profileRepo, sqlite.NewNotificationRepository(conn)),
		content:       services.NewContentService(catalogRepo, sqlite.NewContentRepository(conn), sqlite.NewAuditRepository(conn)),
	}, nil
}

func (a *app) Close() error {
	logger.Debug("closing database connection")
	return a.db.Close()
}

func (a *app) server() *api.Server {
	return &api.Server{
		DB:                  a.db,
		StudyService:        a.study,
		ProfileService:      a.profiles,
		StatsService:        a.stats,
		NotificationService: a.notifications,
		ContentService:      a.content,
		JobQueue:            a.queue,
		AdminToken:          a.cfg.AdminToken,
		RequestTimeout:      a.cfg.RequestTimeout,
		Now:                 utcNow,
	}
}

func (a *app) processor() *jobs.Processor {
	registry := jobs.NewRegistry(jobs.HandlerDeps{
		Stats:         a.stats,
		Notifications: a.notifications,
		Importer:      a.importer,
		Import:        jobs.ImportDefaults{SourceDir: a.cfg.ImportSourceDir, MapPath: a.cfg.ImportMapPath},
		Now:           utcNow,
	})
	return jobs.NewProcessor(a.jobRepo, registry,
		jobs.WithBatchSize(a.cfg.JobBatchSize),
		jobs.WithPollInterval(a.cfg.JobPollInterval),
		jobs.WithClock(utcNow),
	)
}

func (a *app) newScheduler() *scheduler.Scheduler {
	return scheduler.New(a.queue, scheduler.Options{
		NotifyEvery: a.cfg.NotifyEvery,
		StaleAfter:  a.cfg.JobStaleAfter,
	})
}
