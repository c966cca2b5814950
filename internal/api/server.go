package api

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB                  Pinger
	StudyService        services.StudyService
	ProfileService      services.ProfileService
	StatsService        services.StatsService
	NotificationService services.NotificationService
	ContentService      services.ContentService
	JobQueue            jobs.JobQueue

	// AdminToken guards the /admin and /jobs routes. An empty token disables them.
	AdminToken     string
	RequestTimeout time.Duration
	Now            func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
