package jobs

import (
	"context"
	stderrors "errors"

	"github.com/vytor/wordflash/internal/models"
)

var (
	errInvalidJSON    = stderrors.New("invalid JSON")
	errMissingProfile = stderrors.New("job has no profile_id")
)

// Handler executes one job type. The returned value is stored as the job
// result; a returned error records a failed attempt.
type Handler interface {
	Handle(ctx context.Context, job models.Job) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job models.Job) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, job models.Job) (any, error) {
	return f(ctx, job)
}

// Registry maps job types to their handlers.
type Registry map[models.JobType]Handler
