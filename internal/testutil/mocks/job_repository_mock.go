package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockJobRepository is a mock implementation of repository.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Enqueue(ctx context.Context, job models.NewJob, now time.Time) (*models.Job, error) {
	args := m.Called(ctx, job, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobRepository) Get(ctx context.Context, id int64) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockJobRepository) ClaimBatch(ctx context.Context, workerID string, limit int, now time.Time) ([]models.Job, error) {
	args := m.Called(ctx, workerID, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockJobRepository) MarkDone(ctx context.Context, id int64, result models.RawJSON, now time.Time) error {
	args := m.Called(ctx, id, result, now)
	return args.Error(0)
}

func (m *MockJobRepository) MarkFailed(ctx context.Context, id int64, message string, now time.Time) (models.JobStatus, error) {
	args := m.Called(ctx, id, message, now)
	return args.Get(0).(models.JobStatus), args.Error(1)
}

func (m *MockJobRepository) ReclaimStale(ctx context.Context, startedBefore, now time.Time) (int, error) {
	args := m.Called(ctx, startedBefore, now)
	return args.Int(0), args.Error(1)
}
