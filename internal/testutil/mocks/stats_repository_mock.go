package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Counts(ctx context.Context, profileID int64, now time.Time) (*models.ProfileCounts, error) {
	args := m.Called(ctx, profileID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfileCounts), args.Error(1)
}

func (m *MockStatsRepository) LearnedSince(ctx context.Context, profileID int64, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, profileID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockStatsRepository) WeakWords(ctx context.Context, profileID int64, limit int) (*models.WeakWords, error) {
	args := m.Called(ctx, profileID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeakWords), args.Error(1)
}

func (m *MockStatsRepository) SaveDashboard(ctx context.Context, profileID int64, data models.RawJSON, now time.Time) error {
	args := m.Called(ctx, profileID, data, now)
	return args.Error(0)
}

func (m *MockStatsRepository) SaveWeakWords(ctx context.Context, profileID int64, data models.RawJSON, now time.Time) error {
	args := m.Called(ctx, profileID, data, now)
	return args.Error(0)
}

func (m *MockStatsRepository) CachedDashboard(ctx context.Context, profileID int64) (models.RawJSON, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.RawJSON), args.Error(1)
}
