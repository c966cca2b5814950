package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, p models.Profile) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepository) Settings(ctx context.Context, profileID int64) (*models.ProfileSettings, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfileSettings), args.Error(1)
}

func (m *MockProfileRepository) UpdateSettings(ctx context.Context, s models.ProfileSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockProfileRepository) EnableCorpus(ctx context.Context, profileID, corpusID int64, targetWordLimit int) error {
	args := m.Called(ctx, profileID, corpusID, targetWordLimit)
	return args.Error(0)
}
