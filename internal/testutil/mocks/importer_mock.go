package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockImporter is a mock implementation of catalog.Importer
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, sourceDir, mapPath string) (models.ImportStats, error) {
	args := m.Called(ctx, sourceDir, mapPath)
	return args.Get(0).(models.ImportStats), args.Error(1)
}
