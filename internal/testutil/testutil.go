package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/logger"
)

// Now is the fixed clock used across tests.
var Now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
// Callers close it with MustClose.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	return OpenTestDB(t, ":memory:")
}

// OpenTestDB opens the database at path with a quiet logger. Several handles
// on the same file behave like separate processes sharing one database.
func OpenTestDB(t *testing.T, path string) *db.DB {
	t.Helper()
	ctx := logger.NewContext(context.Background(), logger.New(logger.WithLevel(logger.ERROR), logger.WithColors(false)))
	database, err := db.OpenContext(ctx, path)
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
