package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	version, err := database.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var tables int
	err = database.GetContext(ctx, &tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('user_words', 'background_jobs', 'notification_outbox')`)
	require.NoError(t, err)
	assert.Equal(t, 3, tables)
}

func TestOpen_IsIdempotentOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordflash.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()

	version, err := second.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	err = database.Tx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO words (lemma, lang) VALUES ('haus', 'de')`); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, database.GetContext(ctx, &count, `SELECT COUNT(*) FROM words`))
	assert.Zero(t, count)
}

func TestForeignKeysEnabled(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`INSERT INTO translations (word_id, target_lang, translation) VALUES (999, 'en', 'ghost')`)
	assert.Error(t, err)
}
