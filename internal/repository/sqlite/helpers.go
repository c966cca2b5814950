package sqlite

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/db"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Timestamps are compared as text, so every stored time must be UTC.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func tx(ctx context.Context, conn *sqlx.DB, fn func(*sqlx.Tx) error) error {
	return db.Tx(ctx, conn, fn)
}

// translationExists matches words with a catalog or custom translation in a
// language. It expects the word id as w.id and binds (targetLang, profileID, targetLang).
const translationExists = `(
    EXISTS (SELECT 1 FROM translations t WHERE t.word_id = w.id AND t.target_lang = ?)
    OR EXISTS (SELECT 1 FROM user_custom_words cw WHERE cw.word_id = w.id AND cw.profile_id = ? AND cw.target_lang = ?)
)`

// displayTranslation renders the translations shown next to a word, binding
// (targetLang, profileID, targetLang).
const displayTranslation = `COALESCE(
    (SELECT group_concat(t.translation, '; ') FROM translations t WHERE t.word_id = w.id AND t.target_lang = ?),
    (SELECT cw.translation FROM user_custom_words cw WHERE cw.word_id = w.id AND cw.profile_id = ? AND cw.target_lang = ?),
    ''
)`
