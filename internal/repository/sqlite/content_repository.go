package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
)

type contentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new ContentRepository implementation
func NewContentRepository(db *sqlx.DB) repository.ContentRepository {
	return &contentRepository{db: db}
}

type mergeStep struct {
	name  string
	query string
}

// mergeSteps fold a source word into a target word. Every statement binds
// (source, target) in that order, repeated as needed, and runs as a set
// operation; a conflicting source row is resolved in favour of the target.
var mergeSteps = []mergeStep{
	{"redirect duplicate translation reports", `
UPDATE content_reports
SET translation_id = (
    SELECT tt.id FROM translations st
    JOIN translations tt ON tt.word_id = :target AND tt.target_lang = st.target_lang AND tt.translation = st.translation
    WHERE st.id = content_reports.translation_id
)
WHERE translation_id IN (
    SELECT st.id FROM translations st
    JOIN translations tt ON tt.word_id = :target AND tt.target_lang = st.target_lang AND tt.translation = st.translation
    WHERE st.word_id = :source
)`},
	{"drop duplicate translations", `
DELETE FROM translations
WHERE word_id = :source AND EXISTS (
    SELECT 1 FROM translations tt
    WHERE tt.word_id = :target AND tt.target_lang = translations.target_lang AND tt.translation = translations.translation
)`},
	{"repoint translations", `UPDATE translations SET word_id = :target WHERE word_id = :source`},
	{"merge overlapping corpus stats", `
UPDATE corpus_word_stats
SET count = MAX(count, (SELECT s.count FROM corpus_word_stats s WHERE s.word_id = :source AND s.corpus_id = corpus_word_stats.corpus_id)),
    rank = CASE
        WHEN rank IS NULL THEN (SELECT s.rank FROM corpus_word_stats s WHERE s.word_id = :source AND s.corpus_id = corpus_word_stats.corpus_id)
        ELSE MIN(rank, COALESCE((SELECT s.rank FROM corpus_word_stats s WHERE s.word_id = :source AND s.corpus_id = corpus_word_stats.corpus_id), rank))
    END
WHERE word_id = :target AND corpus_id IN (SELECT corpus_id FROM corpus_word_stats WHERE word_id = :source)`},
	{"drop overlapping corpus stats", `
DELETE FROM corpus_word_stats
WHERE word_id = :source AND corpus_id IN (SELECT corpus_id FROM corpus_word_stats WHERE word_id = :target)`},
	{"repoint corpus stats", `UPDATE corpus_word_stats SET word_id = :target WHERE word_id = :source`},
	{"drop overlapping custom words", `
DELETE FROM user_custom_words
WHERE word_id = :source AND EXISTS (
    SELECT 1 FROM user_custom_words t
    WHERE t.word_id = :target AND t.profile_id = user_custom_words.profile_id AND t.target_lang = user_custom_words.target_lang
)`},
	{"repoint custom words", `UPDATE user_custom_words SET word_id = :target WHERE word_id = :source`},
	{"copy better progress", `
UPDATE user_words
SET (status, stage, repetitions, interval_days, learned_at, last_review_at, next_review_at, correct_streak, wrong_streak) = (
    SELECT s.status, s.stage, s.repetitions, s.interval_days, s.learned_at, s.last_review_at, s.next_review_at, s.correct_streak, s.wrong_streak
    FROM user_words s
    WHERE s.word_id = :source AND s.profile_id = user_words.profile_id
)
WHERE word_id = :target AND EXISTS (
    SELECT 1 FROM user_words s
    WHERE s.word_id = :source AND s.profile_id = user_words.profile_id AND (
        ` + statusRank("s.status") + ` > ` + statusRank("user_words.status") + `
        OR (` + statusRank("s.status") + ` = ` + statusRank("user_words.status") + ` AND s.repetitions > user_words.repetitions)
        OR (` + statusRank("s.status") + ` = ` + statusRank("user_words.status") + ` AND s.repetitions = user_words.repetitions AND s.stage > user_words.stage)
    )
)`},
	{"drop overlapping progress", `
DELETE FROM user_words
WHERE word_id = :source AND profile_id IN (SELECT profile_id FROM user_words WHERE word_id = :target)`},
	{"repoint progress", `UPDATE user_words SET word_id = :target WHERE word_id = :source`},
	{"repoint review events", `UPDATE review_events SET word_id = :target WHERE word_id = :source`},
	{"repoint content reports", `UPDATE content_reports SET word_id = :target WHERE word_id = :source`},
	{"delete source word", `DELETE FROM words WHERE id = :source`},
}

func statusRank(col string) string {
	return "(CASE " + col + " WHEN 'known' THEN 3 WHEN 'learned' THEN 2 ELSE 1 END)"
}

// MergeWords runs every merge step in one transaction. Merging a word into
// itself, or a source that no longer exists, does nothing.
func (r *contentRepository) MergeWords(ctx context.Context, sourceID, targetID int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("merging words: source=%d, target=%d", sourceID, targetID)

	if sourceID == targetID {
		return false, nil
	}
	merged := false
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM words WHERE id = ?`, sourceID); err != nil {
			log.Error("failed to check source word: %v", err)
			return err
		}
		if exists == 0 {
			log.Debug("source word %d already gone", sourceID)
			return nil
		}
		args := map[string]any{"source": sourceID, "target": targetID}
		for _, step := range mergeSteps {
			res, err := tx.NamedExecContext(ctx, step.query, args)
			if err != nil {
				log.Error("merge step %q failed: %v", step.name, err)
				return err
			}
			n, _ := res.RowsAffected()
			log.Debug("merge step %q: %d rows", step.name, n)
		}
		merged = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if merged {
		log.Info("merged word %d into %d", sourceID, targetID)
	}
	return merged, nil
}
