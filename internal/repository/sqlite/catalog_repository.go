package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type catalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository implementation
func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

// unseenWords selects from the profile's enabled corpora, within each corpus
// rank ceiling, the words that have no progress row yet.
func unseenWords(profileID int64) squirrel.SelectBuilder {
	return sqlBuilder.Select().
		From("corpus_word_stats s").
		Join("profile_corpora pc ON pc.corpus_id = s.corpus_id").
		Join("words w ON w.id = s.word_id").
		Where(squirrel.Eq{"pc.profile_id": profileID, "pc.enabled": 1}).
		Where("(pc.target_word_limit = 0 OR s.rank <= pc.target_word_limit)").
		Where("NOT EXISTS (SELECT 1 FROM user_words uw WHERE uw.profile_id = ? AND uw.word_id = w.id)", profileID)
}

func (r *catalogRepository) GetWord(ctx context.Context, id int64) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("getting word: id=%d", id)

	var w models.Word
	err := r.db.GetContext(ctx, &w, `SELECT id, lemma, lang FROM words WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("word not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, err
	}
	return &w, nil
}

func (r *catalogRepository) FindWord(ctx context.Context, lemma, lang string) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("finding word: lemma=%q, lang=%s", lemma, lang)

	var w models.Word
	err := r.db.GetContext(ctx, &w, `SELECT id, lemma, lang FROM words WHERE lemma = ? AND lang = ?`, lemma, lang)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to find word: %v", err)
		return nil, err
	}
	return &w, nil
}

func (r *catalogRepository) ExistingWordIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("checking %d word ids", len(ids))

	existing := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	query, args, err := sqlBuilder.Select("id").From("words").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var found []int64
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		log.Error("failed to query word ids: %v", err)
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *catalogRepository) AcceptedTranslations(ctx context.Context, profileID int64, targetLang string, wordIDs []int64) (map[int64][]string, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("loading accepted translations: profile_id=%d, lang=%s, words=%d", profileID, targetLang, len(wordIDs))

	accepted := make(map[int64][]string, len(wordIDs))
	if len(wordIDs) == 0 {
		return accepted, nil
	}

	type row struct {
		WordID      int64  `db:"word_id"`
		Translation string `db:"translation"`
	}
	queries := []squirrel.SelectBuilder{
		sqlBuilder.Select("word_id", "translation").From("translations").
			Where(squirrel.Eq{"target_lang": targetLang, "word_id": wordIDs}).
			OrderBy("word_id", "id"),
		sqlBuilder.Select("word_id", "translation").From("user_custom_words").
			Where(squirrel.Eq{"profile_id": profileID, "target_lang": targetLang, "word_id": wordIDs}),
	}
	for _, q := range queries {
		query, args, err := q.ToSql()
		if err != nil {
			log.Error("failed to build query: %v", err)
			return nil, err
		}
		var rows []row
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			log.Error("failed to query translations: %v", err)
			return nil, err
		}
		for _, rw := range rows {
			accepted[rw.WordID] = append(accepted[rw.WordID], rw.Translation)
		}
	}
	return accepted, nil
}

func (r *catalogRepository) LearnCandidates(ctx context.Context, profileID int64, targetLang string, limit int) ([]models.LearnWord, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("selecting learn candidates: profile_id=%d, lang=%s, limit=%d", profileID, targetLang, limit)

	query, args, err := unseenWords(profileID).
		Columns("w.id AS word_id", "w.lemma").
		Column(squirrel.Expr(displayTranslation+" AS translation", targetLang, profileID, targetLang)).
		Columns("MIN(s.rank) AS rank", "MAX(s.count) AS count").
		Where(translationExists, targetLang, profileID, targetLang).
		GroupBy("w.id").
		OrderBy("MIN(s.rank) IS NULL", "MIN(s.rank)", "w.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var words []models.LearnWord
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		log.Error("failed to select learn candidates: %v", err)
		return nil, err
	}
	log.Debug("found %d learn candidates", len(words))
	return words, nil
}

func (r *catalogRepository) CountLearnAvailable(ctx context.Context, profileID int64, targetLang string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("counting learnable words: profile_id=%d, lang=%s", profileID, targetLang)

	query, args, err := unseenWords(profileID).
		Column("COUNT(DISTINCT w.id)").
		Where(translationExists, targetLang, profileID, targetLang).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		log.Error("failed to count learnable words: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *catalogRepository) SeedCandidates(ctx context.Context, profileID int64, limit int) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("selecting seed candidates: profile_id=%d, limit=%d", profileID, limit)

	query, args, err := unseenWords(profileID).
		Column("w.id").
		GroupBy("w.id").
		OrderBy("MIN(s.rank) IS NULL", "MIN(s.rank)", "w.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		log.Error("failed to select seed candidates: %v", err)
		return nil, err
	}
	return ids, nil
}

func (r *catalogRepository) UpdateLemma(ctx context.Context, wordID int64, lemma string) error {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("updating lemma: word_id=%d, lemma=%q", wordID, lemma)

	_, err := r.db.ExecContext(ctx, `UPDATE words SET lemma = ? WHERE id = ?`, lemma, wordID)
	if err != nil {
		log.Error("failed to update lemma: %v", err)
	}
	return err
}

func (r *catalogRepository) UpsertCustomWord(ctx context.Context, c models.CustomWord) error {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("upserting custom word: profile_id=%d, word_id=%d", c.ProfileID, c.WordID)

	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO user_custom_words (profile_id, word_id, target_lang, translation)
VALUES (:profile_id, :word_id, :target_lang, :translation)
ON CONFLICT(profile_id, word_id, target_lang) DO UPDATE SET translation = excluded.translation
`, c)
	if err != nil {
		log.Error("failed to upsert custom word: %v", err)
	}
	return err
}

func (r *catalogRepository) CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("getting corpus: slug=%s", slug)

	var c models.Corpus
	err := r.db.GetContext(ctx, &c, `SELECT id, slug, name FROM corpora WHERE slug = ?`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get corpus: %v", err)
		return nil, err
	}
	return &c, nil
}

// ImportCorpus upserts a corpus with its words, frequency stats and
// translations. Re-importing the same batch changes nothing.
func (r *catalogRepository) ImportCorpus(ctx context.Context, batch models.CorpusImport) (models.ImportStats, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("importing corpus: slug=%s, entries=%d", batch.Slug, len(batch.Entries))

	var stats models.ImportStats
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		var corpusID int64
		if err := tx.QueryRowxContext(ctx, `
INSERT INTO corpora (slug, name) VALUES (?, ?)
ON CONFLICT(slug) DO UPDATE SET name = excluded.name
RETURNING id
`, batch.Slug, batch.Name).Scan(&corpusID); err != nil {
			log.Error("failed to upsert corpus %s: %v", batch.Slug, err)
			return err
		}
		stats.Corpora = 1

		wordStmt, err := tx.PreparexContext(ctx, `
INSERT INTO words (lemma, lang) VALUES (?, ?)
ON CONFLICT(lemma, lang) DO UPDATE SET lemma = excluded.lemma
RETURNING id
`)
		if err != nil {
			return err
		}
		defer wordStmt.Close()

		statStmt, err := tx.PreparexContext(ctx, `
INSERT INTO corpus_word_stats (corpus_id, word_id, count, rank) VALUES (?, ?, ?, ?)
ON CONFLICT(corpus_id, word_id) DO UPDATE SET count = excluded.count, rank = excluded.rank
`)
		if err != nil {
			return err
		}
		defer statStmt.Close()

		trStmt, err := tx.PreparexContext(ctx, `
INSERT INTO translations (word_id, target_lang, translation) VALUES (?, ?, ?)
ON CONFLICT(word_id, target_lang, translation) DO NOTHING
`)
		if err != nil {
			return err
		}
		defer trStmt.Close()

		for _, e := range batch.Entries {
			lemma := strings.TrimSpace(e.Lemma)
			if lemma == "" {
				stats.Skipped++
				continue
			}
			var wordID int64
			if err := wordStmt.QueryRowxContext(ctx, lemma, batch.SourceLang).Scan(&wordID); err != nil {
				log.Error("failed to upsert word %q: %v", lemma, err)
				return err
			}
			var rank any
			if e.Rank > 0 {
				rank = e.Rank
			}
			if _, err := statStmt.ExecContext(ctx, corpusID, wordID, e.Count, rank); err != nil {
				log.Error("failed to upsert corpus stat for %q: %v", lemma, err)
				return err
			}
			stats.Words++

			for _, text := range e.Translations {
				text = strings.TrimSpace(text)
				if text == "" {
					continue
				}
				res, err := trStmt.ExecContext(ctx, wordID, batch.TargetLang, text)
				if err != nil {
					log.Error("failed to insert translation for %q: %v", lemma, err)
					return err
				}
				if n, _ := res.RowsAffected(); n > 0 {
					stats.Translations += int(n)
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.ImportStats{}, err
	}
	log.Debug("corpus imported: slug=%s, words=%d, translations=%d", batch.Slug, stats.Words, stats.Translations)
	return stats, nil
}
