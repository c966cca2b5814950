package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/testutil"
)

type ContentRepositorySuite struct {
	suite.Suite
	db       *db.DB
	seed     *testutil.Seeder
	repo     repository.ContentRepository
	progress repository.ProgressRepository
	catalog  repository.CatalogRepository
}

func (s *ContentRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.seed = testutil.NewSeeder(s.T(), s.db)
	s.repo = sqlite.NewContentRepository(s.db.DB)
	s.progress = sqlite.NewProgressRepository(s.db.DB)
	s.catalog = sqlite.NewCatalogRepository(s.db.DB)
}

func (s *ContentRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ContentRepositorySuite) count(query string, args ...any) int {
	var n int
	s.Require().NoError(s.db.GetContext(context.Background(), &n, query, args...))
	return n
}

func (s *ContentRepositorySuite) TestMergeWords_Translations() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	target := s.seed.Word("colour", "en", "ru")
	source := s.seed.Word("color", "en", "ru")
	targetShared := s.seed.Translation(target, "ru", "цвет")
	sourceShared := s.seed.Translation(source, "ru", "цвет")
	sourceOnly := s.seed.Translation(source, "ru", "окраска")
	report := s.seed.Report(&source, &sourceShared)

	merged, err := s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)
	s.Assert().True(merged)

	accepted, err := s.catalog.AcceptedTranslations(ctx, profileID, "ru", []int64{target})
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"цвет", "окраска"}, accepted[target])

	var moved int64
	s.Require().NoError(s.db.GetContext(ctx, &moved, `SELECT word_id FROM translations WHERE id = ?`, sourceOnly))
	s.Assert().Equal(target, moved)

	var reported struct {
		WordID        int64 `db:"word_id"`
		TranslationID int64 `db:"translation_id"`
	}
	s.Require().NoError(s.db.GetContext(ctx, &reported, `SELECT word_id, translation_id FROM content_reports WHERE id = ?`, report))
	s.Assert().Equal(target, reported.WordID)
	s.Assert().Equal(targetShared, reported.TranslationID)

	word, err := s.catalog.GetWord(ctx, source)
	s.Require().NoError(err)
	s.Assert().Nil(word)
}

func (s *ContentRepositorySuite) TestMergeWords_CorpusStats() {
	ctx := context.Background()
	target := s.seed.Word("colour", "en", "ru")
	source := s.seed.Word("color", "en", "ru")
	shared := s.seed.Corpus("shared")
	unranked := s.seed.Corpus("unranked")
	sourceOnly := s.seed.Corpus("source-only")

	s.seed.Stat(shared, target, 10, 7)
	s.seed.Stat(shared, source, 30, 3)
	s.seed.Stat(unranked, target, 50, 0)
	s.seed.Stat(unranked, source, 5, 9)
	s.seed.Stat(sourceOnly, source, 12, 4)

	_, err := s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)

	type stat struct {
		Count int  `db:"count"`
		Rank  *int `db:"rank"`
	}
	load := func(corpusID int64) stat {
		var st stat
		s.Require().NoError(s.db.GetContext(ctx, &st, `SELECT count, rank FROM corpus_word_stats WHERE corpus_id = ? AND word_id = ?`, corpusID, target))
		return st
	}

	st := load(shared)
	s.Assert().Equal(30, st.Count)
	s.Require().NotNil(st.Rank)
	s.Assert().Equal(3, *st.Rank)

	st = load(unranked)
	s.Assert().Equal(50, st.Count)
	s.Require().NotNil(st.Rank)
	s.Assert().Equal(9, *st.Rank)

	st = load(sourceOnly)
	s.Assert().Equal(12, st.Count)

	s.Assert().Equal(0, s.count(`SELECT COUNT(*) FROM corpus_word_stats WHERE word_id = ?`, source))
}

func (s *ContentRepositorySuite) TestMergeWords_CustomWords() {
	ctx := context.Background()
	p1 := s.seed.Profile("ru")
	p2 := s.seed.Profile("ru")
	target := s.seed.Word("colour", "en", "ru")
	source := s.seed.Word("color", "en", "ru")
	s.seed.CustomWord(p1, target, "ru", "цвет")
	s.seed.CustomWord(p1, source, "ru", "окрас")
	s.seed.CustomWord(p2, source, "ru", "тон")

	_, err := s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)

	accepted, err := s.catalog.AcceptedTranslations(ctx, p1, "ru", []int64{target})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"цвет"}, accepted[target])

	accepted, err = s.catalog.AcceptedTranslations(ctx, p2, "ru", []int64{target})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"тон"}, accepted[target])
}

func (s *ContentRepositorySuite) TestMergeWords_ProgressPrefersBetterRow() {
	ctx := context.Background()
	better := s.seed.Profile("ru")
	tie := s.seed.Profile("ru")
	moved := s.seed.Profile("ru")
	target := s.seed.Word("colour", "en", "ru")
	source := s.seed.Word("color", "en", "ru")

	// source known beats target learned
	s.seed.Progress(better, target, "learned", 4, 9, &testutil.Now)
	s.seed.Progress(better, source, "known", 1, 1, &testutil.Now)
	// same status and repetitions: higher stage would win, equal keeps target
	s.seed.Progress(tie, target, "learned", 2, 3, &testutil.Now)
	s.seed.Progress(tie, source, "learned", 2, 3, &testutil.Now)
	_, err := s.db.ExecContext(ctx, `UPDATE user_words SET wrong_streak = 5 WHERE profile_id = ? AND word_id = ?`, tie, source)
	s.Require().NoError(err)
	// target has no row
	s.seed.Progress(moved, source, "learned", 3, 4, &testutil.Now)

	s.seed.ReviewEvent(better, source, "correct")

	_, err = s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)

	row, err := s.progress.Get(ctx, better, target)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusKnown, row.Status)
	s.Assert().Equal(1, row.Stage)

	row, err = s.progress.Get(ctx, tie, target)
	s.Require().NoError(err)
	s.Assert().Equal(0, row.WrongStreak)

	row, err = s.progress.Get(ctx, moved, target)
	s.Require().NoError(err)
	s.Require().NotNil(row)
	s.Assert().Equal(3, row.Stage)

	s.Assert().Equal(0, s.count(`SELECT COUNT(*) FROM user_words WHERE word_id = ?`, source))
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM review_events WHERE word_id = ?`, target))
}

func (s *ContentRepositorySuite) TestMergeWords_RepetitionsBreakStatusTie() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	target := s.seed.Word("colour", "en", "ru")
	source := s.seed.Word("color", "en", "ru")
	s.seed.Progress(profileID, target, "known", 2, 3, &testutil.Now)
	s.seed.Progress(profileID, source, "known", 1, 5, &testutil.Now)

	_, err := s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)

	row, err := s.progress.Get(ctx, profileID, target)
	s.Require().NoError(err)
	s.Assert().Equal(5, row.Repetitions)
	s.Assert().Equal(1, row.Stage)
}

// snapshot returns every row of the tables a merge touches, in storage order.
func (s *ContentRepositorySuite) snapshot() map[string][]map[string]any {
	ctx := context.Background()
	tables := []string{"words", "translations", "corpus_word_stats", "user_custom_words", "user_words", "review_events", "content_reports"}
	out := make(map[string][]map[string]any, len(tables))
	for _, table := range tables {
		rows, err := s.db.QueryxContext(ctx, `SELECT * FROM `+table+` ORDER BY rowid`)
		s.Require().NoError(err)
		var list []map[string]any
		for rows.Next() {
			row := map[string]any{}
			s.Require().NoError(rows.MapScan(row))
			list = append(list, row)
		}
		s.Require().NoError(rows.Err())
		s.Require().NoError(rows.Close())
		out[table] = list
	}
	return out
}

func (s *ContentRepositorySuite) TestMergeWords_NoOps() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	target := s.seed.Word("colour", "en", "ru", "цвет")
	source := s.seed.Word("color", "en", "ru", "цвет", "окраска")
	corpusID := s.seed.Corpus("news")
	s.seed.Stat(corpusID, source, 7, 3)
	s.seed.CustomWord(profileID, source, "ru", "колер")
	s.seed.Progress(profileID, source, "learned", 2, 2, &testutil.Now)
	s.seed.ReviewEvent(profileID, source, "correct")
	s.seed.Report(&source, nil)

	merged, err := s.repo.MergeWords(ctx, target, target)
	s.Require().NoError(err)
	s.Assert().False(merged)

	merged, err = s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)
	s.Assert().True(merged)
	after := s.snapshot()

	merged, err = s.repo.MergeWords(ctx, source, target)
	s.Require().NoError(err)
	s.Assert().False(merged)

	s.Assert().Equal(after, s.snapshot())
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM words`))
	s.Assert().Equal(2, s.count(`SELECT COUNT(*) FROM translations WHERE word_id = ?`, target))
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM corpus_word_stats WHERE word_id = ?`, target))
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM user_words WHERE word_id = ?`, target))
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM review_events WHERE word_id = ?`, target))
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM content_reports WHERE word_id = ?`, target))
}

func TestContentRepositorySuite(t *testing.T) {
	suite.Run(t, new(ContentRepositorySuite))
}
