package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/testutil"
)

type ProgressRepositorySuite struct {
	suite.Suite
	db       *db.DB
	seed     *testutil.Seeder
	repo     repository.ProgressRepository
	sessions repository.SessionRepository
}

func (s *ProgressRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.seed = testutil.NewSeeder(s.T(), s.db)
	s.repo = sqlite.NewProgressRepository(s.db.DB)
	s.sessions = sqlite.NewSessionRepository(s.db.DB)
}

func (s *ProgressRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func learnedRow(profileID, wordID int64, now time.Time) models.Progress {
	due := now.AddDate(0, 0, 1)
	return models.Progress{
		ProfileID:     profileID,
		WordID:        wordID,
		Status:        models.StatusLearned,
		Stage:         1,
		Repetitions:   1,
		IntervalDays:  1,
		LearnedAt:     &now,
		LastReviewAt:  &now,
		NextReviewAt:  &due,
		CorrectStreak: 1,
	}
}

func (s *ProgressRepositorySuite) TestApplyLearn_InsertsOnlyAbsentRows() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	w1 := s.seed.Word("one", "en", "ru", "один")
	w2 := s.seed.Word("two", "en", "ru", "два")
	s.seed.Progress(profileID, w2, "known", 4, 7, &testutil.Now)

	inserted, err := s.repo.ApplyLearn(ctx, []models.Progress{
		learnedRow(profileID, w1, testutil.Now),
		learnedRow(profileID, w2, testutil.Now),
	}, nil)
	s.Require().NoError(err)
	s.Assert().Equal(1, inserted)

	kept, err := s.repo.Get(ctx, profileID, w2)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusKnown, kept.Status)
	s.Assert().Equal(7, kept.Repetitions)

	fresh, err := s.repo.Get(ctx, profileID, w1)
	s.Require().NoError(err)
	s.Require().NotNil(fresh.NextReviewAt)
	s.Assert().True(testutil.Now.AddDate(0, 0, 1).Equal(*fresh.NextReviewAt))
	s.Assert().Equal(1, fresh.CorrectStreak)
}

func (s *ProgressRepositorySuite) TestApplyLearn_FinishesSessionOnce() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	w1 := s.seed.Word("one", "en", "ru", "один")
	sessionID, err := s.sessions.Create(ctx, profileID, models.SessionLearn, 2, testutil.Now)
	s.Require().NoError(err)

	finish := &models.SessionFinish{SessionID: sessionID, WordsTotal: 1, WordsCorrect: 1, FinishedAt: testutil.Now}
	_, err = s.repo.ApplyLearn(ctx, []models.Progress{learnedRow(profileID, w1, testutil.Now)}, finish)
	s.Require().NoError(err)

	later := &models.SessionFinish{SessionID: sessionID, WordsTotal: 9, WordsCorrect: 0, FinishedAt: testutil.Now.Add(time.Hour)}
	_, err = s.repo.ApplyLearn(ctx, nil, later)
	s.Require().NoError(err)

	session, err := s.sessions.Get(ctx, sessionID)
	s.Require().NoError(err)
	s.Assert().Equal(1, session.WordsTotal)
	s.Assert().Equal(1, session.WordsCorrect)
	s.Require().NotNil(session.FinishedAt)
	s.Assert().True(testutil.Now.Equal(*session.FinishedAt))
}

func (s *ProgressRepositorySuite) TestApplyReview_UpdatesRowsAndAppendsEvents() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	w1 := s.seed.Word("one", "en", "ru", "один")
	s.seed.Progress(profileID, w1, "learned", 2, 2, &testutil.Now)
	sessionID := s.seed.Session(profileID, "review")

	row, err := s.repo.Get(ctx, profileID, w1)
	s.Require().NoError(err)
	row.Stage = 0
	row.WrongStreak = 1
	row.CorrectStreak = 0
	row.LastReviewAt = &testutil.Now

	events := []models.ReviewEvent{{ProfileID: profileID, WordID: w1, Result: models.ReviewWrong, CreatedAt: testutil.Now}}
	finish := &models.SessionFinish{SessionID: sessionID, WordsTotal: 1, WordsCorrect: 0, FinishedAt: testutil.Now}
	s.Require().NoError(s.repo.ApplyReview(ctx, []models.Progress{*row}, events, finish))

	updated, err := s.repo.Get(ctx, profileID, w1)
	s.Require().NoError(err)
	s.Assert().Equal(0, updated.Stage)
	s.Assert().Equal(1, updated.WrongStreak)

	var count int
	s.Require().NoError(s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM review_events WHERE word_id = ? AND result = 'wrong'`, w1))
	s.Assert().Equal(1, count)

	session, err := s.sessions.Get(ctx, sessionID)
	s.Require().NoError(err)
	s.Assert().NotNil(session.FinishedAt)
}

func (s *ProgressRepositorySuite) TestApplyReview_RollsBackOnFailure() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	w1 := s.seed.Word("one", "en", "ru", "один")
	s.seed.Progress(profileID, w1, "learned", 2, 2, &testutil.Now)

	row, err := s.repo.Get(ctx, profileID, w1)
	s.Require().NoError(err)
	row.Stage = 3

	events := []models.ReviewEvent{{ProfileID: profileID, WordID: 999, Result: models.ReviewCorrect, CreatedAt: testutil.Now}}
	s.Require().Error(s.repo.ApplyReview(ctx, []models.Progress{*row}, events, nil))

	unchanged, err := s.repo.Get(ctx, profileID, w1)
	s.Require().NoError(err)
	s.Assert().Equal(2, unchanged.Stage)
}

func (s *ProgressRepositorySuite) TestDueForReview_OrderAndTranslationFilter() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	early := s.seed.Word("early", "en", "ru", "рано")
	late := s.seed.Word("late", "en", "ru", "поздно")
	tie := s.seed.Word("tie", "en", "de", "Krawatte")
	future := s.seed.Word("future", "en", "ru", "будущее")
	untranslated := s.seed.Word("none", "en", "de", "nichts")
	fresh := s.seed.Word("fresh", "en", "ru", "свежий")

	s.seed.CustomWord(profileID, tie, "ru", "галстук")
	s.seed.Progress(profileID, late, "learned", 1, 1, testutil.Ptr(testutil.Now.Add(-time.Hour)))
	s.seed.Progress(profileID, early, "learned", 1, 1, testutil.Ptr(testutil.Now.Add(-48*time.Hour)))
	s.seed.Progress(profileID, tie, "learned", 1, 1, testutil.Ptr(testutil.Now.Add(-time.Hour)))
	s.seed.Progress(profileID, future, "learned", 1, 1, testutil.Ptr(testutil.Now.Add(time.Hour)))
	s.seed.Progress(profileID, untranslated, "learned", 1, 1, testutil.Ptr(testutil.Now.Add(-time.Hour)))
	s.seed.Progress(profileID, fresh, "new", 0, 0, nil)

	words, err := s.repo.DueForReview(ctx, profileID, "ru", testutil.Now, 10)
	s.Require().NoError(err)
	s.Require().Len(words, 3)
	s.Assert().Equal(early, words[0].WordID)
	s.Assert().Equal(late, words[1].WordID)
	s.Assert().Equal(tie, words[2].WordID)
	s.Assert().Equal("галстук", words[2].Translation)

	limited, err := s.repo.DueForReview(ctx, profileID, "ru", testutil.Now, 1)
	s.Require().NoError(err)
	s.Assert().Len(limited, 1)
}

func (s *ProgressRepositorySuite) TestListByWords() {
	ctx := context.Background()
	profileID := s.seed.Profile("ru")
	w1 := s.seed.Word("one", "en", "ru")
	w2 := s.seed.Word("two", "en", "ru")
	s.seed.Progress(profileID, w1, "learned", 1, 1, &testutil.Now)

	rows, err := s.repo.ListByWords(ctx, profileID, []int64{w1, w2})
	s.Require().NoError(err)
	s.Assert().Len(rows, 1)
	s.Assert().Contains(rows, w1)

	missing, err := s.repo.Get(ctx, profileID, w2)
	s.Assert().NoError(err)
	s.Assert().Nil(missing)
}

func TestProgressRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProgressRepositorySuite))
}
