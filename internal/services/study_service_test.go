package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/db"
	apperrors "github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/testutil"
)

type StudyServiceSuite struct {
	suite.Suite
	ctx      context.Context
	db       *db.DB
	seed     *testutil.Seeder
	progress repository.ProgressRepository
	sessions repository.SessionRepository
	service  services.StudyService

	profileID int64
	corpusID  int64
	words     map[string]int64
}

func (s *StudyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.seed = testutil.NewSeeder(s.T(), s.db)
	s.progress = sqlite.NewProgressRepository(s.db.DB)
	s.sessions = sqlite.NewSessionRepository(s.db.DB)
	s.service = services.NewStudyService(
		sqlite.NewProfileRepository(s.db.DB),
		sqlite.NewCatalogRepository(s.db.DB),
		s.progress,
		s.sessions,
	)

	s.profileID = s.seed.Profile("ru")
	s.seed.Settings(s.profileID, 10, 20, 2)
	s.corpusID = s.seed.Corpus("top")
	s.words = map[string]int64{
		"apple":      s.seed.Word("apple", "en", "ru", "яблоко"),
		"house":      s.seed.Word("house", "en", "ru", "дом; здание"),
		"strawberry": s.seed.Word("strawberry", "en", "ru", "клубника"),
	}
	s.seed.Stat(s.corpusID, s.words["apple"], 50, 2)
	s.seed.Stat(s.corpusID, s.words["house"], 90, 1)
	s.seed.Stat(s.corpusID, s.words["strawberry"], 10, 3)
	s.seed.EnableCorpus(s.profileID, s.corpusID, 0)
}

func (s *StudyServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StudyServiceSuite) answers(pairs ...string) []models.AnswerItem {
	items := make([]models.AnswerItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, models.AnswerItem{WordID: s.words[pairs[i]], Answer: pairs[i+1]})
	}
	return items
}

func (s *StudyServiceSuite) TestStartLearn_UsesBatchSizeAndCreatesSession() {
	start, err := s.service.StartLearn(s.ctx, s.profileID, 0, testutil.Now)
	s.Require().NoError(err)

	s.Require().Len(start.Words, 2)
	s.Equal(s.words["house"], start.Words[0].WordID)
	s.Equal(s.words["apple"], start.Words[1].WordID)
	s.Require().NotNil(start.SessionID)

	session, err := s.sessions.Get(s.ctx, *start.SessionID)
	s.Require().NoError(err)
	s.Require().NotNil(session)
	s.Equal(models.SessionLearn, session.SessionType)
	s.Equal(2, session.WordsTotal)
	s.Equal(0, session.WordsCorrect)
	s.Nil(session.FinishedAt)
}

func (s *StudyServiceSuite) TestStartLearn_LimitOverridesBatchSize() {
	start, err := s.service.StartLearn(s.ctx, s.profileID, 3, testutil.Now)
	s.Require().NoError(err)
	s.Len(start.Words, 3)
}

func (s *StudyServiceSuite) TestStartLearn_NothingToLearnCreatesNoSession() {
	for _, id := range s.words {
		s.seed.Progress(s.profileID, id, "learned", 1, 1, &testutil.Now)
	}

	start, err := s.service.StartLearn(s.ctx, s.profileID, 0, testutil.Now)
	s.Require().NoError(err)
	s.Nil(start.SessionID)
	s.NotNil(start.Words)
	s.Empty(start.Words)
}

func (s *StudyServiceSuite) TestStartLearn_UnknownProfile() {
	_, err := s.service.StartLearn(s.ctx, 999, 0, testutil.Now)
	s.True(apperrors.IsNotFound(err))
}

func (s *StudyServiceSuite) TestSubmitLearn_AllCorrectCreatesProgress() {
	sessionID := s.seed.Session(s.profileID, "learn")
	req := models.SubmitRequest{
		SessionID: &sessionID,
		Words:     s.answers("apple", "Яблоко", "house", "здание"),
	}

	result, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now)
	s.Require().NoError(err)
	s.True(result.AllCorrect)
	s.Equal(2, result.WordsCorrect)
	s.Equal(2, result.Learned)
	s.Equal([]string{"дом", "здание"}, result.Results[1].CorrectAnswers)

	p, err := s.progress.Get(s.ctx, s.profileID, s.words["apple"])
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Equal(models.StatusLearned, p.Status)
	s.Equal(1, p.Stage)
	s.Equal(1, p.Repetitions)
	s.Equal(1, p.IntervalDays)
	s.Equal(1, p.CorrectStreak)
	s.Require().NotNil(p.NextReviewAt)
	s.True(p.NextReviewAt.Equal(testutil.Now.AddDate(0, 0, 1)))

	session, err := s.sessions.Get(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Require().NotNil(session.FinishedAt)
	s.Equal(2, session.WordsTotal)
	s.Equal(2, session.WordsCorrect)
}

func (s *StudyServiceSuite) TestSubmitLearn_AnyWrongLearnsNothing() {
	sessionID := s.seed.Session(s.profileID, "learn")
	req := models.SubmitRequest{
		SessionID: &sessionID,
		Words:     s.answers("apple", "яблоко", "house", "машина"),
	}

	result, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now)
	s.Require().NoError(err)
	s.False(result.AllCorrect)
	s.Equal(1, result.WordsCorrect)
	s.Equal(0, result.Learned)
	s.False(result.Results[1].Correct)

	p, err := s.progress.Get(s.ctx, s.profileID, s.words["apple"])
	s.Require().NoError(err)
	s.Nil(p)

	session, err := s.sessions.Get(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Require().NotNil(session.FinishedAt)
	s.Equal(1, session.WordsCorrect)
}

func (s *StudyServiceSuite) TestSubmitLearn_FuzzyAnswerCounts() {
	req := models.SubmitRequest{Words: s.answers("strawberry", "клубникa")}

	result, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now)
	s.Require().NoError(err)
	s.True(result.AllCorrect)
	s.Equal(1, result.Learned)
}

func (s *StudyServiceSuite) TestSubmitLearn_ResubmitDoesNotDuplicate() {
	req := models.SubmitRequest{Words: s.answers("apple", "яблоко")}

	_, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now)
	s.Require().NoError(err)
	again, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now.Add(1))
	s.Require().NoError(err)
	s.True(again.AllCorrect)
	s.Equal(0, again.Learned)
}

func (s *StudyServiceSuite) TestSubmitLearn_Validation() {
	_, err := s.service.SubmitLearn(s.ctx, s.profileID, models.SubmitRequest{}, testutil.Now)
	s.True(apperrors.IsValidation(err))

	dup := models.SubmitRequest{Words: s.answers("apple", "a", "apple", "b")}
	_, err = s.service.SubmitLearn(s.ctx, s.profileID, dup, testutil.Now)
	s.True(apperrors.IsValidation(err))
}

func (s *StudyServiceSuite) TestSubmitLearn_UnknownWord() {
	req := models.SubmitRequest{Words: []models.AnswerItem{{WordID: 12345, Answer: "x"}}}
	_, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now)
	s.True(apperrors.IsNotFound(err))
}

func (s *StudyServiceSuite) TestSubmitLearn_SessionOfAnotherProfile() {
	other := s.seed.Profile("ru")
	sessionID := s.seed.Session(other, "learn")
	req := models.SubmitRequest{SessionID: &sessionID, Words: s.answers("apple", "яблоко")}

	_, err := s.service.SubmitLearn(s.ctx, s.profileID, req, testutil.Now)
	s.True(apperrors.IsNotFound(err))

	p, err := s.progress.Get(s.ctx, s.profileID, s.words["apple"])
	s.Require().NoError(err)
	s.Nil(p)
}

func (s *StudyServiceSuite) TestStartReview_DueOrder() {
	later := testutil.Now.Add(-1)
	earlier := testutil.Now.AddDate(0, 0, -2)
	s.seed.Progress(s.profileID, s.words["apple"], "learned", 2, 2, &later)
	s.seed.Progress(s.profileID, s.words["house"], "learned", 1, 1, &earlier)
	s.seed.Progress(s.profileID, s.words["strawberry"], "learned", 1, 1, testutil.Ptr(testutil.Now.AddDate(0, 0, 1)))

	start, err := s.service.StartReview(s.ctx, s.profileID, 0, testutil.Now)
	s.Require().NoError(err)
	s.Require().Len(start.Words, 2)
	s.Equal(s.words["house"], start.Words[0].WordID)
	s.Equal(s.words["apple"], start.Words[1].WordID)
	s.Require().NotNil(start.SessionID)

	session, err := s.sessions.Get(s.ctx, *start.SessionID)
	s.Require().NoError(err)
	s.Equal(models.SessionReview, session.SessionType)
	s.Equal(2, session.WordsTotal)
}

func (s *StudyServiceSuite) TestStartReview_NothingDue() {
	start, err := s.service.StartReview(s.ctx, s.profileID, 5, testutil.Now)
	s.Require().NoError(err)
	s.Nil(start.SessionID)
	s.Empty(start.Words)
}

func (s *StudyServiceSuite) TestSubmitReview_PartialCredit() {
	s.seed.Progress(s.profileID, s.words["apple"], "learned", 2, 2, &testutil.Now)
	s.seed.Progress(s.profileID, s.words["house"], "learned", 3, 4, &testutil.Now)
	sessionID := s.seed.Session(s.profileID, "review")

	req := models.SubmitRequest{
		SessionID: &sessionID,
		Words:     s.answers("apple", "яблоко", "house", "кот"),
	}
	result, err := s.service.SubmitReview(s.ctx, s.profileID, req, testutil.Now)
	s.Require().NoError(err)
	s.Equal(1, result.WordsCorrect)
	s.Equal(1, result.WordsIncorrect)

	apple, err := s.progress.Get(s.ctx, s.profileID, s.words["apple"])
	s.Require().NoError(err)
	s.Equal(3, apple.Stage)
	s.Equal(3, apple.Repetitions)
	s.Equal(7, apple.IntervalDays)
	s.Equal(1, apple.CorrectStreak)
	s.True(apple.NextReviewAt.Equal(testutil.Now.AddDate(0, 0, 7)))

	house, err := s.progress.Get(s.ctx, s.profileID, s.words["house"])
	s.Require().NoError(err)
	s.Equal(0, house.Stage)
	s.Equal(4, house.Repetitions)
	s.Equal(1, house.WrongStreak)
	s.True(house.NextReviewAt.Equal(testutil.Now))

	var events int
	s.Require().NoError(s.db.Get(&events, `SELECT COUNT(*) FROM review_events WHERE profile_id = ?`, s.profileID))
	s.Equal(2, events)

	session, err := s.sessions.Get(s.ctx, sessionID)
	s.Require().NoError(err)
	s.NotNil(session.FinishedAt)
	s.Equal(2, session.WordsTotal)
}

func (s *StudyServiceSuite) TestSubmitReview_PromotesNewWordOnCorrect() {
	s.seed.Progress(s.profileID, s.words["apple"], "new", 0, 0, nil)
	s.seed.Progress(s.profileID, s.words["house"], "new", 0, 0, nil)

	req := models.SubmitRequest{Words: s.answers("apple", "яблоко", "house", "нет")}
	_, err := s.service.SubmitReview(s.ctx, s.profileID, req, testutil.Now)
	s.Require().NoError(err)

	apple, err := s.progress.Get(s.ctx, s.profileID, s.words["apple"])
	s.Require().NoError(err)
	s.Equal(models.StatusLearned, apple.Status)
	s.NotNil(apple.LearnedAt)
	s.NotNil(apple.NextReviewAt)

	house, err := s.progress.Get(s.ctx, s.profileID, s.words["house"])
	s.Require().NoError(err)
	s.Equal(models.StatusNew, house.Status)
	s.Nil(house.NextReviewAt)
}

func (s *StudyServiceSuite) TestSubmitReview_MissingProgressWritesNothing() {
	s.seed.Progress(s.profileID, s.words["apple"], "learned", 2, 2, &testutil.Now)
	req := models.SubmitRequest{Words: s.answers("apple", "яблоко", "house", "дом")}

	_, err := s.service.SubmitReview(s.ctx, s.profileID, req, testutil.Now)
	s.True(apperrors.IsNotFound(err))

	apple, err := s.progress.Get(s.ctx, s.profileID, s.words["apple"])
	s.Require().NoError(err)
	s.Equal(2, apple.Stage)

	var events int
	s.Require().NoError(s.db.Get(&events, `SELECT COUNT(*) FROM review_events`))
	s.Zero(events)
}

func (s *StudyServiceSuite) TestSeedReview() {
	_, err := s.service.SeedReview(s.ctx, s.profileID, 0, testutil.Now)
	s.True(apperrors.IsValidation(err))

	seeded, err := s.service.SeedReview(s.ctx, s.profileID, 2, testutil.Now)
	s.Require().NoError(err)
	s.Equal(2, seeded)

	house, err := s.progress.Get(s.ctx, s.profileID, s.words["house"])
	s.Require().NoError(err)
	s.Require().NotNil(house)
	s.Equal(models.StatusLearned, house.Status)
	s.Equal(0, house.Stage)
	s.True(house.NextReviewAt.Equal(testutil.Now))

	start, err := s.service.StartReview(s.ctx, s.profileID, 0, testutil.Now)
	s.Require().NoError(err)
	s.Len(start.Words, 2)
}

func TestStudyServiceSuite(t *testing.T) {
	suite.Run(t, new(StudyServiceSuite))
}
