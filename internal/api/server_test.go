package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/testutil"
)

const adminToken = "s3cret"

type ServerSuite struct {
	suite.Suite
	db      *db.DB
	seed    *testutil.Seeder
	server  *api.Server
	handler http.Handler

	profileID int64
	words     map[string]int64
}

func (s *ServerSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.seed = testutil.NewSeeder(s.T(), s.db)

	profiles := sqlite.NewProfileRepository(s.db.DB)
	catalog := sqlite.NewCatalogRepository(s.db.DB)
	s.server = &api.Server{
		DB:                  s.db,
		StudyService:        services.NewStudyService(profiles, catalog, sqlite.NewProgressRepository(s.db.DB), sqlite.NewSessionRepository(s.db.DB)),
		ProfileService:      services.NewProfileService(profiles, catalog),
		StatsService:        services.NewStatsService(profiles, catalog, sqlite.NewStatsRepository(s.db.DB)),
		NotificationService: services.NewNotificationService(profiles, sqlite.NewNotificationRepository(s.db.DB)),
		ContentService:      services.NewContentService(catalog, sqlite.NewContentRepository(s.db.DB), sqlite.NewAuditRepository(s.db.DB)),
		JobQueue:            jobs.NewQueue(sqlite.NewJobRepository(s.db.DB), func() time.Time { return testutil.Now }),
		AdminToken:          adminToken,
		Now:                 func() time.Time { return testutil.Now },
	}
	s.handler = s.server.Routes()

	s.profileID = s.seed.Profile("ru")
	s.seed.Settings(s.profileID, 10, 20, 2)
	corpus := s.seed.Corpus("top")
	s.words = map[string]int64{
		"apple":      s.seed.Word("apple", "en", "ru", "яблоко"),
		"house":      s.seed.Word("house", "en", "ru", "дом; здание"),
		"strawberry": s.seed.Word("strawberry", "en", "ru", "клубника"),
	}
	s.seed.Stat(corpus, s.words["apple"], 50, 2)
	s.seed.Stat(corpus, s.words["house"], 90, 1)
	s.seed.Stat(corpus, s.words["strawberry"], 10, 3)
	s.seed.EnableCorpus(s.profileID, corpus, 0)
}

func (s *ServerSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) asProfile(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{"X-Profile-ID": strconv.FormatInt(s.profileID, 10)})
}

func (s *ServerSuite) asAdmin(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{"X-Admin-Token": adminToken})
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	s.decode(rec, &body)
	return body.Error.Code
}

func (s *ServerSuite) TestHealthAndReady() {
	rec := s.do(http.MethodGet, "/healthz", nil, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(http.MethodGet, "/readyz", nil, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestReady_DatabaseDown() {
	s.server.DB = failingPinger{}
	rec := s.do(http.MethodGet, "/readyz", nil, nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *ServerSuite) TestRequestIDIsEchoed() {
	rec := s.do(http.MethodGet, "/healthz", nil, map[string]string{"X-Request-ID": "abc-123"})
	s.Equal("abc-123", rec.Header().Get("X-Request-ID"))
}

func (s *ServerSuite) TestProfileHeader() {
	rec := s.do(http.MethodGet, "/stats/dashboard", nil, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHORIZED", s.errorCode(rec))

	rec = s.do(http.MethodGet, "/stats/dashboard", nil, map[string]string{"X-Profile-ID": "abc"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/stats/dashboard", nil, map[string]string{"X-Profile-ID": "999"})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *ServerSuite) TestCreateProfile() {
	rec := s.do(http.MethodPost, "/profiles", map[string]any{"user_id": 7, "native_lang": "EN", "target_lang": " de "}, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var profile models.Profile
	s.decode(rec, &profile)
	s.Equal("de", profile.TargetLang)

	rec = s.do(http.MethodGet, "/profile", nil, map[string]string{"X-Profile-ID": strconv.FormatInt(profile.ID, 10)})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestCreateProfile_Validation() {
	rec := s.do(http.MethodPost, "/profiles", map[string]any{"user_id": 7, "native_lang": "en"}, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/profiles", "{not json", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("BAD_REQUEST", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/profiles", map[string]any{"user_id": 7, "native_lang": "en", "target_lang": "ru", "extra": 1}, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestProfileSettings_PartialUpdate() {
	rec := s.asProfile(http.MethodPut, "/profile/settings", map[string]any{"daily_new_words": 3})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var settings models.ProfileSettings
	s.decode(rec, &settings)
	s.Equal(3, settings.DailyNewWords)
	s.Equal(20, settings.DailyReviewWords)
	s.Equal(2, settings.LearnBatchSize)

	rec = s.asProfile(http.MethodPut, "/profile/settings", map[string]any{"learn_batch_size": 0})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestLearnThenReviewFlow() {
	rec := s.asProfile(http.MethodPost, "/study/learn/start", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var start models.LearnStart
	s.decode(rec, &start)
	s.Require().Len(start.Words, 2)
	s.Require().NotNil(start.SessionID)
	s.Equal(s.words["house"], start.Words[0].WordID)

	rec = s.asProfile(http.MethodPost, "/study/learn/submit", models.SubmitRequest{
		SessionID: start.SessionID,
		Words: []models.AnswerItem{
			{WordID: s.words["house"], Answer: "Дом"},
			{WordID: s.words["apple"], Answer: "яблоко"},
		},
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var learned models.LearnSubmitResult
	s.decode(rec, &learned)
	s.True(learned.AllCorrect)
	s.Equal(2, learned.Learned)

	rec = s.asProfile(http.MethodPost, "/study/review/seed", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var seeded map[string]int
	s.decode(rec, &seeded)
	s.Equal(1, seeded["seeded"])

	rec = s.asProfile(http.MethodPost, "/study/review/start?limit=5", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var review models.ReviewStart
	s.decode(rec, &review)
	s.Require().Len(review.Words, 1)
	s.Equal(s.words["strawberry"], review.Words[0].WordID)

	rec = s.asProfile(http.MethodPost, "/study/review/submit", models.SubmitRequest{
		SessionID: review.SessionID,
		Words:     []models.AnswerItem{{WordID: s.words["strawberry"], Answer: "клубникa"}},
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var reviewed models.ReviewSubmitResult
	s.decode(rec, &reviewed)
	s.Equal(1, reviewed.WordsCorrect)
	s.Equal(0, reviewed.WordsIncorrect)
}

func (s *ServerSuite) TestSeedReview_DefaultLimit() {
	corpus := s.seed.Corpus("extra")
	for i := 1; i <= 9; i++ {
		id := s.seed.Word("extra"+strconv.Itoa(i), "en", "ru", "слово")
		s.seed.Stat(corpus, id, 1, i)
	}
	s.seed.EnableCorpus(s.profileID, corpus, 0)

	rec := s.asProfile(http.MethodPost, "/study/review/seed", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var seeded map[string]int
	s.decode(rec, &seeded)
	s.Equal(10, seeded["seeded"])

	rec = s.asProfile(http.MethodPost, "/study/review/seed", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &seeded)
	s.Equal(2, seeded["seeded"])
}

func (s *ServerSuite) TestStudy_BadLimit() {
	rec := s.asProfile(http.MethodPost, "/study/learn/start?limit=-1", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.asProfile(http.MethodPost, "/study/review/start?limit=x", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestDashboard() {
	s.seed.Progress(s.profileID, s.words["apple"], "learned", 1, 1, &testutil.Now)

	rec := s.asProfile(http.MethodGet, "/stats/dashboard", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var dashboard models.Dashboard
	s.decode(rec, &dashboard)
	s.Equal(1, dashboard.KnownWords)
	s.Equal(1, dashboard.ReviewAvailable)
	s.Equal(2, dashboard.LearnAvailable)

	rec = s.asProfile(http.MethodGet, "/stats/dashboard?live=true", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.asProfile(http.MethodGet, "/stats/weak-words", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestNotificationSettings() {
	rec := s.asProfile(http.MethodPut, "/notifications/settings", map[string]any{"email_enabled": true, "review_hour": 18})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.asProfile(http.MethodGet, "/notifications/settings", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var settings models.NotificationSettings
	s.decode(rec, &settings)
	s.True(settings.EmailEnabled)
	s.False(settings.PushEnabled)
	s.Equal(18, settings.ReviewHour)

	rec = s.asProfile(http.MethodPut, "/notifications/settings", map[string]any{"review_hour": 24})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestJobs() {
	rec := s.do(http.MethodPost, "/jobs", map[string]any{"job_type": "refresh_stats"}, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.asAdmin(http.MethodPost, "/jobs", map[string]any{"job_type": "refresh_stats", "profile_id": s.profileID})
	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())
	var job models.Job
	s.decode(rec, &job)
	s.Equal(models.JobPending, job.Status)
	s.Equal(models.JobRefreshStats, job.Type)

	rec = s.asAdmin(http.MethodPost, "/jobs", map[string]any{"job_type": "import_words", "payload": map[string]string{"map_path": "m.json"}})
	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

	rec = s.asAdmin(http.MethodPost, "/jobs", map[string]any{"job_type": "reindex"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.asAdmin(http.MethodGet, "/jobs/"+strconv.FormatInt(job.ID, 10), nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.asAdmin(http.MethodGet, "/jobs/4242", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.asAdmin(http.MethodGet, "/jobs?job_type=refresh_stats", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list []models.Job
	s.decode(rec, &list)
	s.Len(list, 1)

	rec = s.asAdmin(http.MethodGet, "/jobs?status=bogus", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestAdminWords() {
	dup := s.seed.Word("House", "en", "ru", "жилище")

	rec := s.do(http.MethodPost, "/admin/words/merge", map[string]any{"source_id": dup, "target_id": s.words["house"]}, map[string]string{"X-Admin-Token": "wrong"})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.asAdmin(http.MethodPost, "/admin/words/merge", map[string]any{"source_id": dup, "target_id": s.words["house"]})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var merged models.WordEditResult
	s.decode(rec, &merged)
	s.True(merged.Merged)
	s.Equal(s.words["house"], merged.WordID)

	rec = s.asAdmin(http.MethodPatch, "/admin/words/"+strconv.FormatInt(s.words["apple"], 10), map[string]string{"lemma": "  Apple "})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var renamed models.WordEditResult
	s.decode(rec, &renamed)
	s.False(renamed.Merged)

	rec = s.asAdmin(http.MethodGet, "/admin/audit", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var audit []models.AuditLog
	s.decode(rec, &audit)
	s.Len(audit, 2)
}

func (s *ServerSuite) TestAdminDisabledWithoutToken() {
	s.server.AdminToken = ""
	s.handler = s.server.Routes()

	rec := s.do(http.MethodGet, "/admin/audit", nil, map[string]string{"X-Admin-Token": ""})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerSuite) TestPanicIsRecovered() {
	s.server.StudyService = nil
	s.handler = s.server.Routes()

	rec := s.asProfile(http.MethodPost, "/study/learn/start", nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("INTERNAL_ERROR", s.errorCode(rec))
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("database is locked") }
