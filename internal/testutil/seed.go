package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
)

// Seeder inserts fixture rows directly, bypassing repositories.
type Seeder struct {
	t  *testing.T
	db *db.DB
}

func NewSeeder(t *testing.T, database *db.DB) *Seeder {
	return &Seeder{t: t, db: database}
}

func (s *Seeder) insert(query string, args ...any) int64 {
	s.t.Helper()
	res, err := s.db.Exec(query, args...)
	require.NoError(s.t, err)
	id, err := res.LastInsertId()
	require.NoError(s.t, err)
	return id
}

// Profile creates a profile learning targetLang from "en".
func (s *Seeder) Profile(targetLang string) int64 {
	return s.insert(`INSERT INTO learning_profiles (user_id, native_lang, target_lang, created_at) VALUES (1, 'en', ?, ?)`,
		targetLang, Now.AddDate(0, 0, -9))
}

func (s *Seeder) Settings(profileID int64, dailyNew, dailyReview, batch int) {
	s.insert(`INSERT INTO profile_settings (profile_id, daily_new_words, daily_review_words, learn_batch_size) VALUES (?, ?, ?, ?)`,
		profileID, dailyNew, dailyReview, batch)
}

// Word creates a word in lang with the given translations into targetLang.
func (s *Seeder) Word(lemma, lang, targetLang string, translations ...string) int64 {
	id := s.insert(`INSERT INTO words (lemma, lang) VALUES (?, ?)`, lemma, lang)
	for _, tr := range translations {
		s.Translation(id, targetLang, tr)
	}
	return id
}

func (s *Seeder) Translation(wordID int64, targetLang, text string) int64 {
	return s.insert(`INSERT INTO translations (word_id, target_lang, translation) VALUES (?, ?, ?)`, wordID, targetLang, text)
}

func (s *Seeder) CustomWord(profileID, wordID int64, targetLang, text string) int64 {
	return s.insert(`INSERT INTO user_custom_words (profile_id, word_id, target_lang, translation) VALUES (?, ?, ?, ?)`,
		profileID, wordID, targetLang, text)
}

func (s *Seeder) Corpus(slug string) int64 {
	return s.insert(`INSERT INTO corpora (slug, name) VALUES (?, ?)`, slug, slug)
}

// Stat records a word in a corpus. A rank of 0 leaves the word unranked.
func (s *Seeder) Stat(corpusID, wordID int64, count, rank int) {
	var r any
	if rank > 0 {
		r = rank
	}
	s.insert(`INSERT INTO corpus_word_stats (corpus_id, word_id, count, rank) VALUES (?, ?, ?, ?)`, corpusID, wordID, count, r)
}

func (s *Seeder) EnableCorpus(profileID, corpusID int64, limit int) {
	s.insert(`INSERT INTO profile_corpora (profile_id, corpus_id, enabled, target_word_limit) VALUES (?, ?, 1, ?)`,
		profileID, corpusID, limit)
}

// Progress inserts a progress row. A nil due time leaves the word unscheduled.
func (s *Seeder) Progress(profileID, wordID int64, status string, stage, repetitions int, due *time.Time) {
	var learned any
	if status != "new" {
		learned = Now.AddDate(0, 0, -3)
	}
	var next any
	if due != nil {
		next = due.UTC()
	}
	s.insert(`
INSERT INTO user_words (profile_id, word_id, status, stage, repetitions, interval_days, learned_at, next_review_at)
VALUES (?, ?, ?, ?, ?, 0, ?, ?)`, profileID, wordID, status, stage, repetitions, learned, next)
}

func (s *Seeder) Session(profileID int64, sessionType string) int64 {
	return s.insert(`INSERT INTO study_sessions (profile_id, session_type, started_at) VALUES (?, ?, ?)`, profileID, sessionType, Now)
}

func (s *Seeder) ReviewEvent(profileID, wordID int64, result string) int64 {
	return s.insert(`INSERT INTO review_events (profile_id, word_id, result, created_at) VALUES (?, ?, ?, ?)`, profileID, wordID, result, Now)
}

func (s *Seeder) Report(wordID, translationID *int64) int64 {
	return s.insert(`INSERT INTO content_reports (word_id, translation_id, issue_type, created_at) VALUES (?, ?, 'wrong_translation', ?)`,
		wordID, translationID, Now)
}

func (s *Seeder) NotificationSettings(profileID int64, email, telegram, push bool, reviewHour int, lastNotified *time.Time) {
	var last any
	if lastNotified != nil {
		last = lastNotified.UTC()
	}
	s.insert(`
INSERT INTO notification_settings (profile_id, email_enabled, telegram_enabled, push_enabled, review_hour, last_notified_at)
VALUES (?, ?, ?, ?, ?, ?)`, profileID, email, telegram, push, reviewHour, last)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
