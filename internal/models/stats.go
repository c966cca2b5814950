package models

import "time"

type LearnedSeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Dashboard is the derived summary of a profile's learning state.
type Dashboard struct {
	ProfileID        int64                `json:"profile_id"`
	TargetLang       string               `json:"target_lang"`
	DaysLearning     int                  `json:"days_learning"`
	KnownWords       int                  `json:"known_words"`
	LearnAvailable   int                  `json:"learn_available"`
	LearnToday       int                  `json:"learn_today"`
	ReviewAvailable  int                  `json:"review_available"`
	ReviewToday      int                  `json:"review_today"`
	DailyNewWords    int                  `json:"daily_new_words"`
	DailyReviewWords int                  `json:"daily_review_words"`
	LearnBatchSize   int                  `json:"learn_batch_size"`
	LearnedSeries    []LearnedSeriesPoint `json:"learned_series"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

type WeakWord struct {
	WordID      int64  `db:"word_id" json:"word_id"`
	Word        string `db:"lemma" json:"word"`
	WrongCount  int    `db:"wrong_count" json:"wrong_count"`
	WrongStreak int    `db:"wrong_streak" json:"wrong_streak"`
	Stage       int    `db:"stage" json:"stage"`
}

type WeakWords struct {
	Total int        `json:"total"`
	Items []WeakWord `json:"items"`
}

// ProfileCounts are the raw counts the dashboard is derived from.
type ProfileCounts struct {
	KnownWords      int `db:"known_words"`
	ReviewAvailable int `db:"review_available"`
	LearnAvailable  int `db:"learn_available"`
}
