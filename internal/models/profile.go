package models

import "time"

// Profile is a learner profile: one user learning one target language.
type Profile struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	NativeLang string    `db:"native_lang" json:"native_lang"`
	TargetLang string    `db:"target_lang" json:"target_lang"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ProfileSettings holds the study quotas of a profile.
type ProfileSettings struct {
	ProfileID        int64 `db:"profile_id" json:"profile_id"`
	DailyNewWords    int   `db:"daily_new_words" json:"daily_new_words"`
	DailyReviewWords int   `db:"daily_review_words" json:"daily_review_words"`
	LearnBatchSize   int   `db:"learn_batch_size" json:"learn_batch_size"`
}

const (
	DefaultDailyNewWords    = 10
	DefaultDailyReviewWords = 20
	DefaultLearnBatchSize   = 5
)

// DefaultProfileSettings returns the settings used when a profile has none stored.
func DefaultProfileSettings(profileID int64) ProfileSettings {
	return ProfileSettings{
		ProfileID:        profileID,
		DailyNewWords:    DefaultDailyNewWords,
		DailyReviewWords: DefaultDailyReviewWords,
		LearnBatchSize:   DefaultLearnBatchSize,
	}
}
