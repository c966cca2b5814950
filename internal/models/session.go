package models

import "time"

type SessionType string

const (
	SessionLearn  SessionType = "learn"
	SessionReview SessionType = "review"
)

type StudySession struct {
	ID           int64       `db:"id" json:"id"`
	ProfileID    int64       `db:"profile_id" json:"profile_id"`
	SessionType  SessionType `db:"session_type" json:"session_type"`
	WordsTotal   int         `db:"words_total" json:"words_total"`
	WordsCorrect int         `db:"words_correct" json:"words_correct"`
	StartedAt    time.Time   `db:"started_at" json:"started_at"`
	FinishedAt   *time.Time  `db:"finished_at" json:"finished_at"`
}

type ReviewResult string

const (
	ReviewCorrect ReviewResult = "correct"
	ReviewWrong   ReviewResult = "wrong"
)

type ReviewEvent struct {
	ID        int64        `db:"id" json:"id"`
	ProfileID int64        `db:"profile_id" json:"profile_id"`
	WordID    int64        `db:"word_id" json:"word_id"`
	Result    ReviewResult `db:"result" json:"result"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

type AnswerItem struct {
	WordID int64  `json:"word_id" validate:"required,gt=0"`
	Answer string `json:"answer"`
}

type SubmitRequest struct {
	SessionID *int64       `json:"session_id"`
	Words     []AnswerItem `json:"words" validate:"dive"`
}

type ItemResult struct {
	WordID         int64    `json:"word_id"`
	Correct        bool     `json:"correct"`
	CorrectAnswers []string `json:"correct_answers"`
}

type LearnStart struct {
	SessionID *int64      `json:"session_id"`
	Words     []LearnWord `json:"words"`
}

type ReviewStart struct {
	SessionID *int64       `json:"session_id"`
	Words     []ReviewWord `json:"words"`
}

type LearnSubmitResult struct {
	AllCorrect   bool         `json:"all_correct"`
	WordsTotal   int          `json:"words_total"`
	WordsCorrect int          `json:"words_correct"`
	Learned      int          `json:"learned"`
	Results      []ItemResult `json:"results"`
}

type ReviewSubmitResult struct {
	WordsTotal     int          `json:"words_total"`
	WordsCorrect   int          `json:"words_correct"`
	WordsIncorrect int          `json:"words_incorrect"`
	Results        []ItemResult `json:"results"`
}

// SessionFinish carries the totals written when a session is finalized.
type SessionFinish struct {
	SessionID    int64
	WordsTotal   int
	WordsCorrect int
	FinishedAt   time.Time
}
