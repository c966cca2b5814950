package models

import "time"

type ProgressStatus string

const (
	StatusNew     ProgressStatus = "new"
	StatusLearned ProgressStatus = "learned"
	StatusKnown   ProgressStatus = "known"
)

// Rank orders statuses by how far along the learner is.
// Unknown or empty statuses rank like "new".
func (s ProgressStatus) Rank() int {
	switch s {
	case StatusKnown:
		return 3
	case StatusLearned:
		return 2
	default:
		return 1
	}
}

// Progress is the learning record of one word for one profile.
// NextReviewAt is set exactly when Status is not "new".
type Progress struct {
	ProfileID     int64          `db:"profile_id" json:"profile_id"`
	WordID        int64          `db:"word_id" json:"word_id"`
	Status        ProgressStatus `db:"status" json:"status"`
	Stage         int            `db:"stage" json:"stage"`
	Repetitions   int            `db:"repetitions" json:"repetitions"`
	IntervalDays  int            `db:"interval_days" json:"interval_days"`
	LearnedAt     *time.Time     `db:"learned_at" json:"learned_at"`
	LastReviewAt  *time.Time     `db:"last_review_at" json:"last_review_at"`
	NextReviewAt  *time.Time     `db:"next_review_at" json:"next_review_at"`
	CorrectStreak int            `db:"correct_streak" json:"correct_streak"`
	WrongStreak   int            `db:"wrong_streak" json:"wrong_streak"`
}

// BetterThan reports whether p is strictly further along than other,
// comparing status rank, then repetitions, then stage.
func (p Progress) BetterThan(other Progress) bool {
	if p.Status.Rank() != other.Status.Rank() {
		return p.Status.Rank() > other.Status.Rank()
	}
	if p.Repetitions != other.Repetitions {
		return p.Repetitions > other.Repetitions
	}
	return p.Stage > other.Stage
}
