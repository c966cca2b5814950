package srs

import "time"

// Intervals holds the review ladder in days, indexed by stage-1.
var Intervals = [...]int{1, 3, 7, 21, 90}

// MaxStage is the top of the ladder; a correct answer at MaxStage keeps it.
const MaxStage = len(Intervals)

// ClampStage bounds a stage to [0, MaxStage].
func ClampStage(stage int) int {
	if stage < 0 {
		return 0
	}
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}

// IntervalDays returns the interval of the given stage, 0 for stage 0.
func IntervalDays(stage int) int {
	stage = ClampStage(stage)
	if stage == 0 {
		return 0
	}
	return Intervals[stage-1]
}

// Advance computes the next stage and due time after a review.
// A wrong answer resets the item to stage 0 and makes it due immediately.
func Advance(correct bool, stage int, now time.Time) (int, time.Time) {
	if !correct {
		return 0, now
	}
	next := min(ClampStage(stage)+1, MaxStage)
	return next, now.AddDate(0, 0, Intervals[next-1])
}
