package models

import "time"

type JobType string

const (
	JobRefreshStats            JobType = "refresh_stats"
	JobGenerateReport          JobType = "generate_report"
	JobSendReviewNotifications JobType = "send_review_notifications"
	JobImportWords             JobType = "import_words"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobRefreshStats, JobGenerateReport, JobSendReviewNotifications, JobImportWords:
		return true
	}
	return false
}

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

const DefaultMaxAttempts = 3

// Job is a unit of background work. Attempts is incremented once per claim.
type Job struct {
	ID          int64      `db:"id" json:"id"`
	Type        JobType    `db:"job_type" json:"job_type"`
	Status      JobStatus  `db:"status" json:"status"`
	Payload     RawJSON    `db:"payload" json:"payload,omitempty"`
	Result      RawJSON    `db:"result" json:"result,omitempty"`
	ProfileID   *int64     `db:"profile_id" json:"profile_id"`
	RunAfter    time.Time  `db:"run_after" json:"run_after"`
	Attempts    int        `db:"attempts" json:"attempts"`
	MaxAttempts int        `db:"max_attempts" json:"max_attempts"`
	LastError   *string    `db:"last_error" json:"last_error"`
	ClaimedBy   *string    `db:"claimed_by" json:"claimed_by"`
	StartedAt   *time.Time `db:"started_at" json:"started_at"`
	FinishedAt  *time.Time `db:"finished_at" json:"finished_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// NewJob describes a job to enqueue.
type NewJob struct {
	Type        JobType
	ProfileID   *int64
	Payload     RawJSON
	RunAfter    time.Time
	MaxAttempts int
}

type JobFilter struct {
	Status    JobStatus
	Type      JobType
	ProfileID int64
	Limit     int
}

// ImportPayload is the payload of an import_words job.
type ImportPayload struct {
	SourceDir string `json:"source_dir,omitempty"`
	MapPath   string `json:"map_path,omitempty"`
}
