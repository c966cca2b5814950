package models

import "time"

type AuditLog struct {
	ID        int64     `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	Meta      RawJSON   `db:"meta" json:"meta"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MergeWordsRequest asks for SourceID to be folded into TargetID.
type MergeWordsRequest struct {
	SourceID int64 `json:"source_id" validate:"required,gt=0"`
	TargetID int64 `json:"target_id" validate:"required,gt=0"`
}

type RenameWordRequest struct {
	Lemma string `json:"lemma" validate:"required,max=255"`
}

// WordEditResult reports the word that survives an admin edit.
type WordEditResult struct {
	WordID   int64 `json:"word_id"`
	MergedID int64 `json:"merged_id,omitempty"`
	Merged   bool  `json:"merged"`
}
