package models

import "time"

type Word struct {
	ID    int64  `db:"id" json:"id"`
	Lemma string `db:"lemma" json:"lemma"`
	Lang  string `db:"lang" json:"lang"`
}

type Translation struct {
	ID          int64  `db:"id" json:"id"`
	WordID      int64  `db:"word_id" json:"word_id"`
	TargetLang  string `db:"target_lang" json:"target_lang"`
	Translation string `db:"translation" json:"translation"`
}

type Corpus struct {
	ID   int64  `db:"id" json:"id"`
	Slug string `db:"slug" json:"slug"`
	Name string `db:"name" json:"name"`
}

// CorpusWordStat is the frequency of a word inside a corpus. Rank 1 is the
// most frequent word; a nil rank means the word is unranked.
type CorpusWordStat struct {
	CorpusID int64 `db:"corpus_id" json:"corpus_id"`
	WordID   int64 `db:"word_id" json:"word_id"`
	Count    int   `db:"count" json:"count"`
	Rank     *int  `db:"rank" json:"rank"`
}

// LearnWord is a candidate for a learn session.
type LearnWord struct {
	WordID      int64  `db:"word_id" json:"word_id"`
	Word        string `db:"lemma" json:"word"`
	Translation string `db:"translation" json:"translation"`
	Rank        *int   `db:"rank" json:"rank"`
	Count       int    `db:"count" json:"count"`
}

// ReviewWord is an item due for review.
type ReviewWord struct {
	WordID       int64      `db:"word_id" json:"word_id"`
	Word         string     `db:"lemma" json:"word"`
	Translation  string     `db:"translation" json:"translation"`
	LearnedAt    *time.Time `db:"learned_at" json:"learned_at"`
	NextReviewAt *time.Time `db:"next_review_at" json:"next_review_at"`
	Stage        int        `db:"stage" json:"stage"`
}

type CustomWord struct {
	ID          int64  `db:"id" json:"id"`
	ProfileID   int64  `db:"profile_id" json:"profile_id"`
	WordID      int64  `db:"word_id" json:"word_id"`
	TargetLang  string `db:"target_lang" json:"target_lang"`
	Translation string `db:"translation" json:"translation"`
}

type ContentReport struct {
	ID            int64     `db:"id" json:"id"`
	ProfileID     *int64    `db:"profile_id" json:"profile_id"`
	WordID        *int64    `db:"word_id" json:"word_id"`
	TranslationID *int64    `db:"translation_id" json:"translation_id"`
	IssueType     string    `db:"issue_type" json:"issue_type"`
	Status        string    `db:"status" json:"status"`
	Message       string    `db:"message" json:"message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CatalogEntry is one imported word with its corpus frequency and translations.
type CatalogEntry struct {
	Lemma        string
	Count        int
	Rank         int
	Translations []string
}

// CorpusImport is a batch of entries for one corpus.
type CorpusImport struct {
	Slug       string
	Name       string
	SourceLang string
	TargetLang string
	Entries    []CatalogEntry
}

type ImportStats struct {
	Corpora      int `json:"corpora"`
	Words        int `json:"words"`
	Translations int `json:"translations"`
	Skipped      int `json:"skipped"`
}
