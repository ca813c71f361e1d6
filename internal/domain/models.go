// Package domain defines the persistence models of the summarizer: the
// Summary record produced by an upload and the Idempotency record that lets
// a retried upload return the summary it already produced.
package domain

import "time"

// Summary is a stored AI (or fallback) summary of an uploaded meeting
// transcript.
//
// Fields:
//   - ID: UUID assigned by the store on create (char(36)).
//   - Filename: name the client gave the uploaded notes.
//   - SummaryText: the summary; replaced wholesale on update.
//   - OriginalText: the source text. Nil on records created before it was kept.
//   - CustomPrompt: instruction the client supplied, nil when the default was used.
//   - CreatedAt / UpdatedAt: UpdatedAt moves strictly forward on every update.
//
// Deletion is permanent; there is no soft-delete column.
type Summary struct {
	ID           string    `json:"id"                     gorm:"type:char(36);primaryKey"`
	Filename     string    `json:"filename"               gorm:"type:varchar(255);not null"`
	SummaryText  string    `json:"summaryText"            gorm:"type:text;not null"`
	OriginalText *string   `json:"originalText,omitempty" gorm:"type:text"`
	CustomPrompt *string   `json:"customPrompt,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"              gorm:"not null;index:idx_summaries_created"`
	UpdatedAt    time.Time `json:"updatedAt"              gorm:"not null"`
}

// TableName returns the database table name for Summary.
func (Summary) TableName() string { return "summaries" }
