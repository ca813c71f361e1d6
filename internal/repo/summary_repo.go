// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Summary
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside a transaction. They hold no business rules: validation and
// summarization live in the service layer.
//
// Error semantics:
//   - A missing summary yields ErrNotFound (gorm.ErrRecordNotFound).
//   - Other DB errors are returned unchanged.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-notes-summarizer/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// nowFn is the store clock; tests replace it to freeze time.
var nowFn = func() time.Time { return time.Now().UTC() }

// NewSummary describes the fields a caller supplies on create. The store
// assigns the ID and both timestamps.
type NewSummary struct {
	Filename     string
	SummaryText  string
	OriginalText *string
	CustomPrompt *string
}

// CreateSummary inserts a new Summary with a fresh UUID and CreatedAt ==
// UpdatedAt == now.
func CreateSummary(ctx context.Context, db *gorm.DB, in NewSummary) (*domain.Summary, error) {
	now := nowFn()
	s := &domain.Summary{
		ID:           uuid.NewString(),
		Filename:     in.Filename,
		SummaryText:  in.SummaryText,
		OriginalText: in.OriginalText,
		CustomPrompt: in.CustomPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ListSummaries returns every summary, newest first.
func ListSummaries(ctx context.Context, db *gorm.DB) ([]domain.Summary, error) {
	out := []domain.Summary{}
	err := db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// CountSummaries returns the total number of stored summaries.
func CountSummaries(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Summary{}).Count(&total).Error
	return total, err
}

// ListSummariesPage returns one page of summaries, newest first. The caller
// computes offset and limit (see utils.Offset).
func ListSummariesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Summary, error) {
	out := []domain.Summary{}
	err := db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetSummary fetches a summary by id, or ErrNotFound.
func GetSummary(ctx context.Context, db *gorm.DB, id string) (*domain.Summary, error) {
	var s domain.Summary
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSummaryText replaces the summary text and moves UpdatedAt forward.
// The new UpdatedAt is strictly later than the previous one even when the
// clock has not advanced (or went backwards), so it is always after
// CreatedAt. Returns the updated record or ErrNotFound.
func UpdateSummaryText(ctx context.Context, db *gorm.DB, id, text string) (*domain.Summary, error) {
	var out domain.Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return err
		}
		ts := nowFn()
		if !ts.After(out.UpdatedAt) {
			ts = out.UpdatedAt.Add(time.Millisecond)
		}
		res := tx.Model(&domain.Summary{}).
			Where("id = ?", id).
			Updates(map[string]any{"summary_text": text, "updated_at": ts})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		out.SummaryText = text
		out.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSummary permanently removes a summary. Returns ErrNotFound when no
// row matched.
func DeleteSummary(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Summary{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
