// Package services – SummaryService
//
// SummaryService owns the lifecycle of summaries: it validates uploads, asks
// the summarization gateway for text, persists the result, and shares stored
// summaries by email. All public methods are OpenTelemetry-instrumented and
// log through the request-scoped zerolog logger carried by ctx.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-notes-summarizer/internal/domain"
	"github.com/tbourn/go-notes-summarizer/internal/notify"
	"github.com/tbourn/go-notes-summarizer/internal/repo"
)

// ShareSubjectPrefix starts the subject of every shared summary email.
const ShareSubjectPrefix = "AI Meeting Notes Summary: "

// UploadScope namespaces idempotency keys of the upload operation.
const UploadScope = "summary.upload"

// SummaryRepo defines the repository contract required by SummaryService.
type SummaryRepo interface {
	CreateSummary(ctx context.Context, db *gorm.DB, in repo.NewSummary) (*domain.Summary, error)
	ListSummaries(ctx context.Context, db *gorm.DB) ([]domain.Summary, error)
	CountSummaries(ctx context.Context, db *gorm.DB) (int64, error)
	ListSummariesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Summary, error)
	GetSummary(ctx context.Context, db *gorm.DB, id string) (*domain.Summary, error)
	UpdateSummaryText(ctx context.Context, db *gorm.DB, id, text string) (*domain.Summary, error)
	DeleteSummary(ctx context.Context, db *gorm.DB, id string) error
	SummariesStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)

	GetIdempotency(ctx context.Context, db *gorm.DB, k repo.IdempotencyKey, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, k repo.IdempotencyKey, summaryID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// Summarizer produces summary text. It must never fail; see summarizer.Gateway.
type Summarizer interface {
	Summarize(ctx context.Context, text string, customPrompt *string) string
}

// SummaryService implements upload, listing, editing, deletion and sharing.
type SummaryService struct {
	DB         *gorm.DB
	Repo       SummaryRepo
	Summarizer Summarizer
	Sender     notify.Sender

	// IdempotencyTTL is how long an Idempotency-Key replays the same summary.
	IdempotencyTTL time.Duration
}

// NewSummaryService constructs a SummaryService with a 24h idempotency window.
func NewSummaryService(db *gorm.DB, r SummaryRepo, s Summarizer, sender notify.Sender) *SummaryService {
	return &SummaryService{
		DB:             db,
		Repo:           r,
		Summarizer:     s,
		Sender:         sender,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// UploadInput is the payload of an upload.
type UploadInput struct {
	Text         string
	Filename     string
	CustomPrompt *string
}

// ShareInput is the payload of a share request.
type ShareInput struct {
	Email         string
	SummaryID     string
	CustomMessage string
}

// Upload summarizes in.Text and stores the result. The record is written only
// after the gateway returned, so a failed or abandoned request leaves nothing
// behind.
func (s *SummaryService) Upload(ctx context.Context, in UploadInput) (*domain.Summary, error) {
	filename := norm.NFC.String(strings.TrimSpace(in.Filename))

	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "Upload",
		trace.WithAttributes(
			attribute.String("summary.filename", filename),
			attribute.Int("summary.text_length", len(in.Text)),
			attribute.Bool("summary.custom_prompt", in.CustomPrompt != nil),
		))
	defer span.End()

	if strings.TrimSpace(in.Text) == "" || filename == "" {
		return nil, ErrMissingFields
	}

	var prompt *string
	if in.CustomPrompt != nil && strings.TrimSpace(*in.CustomPrompt) != "" {
		p := *in.CustomPrompt
		prompt = &p
	}

	text := s.Summarizer.Summarize(ctx, in.Text, prompt)
	original := in.Text

	out, err := s.Repo.CreateSummary(ctx, s.DB, repo.NewSummary{
		Filename:     filename,
		SummaryText:  text,
		OriginalText: &original,
		CustomPrompt: prompt,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store summary: %w", err)
	}
	span.SetAttributes(attribute.String("summary.id", out.ID))
	zerolog.Ctx(ctx).Info().
		Str("summary_id", out.ID).
		Str("filename", filename).
		Int("summary_length", len(text)).
		Msg("summary created")
	return out, nil
}

// UploadOnce behaves like Upload, except that a repeated key within the
// idempotency window returns the summary created the first time (replayed is
// true) without summarizing again. A blank key disables the check.
func (s *SummaryService) UploadOnce(ctx context.Context, key repo.IdempotencyKey, in UploadInput) (sum *domain.Summary, replayed bool, err error) {
	if strings.TrimSpace(key.Key) == "" {
		sum, err = s.Upload(ctx, in)
		return sum, false, err
	}

	rec, err := s.Repo.GetIdempotency(ctx, s.DB, key, time.Now().UTC())
	switch {
	case err == nil:
		prev, gerr := s.Repo.GetSummary(ctx, s.DB, rec.SummaryID)
		if gerr == nil {
			return prev, true, nil
		}
		if !errors.Is(gerr, gorm.ErrRecordNotFound) {
			return nil, false, gerr
		}
		// The summary was deleted since; treat the key as fresh.
	case !errors.Is(err, repo.ErrNotFound):
		return nil, false, err
	}

	sum, err = s.Upload(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if _, ierr := s.Repo.CreateIdempotency(ctx, s.DB, key, sum.ID, http.StatusCreated, s.IdempotencyTTL); ierr != nil {
		// The summary exists either way; a lost race only means the next
		// replay resolves to the winner's record.
		zerolog.Ctx(ctx).Warn().Err(ierr).Str("summary_id", sum.ID).Msg("idempotency record not stored")
	}
	return sum, false, nil
}

// List returns all summaries, newest first.
func (s *SummaryService) List(ctx context.Context) ([]domain.Summary, error) {
	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "List")
	defer span.End()
	return s.Repo.ListSummaries(ctx, s.DB)
}

// ListPage returns one page (1-based) of summaries plus the total count.
// Invalid page values fall back to page 1 of 20.
func (s *SummaryService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Summary, int64, error) {
	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "ListPage",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := s.Repo.CountSummaries(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Summary{}, 0, nil
	}
	items, err := s.Repo.ListSummariesPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Stats returns the count and latest UpdatedAt used for list ETags.
func (s *SummaryService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Repo.SummariesStats(ctx, s.DB)
}

// Get returns one summary or ErrSummaryNotFound.
func (s *SummaryService) Get(ctx context.Context, id string) (*domain.Summary, error) {
	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("summary.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingFields
	}
	out, err := s.Repo.GetSummary(ctx, s.DB, id)
	return out, mapNotFound(err)
}

// Update replaces the text of a summary.
func (s *SummaryService) Update(ctx context.Context, id, text string) (*domain.Summary, error) {
	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("summary.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" || strings.TrimSpace(text) == "" {
		return nil, ErrMissingFields
	}
	out, err := s.Repo.UpdateSummaryText(ctx, s.DB, id, text)
	if err != nil {
		return nil, mapNotFound(err)
	}
	zerolog.Ctx(ctx).Info().Str("summary_id", id).Msg("summary updated")
	return out, nil
}

// Delete permanently removes a summary.
func (s *SummaryService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("summary.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return ErrMissingFields
	}
	if err := s.Repo.DeleteSummary(ctx, s.DB, id); err != nil {
		return mapNotFound(err)
	}
	zerolog.Ctx(ctx).Info().Str("summary_id", id).Msg("summary deleted")
	return nil
}

// Share emails a stored summary. The address is validated before the store
// or the sender is touched.
func (s *SummaryService) Share(ctx context.Context, in ShareInput) error {
	ctx, span := otel.Tracer("services/SummaryService").Start(ctx, "Share",
		trace.WithAttributes(attribute.String("summary.id", in.SummaryID)))
	defer span.End()

	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.SummaryID) == "" {
		return ErrMissingFields
	}
	to, err := notify.ParseAddress(in.Email)
	if err != nil {
		return ErrInvalidEmail
	}

	sum, err := s.Repo.GetSummary(ctx, s.DB, in.SummaryID)
	if err != nil {
		return mapNotFound(err)
	}

	body := sum.SummaryText
	if in.CustomMessage != "" {
		body = in.CustomMessage + "\n\n" + sum.SummaryText
	}
	msg := notify.Message{To: to, Subject: ShareSubjectPrefix + sum.Filename, Body: body}
	if err := s.Sender.Send(ctx, msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrShareFailed, err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSummaryNotFound
	}
	return err
}
