// Summary HTTP handlers.
//
// Endpoints (relative to the API base path):
//   - POST   /summary                 (upload and summarize; Idempotency-Key aware)
//   - GET    /summary                 (list newest-first, optional pagination, ETag)
//   - GET    /summary/{summaryId}     (fetch one)
//   - PUT    /summary                 (replace summary text)
//   - DELETE /summary/{summaryId}     (delete)
//   - POST   /summary/share           (email a summary)
//
// The router also mounts the paths used by the first web client
// (/summary/upload, /summary/update, /summary/delete/{summaryId}) on the same
// handlers.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-notes-summarizer/internal/domain"
	"github.com/tbourn/go-notes-summarizer/internal/http/middleware"
	"github.com/tbourn/go-notes-summarizer/internal/repo"
	"github.com/tbourn/go-notes-summarizer/internal/services"
	"github.com/tbourn/go-notes-summarizer/internal/utils"
)

// Response messages shown to clients.
const (
	msgUploadRequired = "Text and filename are required"
	msgUploaded       = "Summary generated successfully!"
	msgUploadFailed   = "Error uploading summary"
	msgListFailed     = "Error fetching summaries"
	msgIDRequired     = "Summary ID is required"
	msgFetchFailed    = "Error fetching summary"
	msgNotFound       = "Summary not found"
	msgUpdateRequired = "Summary ID and updated summary are required"
	msgUpdated        = "Summary updated successfully!"
	msgUpdateFailed   = "Error updating summary"
	msgDeleted        = "Summary deleted successfully!"
	msgDeleteFailed   = "Error deleting summary"
	msgShareRequired  = "Email and summary ID are required"
	msgInvalidEmail   = "Invalid email address"
	msgShared         = "Summary shared via email successfully!"
	msgShareFailed    = "Error sharing summary"
	msgInvalidJSON    = "invalid JSON body"
)

// HeaderIdempotencyReplayed marks responses served from an earlier upload.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// SummaryService is the application service consumed by the handlers.
// Implementations must be safe for concurrent use and honor ctx.
type SummaryService interface {
	// UploadOnce summarizes and stores in, replaying the earlier result when
	// key was already used.
	UploadOnce(ctx context.Context, key repo.IdempotencyKey, in services.UploadInput) (*domain.Summary, bool, error)
	// List returns every summary, newest first.
	List(ctx context.Context) ([]domain.Summary, error)
	// ListPage returns one page of summaries and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Summary, int64, error)
	// Stats returns the count and latest UpdatedAt, used for the list ETag.
	Stats(ctx context.Context) (int64, *time.Time, error)
	Get(ctx context.Context, id string) (*domain.Summary, error)
	Update(ctx context.Context, id, text string) (*domain.Summary, error)
	Delete(ctx context.Context, id string) error
	Share(ctx context.Context, in services.ShareInput) error
}

// ServiceInfo describes the running service for the root and health
// endpoints. Ping, when set, checks the store.
type ServiceInfo struct {
	Version     string
	APIBasePath string
	Ping        func(ctx context.Context) error
}

// Handlers groups the HTTP endpoints. It depends on the SummaryService
// interface only.
type Handlers struct {
	svc  SummaryService
	info ServiceInfo
	now  func() time.Time
}

// New constructs Handlers bound to svc.
func New(svc SummaryService, info ServiceInfo) *Handlers {
	return &Handlers{svc: svc, info: info, now: time.Now}
}

//
// DTOs
//

// UploadRequest is the payload of POST /summary.
type UploadRequest struct {
	// Raw meeting notes
	Text string `json:"text" example:"Alice: ship v2 Friday. Bob: QA owns the release checklist."`
	// Name of the uploaded file
	Filename string `json:"filename" example:"standup-2025-03-01.txt"`
	// Optional instruction replacing the default summarization prompt
	CustomPrompt *string `json:"customPrompt,omitempty" example:"List action items with owners"`
}

// UpdateRequest is the payload of PUT /summary.
type UpdateRequest struct {
	SummaryID      string `json:"summaryId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	UpdatedSummary string `json:"updatedSummary" example:"- Ship v2 on Friday (Alice)"`
}

// ShareRequest is the payload of POST /summary/share.
type ShareRequest struct {
	Email         string `json:"email" example:"team@example.com"`
	SummaryID     string `json:"summaryId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	CustomMessage string `json:"customMessage,omitempty" example:"Notes from today's standup"`
}

// SummaryResponse wraps a single summary.
type SummaryResponse struct {
	Success bool            `json:"success" example:"true"`
	Summary *domain.Summary `json:"summary"`
	Message string          `json:"message,omitempty" example:"Summary generated successfully!"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSummariesResponse wraps a list of summaries. Pagination is present
// only when page or page_size was requested.
type ListSummariesResponse struct {
	Success    bool             `json:"success" example:"true"`
	Summaries  []domain.Summary `json:"summaries"`
	Count      int              `json:"count" example:"2"`
	Pagination *Pagination      `json:"pagination,omitempty"`
}

//
// Handlers
//

// UploadSummary godoc
// @ID          uploadSummary
// @Summary     Summarize and store meeting notes
// @Description Summarizes the text with the configured AI provider (or the local fallback) and stores the result.
// @Description A repeated Idempotency-Key from the same client returns the first result with Idempotency-Replayed: true.
// @Tags        Summaries
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.UploadRequest  true   "Notes to summarize"
//
// @Success     201  {object}  handlers.SummaryResponse
// @Success     200  {object}  handlers.SummaryResponse  "Replayed"
// @Header      200  {string}  Idempotency-Replayed      "true"
// @Failure     400  {object}  handlers.ErrorResponse    "Missing text or filename"
// @Failure     413  {object}  handlers.ErrorResponse    "Body exceeds MAX_BODY_BYTES"
// @Failure     429  {object}  handlers.ErrorResponse    "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse    "Internal error"
// @Router      /summary [post]
func (h *Handlers) UploadSummary(c *gin.Context) {
	var req UploadRequest
	if !bindJSON(c, &req) {
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	idem := repo.IdempotencyKey{ClientID: middleware.ClientID(c), Scope: services.UploadScope, Key: key}
	in := services.UploadInput{Text: req.Text, Filename: req.Filename, CustomPrompt: req.CustomPrompt}

	sum, replayed, err := h.svc.UploadOnce(c.Request.Context(), idem, in)
	if err != nil {
		h.serviceError(c, err, msgUploadRequired, ErrCodeUploadFailed, msgUploadFailed)
		return
	}

	status := http.StatusCreated
	if replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
		status = http.StatusOK
	}
	ok(c, status, SummaryResponse{Success: true, Summary: sum, Message: msgUploaded})
}

// ListSummaries godoc
// @ID          listSummaries
// @Summary     List summaries
// @Description Returns stored summaries newest first. Passing page or page_size switches to paginated output.
// @Description Supports a weak ETag via If-None-Match and may return 304.
// @Tags        Summaries
// @Produce     json
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"summaries:2:1700000000000000000\")
// @Param       page           query   int     false  "Page number"                 minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListSummariesResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /summary [get]
func (h *Handlers) ListSummaries(c *gin.Context) {
	ctx := c.Request.Context()
	pageRaw, sizeRaw := c.Query("page"), c.Query("page_size")
	paged := pageRaw != "" || sizeRaw != ""
	page, pageSize := utils.PageParams(pageRaw, sizeRaw)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.svc.Stats(ctx); err == nil {
		etag := listETag(count, maxTS, paged, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	if !paged {
		items, err := h.svc.List(ctx)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, msgListFailed, err)
			return
		}
		ok(c, http.StatusOK, ListSummariesResponse{Success: true, Summaries: items, Count: len(items)})
		return
	}

	items, total, err := h.svc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, msgListFailed, err)
		return
	}
	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListSummariesResponse{
		Success:   true,
		Summaries: items,
		Count:     len(items),
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetSummary godoc
// @ID          getSummary
// @Summary     Fetch one summary
// @Tags        Summaries
// @Produce     json
//
// @Param       summaryId  path  string  true  "Summary ID"  format(uuid)
//
// @Success     200  {object}  handlers.SummaryResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Summary not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /summary/{summaryId} [get]
func (h *Handlers) GetSummary(c *gin.Context) {
	sum, err := h.svc.Get(c.Request.Context(), c.Param("summaryId"))
	if err != nil {
		h.serviceError(c, err, msgIDRequired, ErrCodeFetchFailed, msgFetchFailed)
		return
	}
	ok(c, http.StatusOK, SummaryResponse{Success: true, Summary: sum})
}

// UpdateSummary godoc
// @ID          updateSummary
// @Summary     Replace the text of a summary
// @Tags        Summaries
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UpdateRequest  true  "Summary id and new text"
//
// @Success     200  {object}  handlers.SummaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing summaryId or updatedSummary"
// @Failure     404  {object}  handlers.ErrorResponse  "Summary not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /summary [put]
func (h *Handlers) UpdateSummary(c *gin.Context) {
	var req UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	sum, err := h.svc.Update(c.Request.Context(), req.SummaryID, req.UpdatedSummary)
	if err != nil {
		h.serviceError(c, err, msgUpdateRequired, ErrCodeUpdateFailed, msgUpdateFailed)
		return
	}
	ok(c, http.StatusOK, SummaryResponse{Success: true, Summary: sum, Message: msgUpdated})
}

// DeleteSummary godoc
// @ID          deleteSummary
// @Summary     Delete a summary
// @Tags        Summaries
// @Produce     json
//
// @Param       summaryId  path  string  true  "Summary ID"  format(uuid)
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Summary not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /summary/{summaryId} [delete]
func (h *Handlers) DeleteSummary(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("summaryId")); err != nil {
		h.serviceError(c, err, msgIDRequired, ErrCodeDeleteFailed, msgDeleteFailed)
		return
	}
	message(c, msgDeleted)
}

// ShareSummary godoc
// @ID          shareSummary
// @Summary     Email a summary
// @Description Sends the summary text, optionally preceded by a custom message. Without SMTP credentials the email is only logged and the call still succeeds.
// @Tags        Summaries
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ShareRequest  true  "Recipient and summary"
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields or invalid email"
// @Failure     404  {object}  handlers.ErrorResponse  "Summary not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Sending failed"
// @Router      /summary/share [post]
func (h *Handlers) ShareSummary(c *gin.Context) {
	var req ShareRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.svc.Share(c.Request.Context(), services.ShareInput{
		Email:         req.Email,
		SummaryID:     req.SummaryID,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		h.serviceError(c, err, msgShareRequired, ErrCodeShareFailed, msgShareFailed)
		return
	}
	message(c, msgShared)
}

//
// Helpers
//

// serviceError maps service errors onto the HTTP taxonomy. Validation
// failures use requiredMsg; anything unrecognized becomes a 500 with
// failCode and failMsg.
func (h *Handlers) serviceError(c *gin.Context, err error, requiredMsg, failCode, failMsg string) {
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, requiredMsg)
	case errors.Is(err, services.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, ErrCodeInvalidEmail, msgInvalidEmail)
	case errors.Is(err, services.ErrSummaryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
	default:
		fail(c, http.StatusInternalServerError, failCode, failMsg, err)
	}
}

// listETag derives a weak validator from the row count and the newest
// UpdatedAt, so any create, update or delete changes it.
func listETag(count int64, maxTS *time.Time, paged bool, page, pageSize int) string {
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	if paged {
		return fmt.Sprintf(`W/"summaries:%d:%d:p%d:%d"`, count, ts, page, pageSize)
	}
	return fmt.Sprintf(`W/"summaries:%d:%d"`, count, ts)
}
