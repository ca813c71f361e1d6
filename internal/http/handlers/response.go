// Package handlers provides the HTTP handlers of the summarizer API.
//
// Every response carries a boolean "success". Failures use ErrorResponse
// with a stable code from errors.go; fail() logs 5xx results through the
// request-scoped logger before aborting.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-notes-summarizer/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Always false
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"Summary not found"`
}

// MessageResponse acknowledges operations that return no resource.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Summary deleted successfully!"`
}

func requestID(c *gin.Context) string {
	if rid := middleware.GetRequestID(c); rid != "" {
		return rid
	}
	return c.Writer.Header().Get("X-Request-ID")
}

// fail aborts with an ErrorResponse. Server errors are logged with the
// underlying cause, which never reaches the client.
func fail(c *gin.Context, status int, code, msg string, cause ...error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg)
		if len(cause) > 0 && cause[0] != nil {
			ev = ev.Err(cause[0])
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		RequestID: requestID(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() for the router's NoRoute/NoMethod.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func message(c *gin.Context, msg string) {
	ok(c, http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// bindJSON decodes the request body into dst, answering 413 when the body
// limit was hit and 400 for anything else that does not decode.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
	return false
}
