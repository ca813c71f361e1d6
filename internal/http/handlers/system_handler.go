package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-notes-summarizer/internal/http/middleware"
)

const serviceName = "AI Notes Summarizer API"

// healthTimeout bounds the store ping of GET /health.
const healthTimeout = 2 * time.Second

// RootResponse describes the service at GET /.
type RootResponse struct {
	Message   string            `json:"message" example:"AI Notes Summarizer API"`
	Version   string            `json:"version" example:"1.0.0"`
	Status    string            `json:"status" example:"running"`
	Timestamp time.Time         `json:"timestamp"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message" example:"Server is running"`
}

// Root godoc
// @ID          root
// @Summary     Service information
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.RootResponse
// @Router      / [get]
func (h *Handlers) Root(c *gin.Context) {
	api := h.info.APIBasePath
	if api == "/" {
		api = ""
	}
	ok(c, http.StatusOK, RootResponse{
		Message:   serviceName,
		Version:   h.info.Version,
		Status:    "running",
		Timestamp: h.now().UTC(),
		Endpoints: map[string]string{
			"health": "/health",
			"api":    api + "/summary",
		},
	})
}

// Health godoc
// @ID          health
// @Summary     Liveness and store health
// @Description Reports ok while the server runs; 503 when the database does not answer a ping.
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Failure     503  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	if h.info.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.info.Ping(ctx); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health check: database ping failed")
			ok(c, http.StatusServiceUnavailable, HealthResponse{
				Status:    "degraded",
				Timestamp: h.now().UTC(),
				Message:   "Database unavailable",
			})
			return
		}
	}
	ok(c, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC(),
		Message:   "Server is running",
	})
}
