// Package httpapi wires the HTTP transport (Gin) to the summary service,
// middleware and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic router setup; all dependencies injected
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-notes-summarizer/docs"
	"github.com/tbourn/go-notes-summarizer/internal/config"
	"github.com/tbourn/go-notes-summarizer/internal/domain"
	"github.com/tbourn/go-notes-summarizer/internal/http/handlers"
	"github.com/tbourn/go-notes-summarizer/internal/http/middleware"
	"github.com/tbourn/go-notes-summarizer/internal/notify"
	"github.com/tbourn/go-notes-summarizer/internal/repo"
	"github.com/tbourn/go-notes-summarizer/internal/services"
)

// summaryRepoShim adapts the repository free functions to the
// services.SummaryRepo interface expected by the SummaryService.
type summaryRepoShim struct{}

// CreateSummary proxies repo.CreateSummary.
func (summaryRepoShim) CreateSummary(ctx context.Context, db *gorm.DB, in repo.NewSummary) (*domain.Summary, error) {
	return repo.CreateSummary(ctx, db, in)
}

// ListSummaries proxies repo.ListSummaries.
func (summaryRepoShim) ListSummaries(ctx context.Context, db *gorm.DB) ([]domain.Summary, error) {
	return repo.ListSummaries(ctx, db)
}

// CountSummaries proxies repo.CountSummaries (pagination support).
func (summaryRepoShim) CountSummaries(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountSummaries(ctx, db)
}

// ListSummariesPage proxies repo.ListSummariesPage (pagination support).
func (summaryRepoShim) ListSummariesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Summary, error) {
	return repo.ListSummariesPage(ctx, db, offset, limit)
}

// GetSummary proxies repo.GetSummary.
func (summaryRepoShim) GetSummary(ctx context.Context, db *gorm.DB, id string) (*domain.Summary, error) {
	return repo.GetSummary(ctx, db, id)
}

// UpdateSummaryText proxies repo.UpdateSummaryText.
func (summaryRepoShim) UpdateSummaryText(ctx context.Context, db *gorm.DB, id, text string) (*domain.Summary, error) {
	return repo.UpdateSummaryText(ctx, db, id, text)
}

// DeleteSummary proxies repo.DeleteSummary.
func (summaryRepoShim) DeleteSummary(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteSummary(ctx, db, id)
}

// SummariesStats proxies repo.SummariesStats (list ETag).
func (summaryRepoShim) SummariesStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.SummariesStats(ctx, db)
}

// GetIdempotency proxies repo.GetIdempotency.
func (summaryRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, k repo.IdempotencyKey, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, k, now)
}

// CreateIdempotency proxies repo.CreateIdempotency.
func (summaryRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, k repo.IdempotencyKey, summaryID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, k, summaryID, status, ttl)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the summary API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Access log, redacting PII when cfg.LogRedact is set
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per client IP, bypass on replay)
//  9. CORS and Security headers
//
// sum may run without an AI provider (fallback summaries only); a nil sender
// logs share requests instead of mailing them.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, sum services.Summarizer, sender notify.Sender, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logs
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key"},
		}))
	} else {
		r.Use(middleware.Logger())
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit; note text can be large, so compress replies
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}
	r.Use(limitBody(maxBody))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics("/metrics"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 128,
			Scope:  uploadScope(cfg.APIBasePath),
		},
		func(ctx context.Context, clientID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, repo.IdempotencyKey{ClientID: clientID, Scope: scope, Key: key}, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return rec != nil, nil
		},
	))

	// 8) Token-bucket rate limiter per client
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, nil).Skip("/", "/health", "/metrics")
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", handlers.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: service ← repo/db/summarizer/sender
	if sender == nil {
		sender = notify.LogSender{}
	}
	svc := services.NewSummaryService(db, summaryRepoShim{}, sum, sender)
	if cfg.IdempotencyTTL > 0 {
		svc.IdempotencyTTL = cfg.IdempotencyTTL
	}
	h := handlers.New(svc, handlers.ServiceInfo{
		Version:     cfg.Version,
		APIBasePath: cfg.APIBasePath,
		Ping:        pingFunc(db),
	})

	// Service info and liveness
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		docs.SwaggerInfo.Version = cfg.Version
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/summary", h.UploadSummary)
		api.GET("/summary", h.ListSummaries)
		api.GET("/summary/:summaryId", h.GetSummary)
		api.PUT("/summary", h.UpdateSummary)
		api.DELETE("/summary/:summaryId", h.DeleteSummary)
		api.POST("/summary/share", h.ShareSummary)

		// Legacy paths kept for the first web client.
		api.POST("/summary/upload", h.UploadSummary)
		api.PUT("/summary/update", h.UpdateSummary)
		api.DELETE("/summary/delete/:summaryId", h.DeleteSummary)
	}
}

// uploadScope puts both upload routes in one idempotency scope so a retry
// through either path replays the same summary. Other requests ignore the
// Idempotency-Key header.
func uploadScope(base string) func(*gin.Context) string {
	if base == "/" {
		base = ""
	}
	uploads := map[string]struct{}{
		base + "/summary":        {},
		base + "/summary/upload": {},
	}
	return func(c *gin.Context) string {
		if c.Request.Method != http.MethodPost {
			return ""
		}
		if _, ok := uploads[c.FullPath()]; !ok {
			return ""
		}
		return services.UploadScope
	}
}

// pingFunc checks the connection pool behind db for GET /health.
func pingFunc(db *gorm.DB) func(context.Context) error {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
