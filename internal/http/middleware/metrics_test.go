package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersInflightAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics("/metrics"))
	r.GET("/api/summary/:summaryId", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.DELETE("/api/summary/:summaryId", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "# metrics") })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/summary/:summaryId", "200"))
	baseDel := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/summary/:summaryId", "204"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))
	baseScrape := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/metrics", "200"))

	hit := func(method, path string, want int) {
		t.Helper()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		if w.Code != want {
			t.Fatalf("%s %s -> %d; want %d", method, path, w.Code, want)
		}
	}
	hit(http.MethodGet, "/api/summary/a1", http.StatusOK)
	hit(http.MethodGet, "/api/summary/b2", http.StatusOK)
	hit(http.MethodDelete, "/api/summary/a1", http.StatusNoContent)
	hit(http.MethodGet, "/wp-login.php", http.StatusNotFound)
	hit(http.MethodGet, "/metrics", http.StatusOK)

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/summary/:summaryId", "200")); got != baseOK+2 {
		t.Fatalf("route counter = %v; want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/summary/:summaryId", "204")); got != baseDel+1 {
		t.Fatalf("delete counter = %v; want %v", got, baseDel+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != base404+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, base404+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/metrics", "200")); got != baseScrape {
		t.Fatalf("skipped route was counted: %v", got)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
