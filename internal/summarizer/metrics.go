package summarizer

import "github.com/prometheus/client_golang/prometheus"

// Gateway outcomes used as the "outcome" label.
const (
	OutcomeProvider     = "provider"
	OutcomeEmpty        = "empty"
	OutcomeRateLimited  = "rate_limited"
	OutcomeFallback     = "fallback"
	OutcomeUnconfigured = "unconfigured"
	OutcomeBreakerOpen  = "breaker_open"
)

var (
	summaryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_requests_total",
			Help: "Summarization requests by how the returned text was produced.",
		},
		[]string{"outcome"},
	)

	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarizer_provider_duration_seconds",
			Help:    "Duration of individual AI provider calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider"},
	)

	providerRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_retries_total",
			Help: "Retries issued after rate-limited provider calls.",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(summaryRequests, providerLatency, providerRetries)
}
