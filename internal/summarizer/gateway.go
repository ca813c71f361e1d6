package summarizer

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-notes-summarizer/internal/config"
	"github.com/tbourn/go-notes-summarizer/internal/resilience/circuitbreaker"
	"github.com/tbourn/go-notes-summarizer/internal/resilience/retry"
)

// Gateway produces a summary for any input. It never returns an error: a
// missing provider, an empty answer, rate limiting and any other failure all
// map to a deterministic string.
type Gateway struct {
	// Provider may be nil, in which case every call returns Fallback(text).
	Provider Provider
	// Retry governs how rate-limited calls are repeated.
	Retry retry.Policy
	// Breaker may be nil.
	Breaker *circuitbreaker.CircuitBreaker
	// Timeout bounds one Summarize call including retries; zero means none.
	Timeout time.Duration
}

// NewGateway wires p with the retry settings from cfg and a circuit breaker.
// Rate-limit errors are retried and never trip the breaker.
// A nil p yields a gateway that always falls back.
func NewGateway(p Provider, cfg config.AIConfig) *Gateway {
	g := &Gateway{
		Provider: p,
		Retry: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay,
			Retryable:  IsRateLimited,
		},
		Timeout: cfg.Timeout,
	}
	if p != nil {
		cbCfg := circuitbreaker.ProviderConfig(p.Name())
		cbCfg.IsSuccessful = func(err error) bool { return err == nil || IsRateLimited(err) }
		g.Breaker = circuitbreaker.New(cbCfg)
	}
	return g
}

// Summarize returns the provider's summary of text, or a fallback.
// customPrompt replaces DefaultInstruction when it is non-blank.
func (g *Gateway) Summarize(ctx context.Context, text string, customPrompt *string) (out string) {
	ctx, span := otel.Tracer("summarizer").Start(ctx, "Gateway.Summarize",
		trace.WithAttributes(attribute.Int("text.length", len(text))))
	defer span.End()

	outcome := OutcomeFallback
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("summarizer panicked; using fallback")
			out, outcome = Fallback(text), OutcomeFallback
		}
		summaryRequests.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String("summarizer.outcome", outcome))
	}()

	if g == nil || g.Provider == nil {
		zerolog.Ctx(ctx).Warn().Msg("no AI provider configured; returning fallback summary")
		outcome = OutcomeUnconfigured
		return Fallback(text)
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	instruction := DefaultInstruction
	if customPrompt != nil && strings.TrimSpace(*customPrompt) != "" {
		instruction = *customPrompt
	}
	prompt := BuildPrompt(instruction, text)

	res, err := retry.Do(ctx, g.policy(), func(ctx context.Context) (string, error) {
		return circuitbreaker.Run(g.Breaker, func() (string, error) {
			start := time.Now()
			defer func() {
				providerLatency.WithLabelValues(g.Provider.Name()).Observe(time.Since(start).Seconds())
			}()
			return g.Provider.Generate(ctx, prompt)
		})
	})

	log := zerolog.Ctx(ctx)
	switch {
	case err == nil && strings.TrimSpace(res) == "":
		log.Warn().Str("provider", g.Provider.Name()).Msg("provider returned empty summary")
		outcome = OutcomeEmpty
		return EmptyOutputMessage
	case err == nil:
		outcome = OutcomeProvider
		return res
	case IsRateLimited(err):
		log.Warn().Err(err).Str("provider", g.Provider.Name()).Msg("provider rate limited; returning fallback summary")
		outcome = OutcomeRateLimited
		return BusyNotice + Fallback(text)
	case circuitbreaker.IsOpenError(err):
		log.Warn().Str("provider", g.Provider.Name()).Msg("provider circuit open; returning fallback summary")
		outcome = OutcomeBreakerOpen
		return BusyNotice + Fallback(text)
	default:
		log.Error().Err(err).Str("provider", g.Provider.Name()).Msg("provider failed; returning fallback summary")
		span.RecordError(err)
		return Fallback(text)
	}
}

func (g *Gateway) policy() retry.Policy {
	p := g.Retry
	if p.Retryable == nil {
		p.Retryable = IsRateLimited
	}
	name := g.Provider.Name()
	next := p.OnRetry
	p.OnRetry = func(attempt int, d time.Duration, err error) {
		providerRetries.WithLabelValues(name).Inc()
		if next != nil {
			next(attempt, d, err)
		}
	}
	return p
}
