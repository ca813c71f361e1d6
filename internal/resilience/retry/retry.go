// Package retry runs an operation again, with exponential backoff, while it
// keeps failing with an error the policy considers transient.
//
// Attempt i (zero based) that fails with a retryable error is followed by a
// wait of BaseDelay * 2^i. A non-retryable error ends the loop at once with no
// wait, and after MaxRetries attempts the last error is returned unchanged.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// MaxRetries is the total number of attempts. Values below 1 mean one attempt.
	MaxRetries int
	// BaseDelay is the wait after the first failed attempt; it doubles each time.
	BaseDelay time.Duration
	// Retryable decides whether an error is worth another attempt. Nil retries nothing.
	Retryable func(error) bool
	// Sleep is the waiting primitive; nil uses a context-aware timer.
	Sleep SleepFunc
	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns three attempts starting at one second.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{MaxRetries: 3, BaseDelay: time.Second, Retryable: retryable}
}

// Delay returns the wait that follows failed attempt i (zero based).
func (p Policy) Delay(i int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(i))
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. Cancelling ctx abandons any pending wait.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = TimerSleep
	}

	var zero T
	for i := 0; ; i++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if p.Retryable == nil || !p.Retryable(err) || i >= attempts-1 {
			return zero, err
		}

		delay := p.Delay(i)
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", i+1).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("retrying after transient failure")
		if p.OnRetry != nil {
			p.OnRetry(i+1, delay, err)
		}

		if serr := sleep(ctx, delay); serr != nil {
			return zero, fmt.Errorf("retry aborted: %w", serr)
		}
	}
}

// TimerSleep is the production SleepFunc.
func TimerSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
