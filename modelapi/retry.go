package modelapi

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy configures exponential backoff over a cumulative elapsed-time
// budget. The budget is a ceiling on total retry time measured from the first
// attempt, not a hard cancellation of an in-flight attempt.
type RetryPolicy struct {
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // cap on a single backoff delay
	Multiplier float64       // exponential backoff factor
	Jitter     bool          // add random jitter to prevent thundering herd
	MaxElapsed time.Duration // cumulative budget since the first attempt
	OnRetry    func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns the policy applied to provider calls: delay
// doubling from one second with jitter, under a five second budget.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
		MaxElapsed: 5 * time.Second,
	}
}

// Delay calculates the backoff delay for attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.Jitter {
		// +/- 50% jitter
		delay = delay * (0.5 + rand.Float64()) // rand in [0,1) -> [0.5, 1.5)
	}
	return time.Duration(delay)
}

// Retry executes fn under the policy. Only errors for which IsRetryable
// reports true are re-attempted. Once the cumulative budget is exhausted the
// last failure is returned unchanged, preserving its identity and message.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}

	for attempt := 0; ; attempt++ {
		if !IsRetryable(err) {
			return zero, err
		}

		remaining := policy.MaxElapsed - time.Since(start)
		if remaining <= 0 {
			return zero, err
		}
		delay := policy.Delay(attempt)
		if delay > remaining {
			delay = remaining
		}

		if policy.OnRetry != nil {
			policy.OnRetry(err, attempt+1, delay)
		}

		select {
		case <-ctx.Done():
			return zero, &AbortError{ClientError: ClientError{Message: "call cancelled during retry", Cause: ctx.Err()}}
		case <-time.After(delay):
		}

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
	}
}
