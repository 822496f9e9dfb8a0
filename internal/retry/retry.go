// package retry wraps flaky collaborator calls in exponential backoff.
//
// Policies are immutable per call site. Only errors classified as transient
// by [shared.IsRetryable] are retried; everything else fails fast with its
// classification intact.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/desertthunder/favtrack/internal/shared"
)

// Policy describes one exponential backoff schedule.
//
// The delay before attempt n is min(MaxDelay, BaseDelay * Multiplier^(n-1)),
// perturbed by ±JitterFraction uniformly at random.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

// Named presets.
var (
	// Critical covers operations that must survive flaky networks (setup, auth).
	Critical = Policy{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second, Multiplier: 2.0, JitterFraction: 0.25}

	// Network covers user-facing rating mutations.
	Network = Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 2.0, JitterFraction: 0.25}

	// Quick covers background catalog searches where staleness beats latency.
	Quick = Policy{MaxAttempts: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second, Multiplier: 2.0, JitterFraction: 0.25}
)

func (p Policy) schedule() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.JitterFraction
	return b
}

// Do invokes op until it succeeds, fails permanently, or the policy's
// attempts are exhausted. Waits suspend only the calling goroutine and are
// cut short by context cancellation.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	wrapped := func() (T, error) {
		v, err := op(ctx)
		if err != nil && !shared.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(policy.schedule()),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
	)
}

// Void is [Do] for operations with no result value.
func Void(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
