// Package retry provides a bounded retry policy for remote calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds how often and how fast a failing operation is retried.
// Only errors that Classify accepts as transient are retried; everything
// else fails on the first attempt.
type Policy struct {
	MaxAttempts int
	Backoff     func() backoff.BackOff
	Classify    func(error) bool
	Notify      func(err error, attempt int, wait time.Duration)
}

// Fixed returns a policy that waits delay between attempts.
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(delay)
		},
	}
}

// Exponential returns a policy whose wait doubles from initial up to max.
func Exponential(maxAttempts int, initial, max time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = max
			b.Multiplier = 2
			b.RandomizationFactor = 0.1
			return b
		},
	}
}

// Immediate retries with no delay. Used in tests.
func Immediate(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff:     func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) transient(err error) bool {
	if p.Classify != nil {
		return p.Classify(err)
	}
	return IsTransient(err)
}

// ExhaustedError is returned when every allowed attempt failed with a
// transient error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do runs op under the policy and returns its value.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	attempt := 0
	var lastTransient bool
	wrapped := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !p.transient(err) {
			lastTransient = false
			return v, backoff.Permanent(err)
		}
		lastTransient = true
		return v, err
	}

	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Backoff != nil {
		b = p.Backoff()
	}
	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.attempts())),
		backoff.WithMaxElapsedTime(0),
	}
	if p.Notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			p.Notify(err, attempt, wait)
		}))
	}

	v, err := backoff.Retry(ctx, wrapped, opts...)
	if err != nil && lastTransient && attempt >= p.attempts() {
		return v, &ExhaustedError{Attempts: attempt, Err: err}
	}
	return v, err
}

// Run is Do for operations without a result.
func Run(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// MarkTransient flags err as worth retrying. Nil stays nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked transient or is a network
// timeout. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
