package shared

import (
	"context"
	"errors"
	"time"
)

// Retry runs fn up to attempts times, sleeping base, 2*base, 4*base, ...
// between failures. Returns nil on the first success, the last error once
// attempts are exhausted, or the context error if cancelled mid-wait.
// Errors wrapped with [Permanent] abort the loop immediately.
//
// Delays are fixed configuration, not adaptive.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := base

	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err = fn(); err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return err
}

// Permanent marks err as non-retryable. [Retry] unwraps and returns it
// without consuming further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
