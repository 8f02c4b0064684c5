package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Retry runs op up to attempts times with a fixed delay between attempts.
// The delay is a suspension point, not a busy-wait; a cancelled context ends
// the loop early. The zero value of T and the last error come back when
// every attempt fails; callers decide how to degrade.
func Retry[T any](ctx context.Context, attempts int, delay time.Duration, logger *slog.Logger, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := op(ctx, attempt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		logger.Warn("retry.attempt_failed", "attempt", attempt, "of", attempts, "error", err)

		if attempt == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
