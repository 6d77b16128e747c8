package ai

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

// sleepFunc is swapped out in tests so backoff timing is observable without
// real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// callWithRetry runs fn up to cfg.MaxRetries times total with exponential
// backoff: attempt n waits RetryDelay * BackoffFactor^n before the next try.
// MaxRetries is the attempt budget, not a re-try count; zero still gets one
// attempt. Authentication failures abort immediately; retrying them only
// burns quota against a credential that will not change mid-run. Context
// cancellation aborts between attempts. The last error is classified into
// the AI taxonomy before being returned.
func callWithRetry(ctx context.Context, cfg ModelConfig, logger *zap.Logger, sleep sleepFunc, op string, fn func(ctx context.Context) (string, error)) (string, error) {
	if sleep == nil {
		sleep = sleepWithContext
	}

	var lastErr error
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", apperrors.Wrap(apperrors.CodeAIConnection, err, "%s aborted", op)
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if apperrors.Is(err, apperrors.CodeAIAuthentication) {
			logger.Warn("authentication failure, not retrying", zap.String("op", op), zap.Error(err))
			return "", err
		}

		if attempt == attempts-1 {
			break
		}

		delay := time.Duration(float64(cfg.RetryDelay) * math.Pow(cfg.RetryBackoffFactor, float64(attempt)))
		logger.Warn("AI call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := sleep(ctx, delay); err != nil {
			return "", apperrors.Wrap(apperrors.CodeAIConnection, err, "%s aborted during backoff", op)
		}
	}

	return "", classify(lastErr, op)
}

// classify maps an arbitrary failure into the AI error family. Errors that
// already carry an AI code pass through unchanged.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAIError(err) {
		return err
	}
	switch {
	case apperrors.Is(err, apperrors.CodeTimeout), apperrors.Is(err, apperrors.CodeConnection):
		return apperrors.Wrap(apperrors.CodeAIConnection, err, "%s failed", op)
	default:
		return apperrors.Wrap(apperrors.CodeAIProvider, err, "%s failed after retries", op)
	}
}
