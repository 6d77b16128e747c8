package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

func retryConfig() ModelConfig {
	cfg := DefaultModelConfig()
	cfg.MaxRetries = 3
	cfg.RetryDelay = 1 * time.Second
	cfg.RetryBackoffFactor = 2.0
	return cfg
}

// fakeSleeper records requested delays without waiting.
type fakeSleeper struct {
	delays []time.Duration
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return nil
}

func TestRetryExponentialBackoff(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	result, err := callWithRetry(context.Background(), retryConfig(), zap.NewNop(), sleeper.sleep, "test op",
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", apperrors.New(apperrors.CodeAIConnection, "transient")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	// delay * factor^attempt: 1s, then 2s.
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, sleeper.delays)
}

// MaxRetries is the total attempt budget: three attempts, with no sleep
// after the final one.
func TestRetryExhaustsBudget(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	_, err := callWithRetry(context.Background(), retryConfig(), zap.NewNop(), sleeper.sleep, "test op",
		func(context.Context) (string, error) {
			calls++
			return "", apperrors.New(apperrors.CodeAIConnection, "still down")
		})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, sleeper.delays)
	assert.Equal(t, apperrors.CodeAIConnection, apperrors.CodeOf(err))
}

func TestRetryZeroBudgetStillAttemptsOnce(t *testing.T) {
	cfg := retryConfig()
	cfg.MaxRetries = 0
	sleeper := &fakeSleeper{}
	calls := 0

	_, err := callWithRetry(context.Background(), cfg, zap.NewNop(), sleeper.sleep, "test op",
		func(context.Context) (string, error) {
			calls++
			return "", apperrors.New(apperrors.CodeAIConnection, "down")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestRetryAuthenticationAbortsImmediately(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	_, err := callWithRetry(context.Background(), retryConfig(), zap.NewNop(), sleeper.sleep, "test op",
		func(context.Context) (string, error) {
			calls++
			return "", apperrors.New(apperrors.CodeAIAuthentication, "bad key")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
	assert.Equal(t, apperrors.CodeAIAuthentication, apperrors.CodeOf(err))
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := callWithRetry(ctx, retryConfig(), zap.NewNop(),
		func(context.Context, time.Duration) error { return nil },
		"test op",
		func(context.Context) (string, error) {
			calls++
			cancel()
			return "", apperrors.New(apperrors.CodeAIConnection, "transient")
		})

	require.Error(t, err)
	// The cancellation is noticed before the second attempt runs.
	assert.Equal(t, 1, calls)
}

func TestClassifyMapsTransportErrors(t *testing.T) {
	err := classify(apperrors.New(apperrors.CodeTimeout, "slow"), "op")
	assert.Equal(t, apperrors.CodeAIConnection, apperrors.CodeOf(err))

	err = classify(apperrors.New(apperrors.CodeAIQuotaExceeded, "quota"), "op")
	assert.Equal(t, apperrors.CodeAIQuotaExceeded, apperrors.CodeOf(err))

	err = classify(assert.AnError, "op")
	assert.Equal(t, apperrors.CodeAIProvider, apperrors.CodeOf(err))

	assert.NoError(t, classify(nil, "op"))
}
