package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohboyftw/ClaudeSynth/internal/logging"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		BaseDelay:    time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		JitterFactor: 0,
	}
}

func TestRetryWithResultSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := RetryWithResult(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(fmt.Errorf("boom %d", calls), "rate limited")
		}
		return "ok", nil
	}, logging.Nop())

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryWithResultStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := RetryWithResult(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, NewPermanentError(fmt.Errorf("denied"), "authentication failed")
	}, logging.Nop())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "authentication failed", Describe(err))
}

func TestRetryWithResultExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := RetryWithResult(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, NewTransientError(fmt.Errorf("still limited"), "rate limited")
	}, logging.Nop())

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retries exceeded")
}

func TestRetryWithResultHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithResult(ctx, fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	}, logging.Nop())

	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(fmt.Errorf("plain")))
	assert.True(t, IsTransient(NewTransientError(fmt.Errorf("x"), "")))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", NewTransientError(fmt.Errorf("x"), ""))))
	assert.False(t, IsTransient(NewPermanentError(fmt.Errorf("x"), "")))
}

func TestCalculateBackoffIsCappedAndGrows(t *testing.T) {
	t.Parallel()

	config := RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, calculateBackoff(0, config))
	assert.Equal(t, 2*time.Second, calculateBackoff(1, config))
	assert.Equal(t, 3*time.Second, calculateBackoff(2, config))
	assert.Equal(t, 3*time.Second, calculateBackoff(5, config))
}
