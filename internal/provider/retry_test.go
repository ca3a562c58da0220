package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries int) provider.RetryConfig {
	return provider.RetryConfig{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	result, err := provider.WithRetry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	result, err := provider.WithRetry(context.Background(), fastRetry(2), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &provider.ProviderError{Code: provider.ErrCodeRateLimit, Provider: "test"}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_SingleRetryBudget(t *testing.T) {
	// The review pipeline allows at most one retry; a second consecutive
	// failure must surface after exactly two attempts.
	calls := 0
	_, err := provider.WithRetry(context.Background(), fastRetry(1), func() (string, error) {
		calls++
		return "", &provider.ProviderError{Code: provider.ErrCodeTimeout, Provider: "test"}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, provider.ErrTimeout)
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	_, err := provider.WithRetry(context.Background(), fastRetry(5), func() (string, error) {
		calls++
		return "", &provider.ProviderError{Code: provider.ErrCodeAuthentication, Provider: "test"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, provider.ErrAuthentication)
}

func TestWithRetry_PlainErrorsAreRetried(t *testing.T) {
	calls := 0
	_, err := provider.WithRetry(context.Background(), fastRetry(1), func() (string, error) {
		calls++
		return "", errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := provider.RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Hour,
		MaxInterval:     time.Hour,
		Multiplier:      2.0,
	}

	_, err := provider.WithRetry(ctx, cfg, func() (string, error) {
		return "", &provider.ProviderError{Code: provider.ErrCodeTimeout}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProviderError_Is(t *testing.T) {
	err := &provider.ProviderError{
		Code:       provider.ErrCodeRateLimit,
		Provider:   "openai",
		StatusCode: 429,
	}

	assert.ErrorIs(t, err, provider.ErrRateLimit)
	assert.NotErrorIs(t, err, provider.ErrAuthentication)
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &provider.ProviderError{Code: provider.ErrCodeUnknown, Cause: cause}

	assert.ErrorIs(t, err, cause)
}
