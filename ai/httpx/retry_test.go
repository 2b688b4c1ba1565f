package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lizet96/medibot-backend/ai/httpx"
)

func fastRetry() httpx.RetryConfig {
	return httpx.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestWithRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := httpx.WithRetry(context.Background(), fastRetry(), func() error {
		calls++
		if calls < 3 {
			return &httpx.StatusError{Provider: "test", Code: http.StatusServiceUnavailable}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnPermanentStatus(t *testing.T) {
	calls := 0
	err := httpx.WithRetry(context.Background(), fastRetry(), func() error {
		calls++
		return &httpx.StatusError{Provider: "test", Code: http.StatusUnauthorized, Body: "bad key"}
	})

	var statusErr *httpx.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "test API error 401: bad key")
}

func TestWithRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	boom := errors.New("connection reset")
	err := httpx.WithRetry(context.Background(), fastRetry(), func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := httpx.WithRetry(ctx, httpx.RetryConfig{MaxAttempts: 5, InitialDelay: time.Second, Multiplier: 2, MaxDelay: time.Second}, func() error {
		calls++
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	assert.True(t, httpx.IsRetryableHTTPStatus(http.StatusTooManyRequests))
	assert.True(t, httpx.IsRetryableHTTPStatus(http.StatusBadGateway))
	assert.True(t, httpx.IsRetryableHTTPStatus(http.StatusGatewayTimeout))
	assert.False(t, httpx.IsRetryableHTTPStatus(http.StatusBadRequest))
	assert.False(t, httpx.IsRetryableHTTPStatus(http.StatusOK))
}
