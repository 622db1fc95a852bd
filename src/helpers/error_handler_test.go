package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "network", Kind(NewNetworkError("fetch", cause)))
	assert.Equal(t, "upstream_status", Kind(fmt.Errorf("symbol AAPL: %w", NewUpstreamStatusError("http://x", 500))))
	assert.Equal(t, "database", Kind(NewDatabaseError("append bars", cause)))
	assert.Equal(t, "configuration", Kind(NewConfigurationError("token", cause)))
	assert.Equal(t, "validation", Kind(NewValidationError("row", cause)))
	assert.Equal(t, "canceled", Kind(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, "unknown", Kind(cause))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("GET /pricehistory", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "GET /pricehistory: connection refused", err.Error())
}

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func(int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 2, time.Millisecond, func(attempt int) error {
		calls++
		return fmt.Errorf("attempt %d", attempt)
	})

	assert.EqualError(t, err, "attempt 1")
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	calls := 0
	want := NewUpstreamStatusError("http://x", 404)
	err := RetryWithBackoff(context.Background(), 5, time.Millisecond, func(int) error {
		calls++
		return &Permanent{Err: want}
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, 3, time.Hour, func(int) error {
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
