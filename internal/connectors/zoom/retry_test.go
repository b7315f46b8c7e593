package zoom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

func TestRetryPolicyExhaustsBudgetOnTransientErrors(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	attempts := 0

	err := policy.Do(context.Background(), func() error {
		attempts++
		return &APIError{StatusCode: 500, Message: "internal error"}
	})

	require.ErrorIs(t, err, domain.ErrRetryExhausted)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicyStopsOnTerminalError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	terminal := &APIError{StatusCode: 404, Message: "not found"}
	attempts := 0

	err := policy.Do(context.Background(), func() error {
		attempts++
		return terminal
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, 1, attempts)
	assert.NotErrorIs(t, err, domain.ErrRetryExhausted)
}

func TestRetryPolicySucceedsAfterTransientFailure(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	attempts := 0

	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &APIError{StatusCode: 429, Message: "too many requests"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryPolicyHonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := policy.Do(ctx, func() error {
		return &APIError{StatusCode: 503}
	})

	require.ErrorIs(t, err, context.Canceled)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{StatusCode: 404}))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.True(t, IsRateLimited(&APIError{StatusCode: 429}))
	assert.False(t, IsNotFound(errors.New("plain")))

	assert.True(t, IsGone(&APIError{StatusCode: 300}, domain.ObjectRoles))
	assert.False(t, IsGone(&APIError{StatusCode: 300}, domain.ObjectUsers))
	assert.False(t, IsGone(&APIError{StatusCode: 500}, domain.ObjectUsers))
}
