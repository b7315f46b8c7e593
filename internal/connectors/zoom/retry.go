package zoom

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// RetryDelay is the initial delay between retries; it doubles per attempt.
const RetryDelay = time.Second

// RetryPolicy retries transient API failures with exponential backoff.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewRetryPolicy creates a policy with at most maxAttempts attempts.
func NewRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: RetryDelay}
}

// Do runs op, retrying transient failures until the attempt budget runs
// out. Terminal errors return immediately; an exhausted budget returns the
// last error wrapped in domain.ErrRetryExhausted.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		if attempt == p.MaxAttempts {
			break
		}
		logger.Warn("transient error (attempt %d/%d), retrying in %s: %v",
			attempt, p.MaxAttempts, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%w after %d attempt(s): %v", domain.ErrRetryExhausted, p.MaxAttempts, lastErr)
}
