package llm

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	retryAttempts = 3
	retryDelay    = 300 * time.Millisecond
)

// Retry runs fn up to three times with a growing delay, stopping early when
// ctx is done or fn returns an error wrapped with retry.Unrecoverable.
func Retry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}
