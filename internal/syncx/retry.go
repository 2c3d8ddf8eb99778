package syncx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// LinearBackoff waits step, 2*step, 3*step, ... between attempts.
func LinearBackoff(step time.Duration) retry.Backoff {
	var attempt int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * step, false
	})
}

// DoTransient runs fn, retrying up to maxRetries times with linear backoff
// while fn keeps failing with a retryable remote code. Terminal codes and
// non-remote errors abort immediately.
func DoTransient(ctx context.Context, maxRetries uint64, step time.Duration, fn func(context.Context) error) error {
	b := retry.WithMaxRetries(maxRetries, LinearBackoff(step))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if re, ok := AsRemote(err); ok && re.Retryable() {
			return retry.RetryableError(err)
		}
		return err
	})
}
