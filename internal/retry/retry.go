// Package retry provides the bounded backoff used around site fetches.
// Transient network failures are expected during a monitoring pass; a few
// quick retries smooth them over before the monitor writes the keyword off
// for this pass.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const (
	baseDelay = 200 * time.Millisecond
	maxDelay  = 2 * time.Second
	jitter    = 100 * time.Millisecond
)

// Do runs fn up to attempts times, doubling the delay between failures up
// to a cap, with a little jitter so parallel deployments don't sync up.
// It returns the last error once attempts are exhausted, or ctx.Err() if
// the context ends while waiting.
func Do(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt == attempts-1 {
			break
		}

		sleep := delay + time.Duration(rand.Int63n(int64(jitter)))
		if sleep > maxDelay {
			sleep = maxDelay
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if delay *= 2; delay > maxDelay {
			delay = maxDelay
		}
	}
	return fmt.Errorf("retry exhausted after %d attempts: %w", attempts, lastErr)
}
