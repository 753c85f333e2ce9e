// Package retry provides bounded retries with exponential backoff for
// collaborators that talk to flaky upstream providers. The orchestration
// engine itself never retries; a stage either succeeds or fails terminally.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// Backoff produces exponentially growing delays with +/-20% jitter.
type Backoff struct {
	base time.Duration
	max  time.Duration
	cur  time.Duration
}

func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{base: base, max: max}
}

// Next returns the next jittered delay.
func (b *Backoff) Next() time.Duration {
	if b.cur <= 0 {
		b.cur = b.base
	} else {
		b.cur *= 2
		if b.cur > b.max {
			b.cur = b.max
		}
	}

	jitter := 0.8 + 0.4*rand.Float64()

	return time.Duration(float64(b.cur) * jitter)
}

func (b *Backoff) Reset() { b.cur = 0 }

// Do invokes fn up to attempts times, sleeping a backoff between failures.
// It stops early when ctx is done and returns the last error wrapped with
// the attempt count.
func Do(ctx context.Context, attempts int, b *Backoff, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "retry abandoned after %d attempts", i)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			b.Reset()

			return nil
		}

		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(b.Next())
		select {
		case <-ctx.Done():
			timer.Stop()

			return errors.Wrapf(ctx.Err(), "retry abandoned after %d attempts", i+1)
		case <-timer.C:
		}
	}

	return errors.Wrapf(lastErr, "failed after %d attempts", attempts)
}
