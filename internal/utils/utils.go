package utils

import (
	"context"
	"math/rand/v2"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// RandomBetween returns a uniformly distributed duration in [lo, hi].
// Swapped bounds are tolerated; negative bounds are clamped to zero.
func RandomBetween(lo, hi time.Duration) time.Duration {
	if lo < 0 {
		lo = 0
	}
	if hi < 0 {
		hi = 0
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}

	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}
