package linkedin

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/talent-scout/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 1
	defaultRetryDelay = 2 * time.Second
)

// retry calls fn once plus up to maxRetries more times. Context errors are never retried.
func retry(ctx context.Context, logger *zap.Logger, url string, maxRetries int, delay time.Duration, fn func(context.Context) (*Page, error)) (*Page, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attempts++
		page, err := fn(ctx)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			break
		}
		if attempt == maxRetries {
			break
		}

		logger.Warn("fetch attempt failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)

		if err := utils.WaitFor(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return nil, &FetchError{URL: url, Attempts: attempts, Err: lastErr}
}
