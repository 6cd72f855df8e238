package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// backoff returns the delay before retry n (1-based): base, 2*base, 4*base,
// never more than limit.
func backoff(n int, base, limit time.Duration) time.Duration {
	d := base
	for i := 1; i < n; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	if d > limit {
		return limit
	}

	return d
}

// retryable reports whether another attempt can change the outcome. The
// caller's own context is checked separately; a client timeout is retried.
func retryable(err error) bool {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.Status >= 500 || herr.Status == http.StatusTooManyRequests
	}

	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return !errors.Is(nerr.Err, ErrBodyTooLarge)
	}

	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
