// Package fetcher performs single page GETs with retry, rate limiting and
// per-response charset detection. All returned text is UTF-8.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/time/rate"
)

const maxBodySize = 16 << 20

type Options struct {
	// Retries is the number of extra attempts after the first one.
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration
	// RatePerSecond limits request starts across all workers. Zero disables
	// the limit.
	RatePerSecond float64
	Logger        interface {
		Debugf(string, ...any)
	}
}

func DefaultOptions() Options {
	return Options{
		Retries:    3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 8 * time.Second,
	}
}

type Result struct {
	URL     string
	Status  int
	Text    string
	Charset string
	Size    int64
}

// Fetcher is safe for concurrent use. The rate limiter is the only state
// shared between calls.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

func New(client *http.Client, opts Options) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff < opts.Backoff {
		opts.MaxBackoff = 16 * opts.Backoff
	}

	f := &Fetcher{client: client, opts: opts}
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return f
}

// Fetch GETs rawURL and returns its decoded text. hint is the encoding the
// site is known to use when it does not declare one; it may be nil.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, hint encoding.Encoding) (*Result, error) {
	attempts := f.opts.Retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			d := backoff(attempt-1, f.opts.Backoff, f.opts.MaxBackoff)
			f.debugf("retry %d/%d for %s in %s: %v", attempt-1, f.opts.Retries, rawURL, d, lastErr)

			if err := sleep(ctx, d); err != nil {
				return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					err = ctx.Err()
				}
				return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
			}
		}

		res, err := f.get(ctx, rawURL, hint)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, ctx.Err())
		}

		lastErr = err
		if !retryable(err) {
			return nil, withAttempts(err, attempt)
		}
	}

	return nil, withAttempts(lastErr, attempts)
}

func (f *Fetcher) get(ctx context.Context, rawURL string, hint encoding.Encoding) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh-CN,zh;q=0.9,en;q=0.5")
	if ref := siteRoot(req.URL); ref != "" {
		req.Header.Set("Referer", ref)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if len(body) > maxBodySize {
		return nil, &NetworkError{URL: rawURL, Err: ErrBodyTooLarge}
	}

	text, cs, err := decode(body, resp.Header.Get("Content-Type"), hint)
	if err != nil {
		return nil, &EncodingError{URL: rawURL, Charset: cs, Err: err}
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}

	return &Result{
		URL:     final,
		Status:  resp.StatusCode,
		Text:    text,
		Charset: cs,
		Size:    int64(len(body)),
	}, nil
}

func (f *Fetcher) debugf(format string, args ...any) {
	if f.opts.Logger != nil {
		f.opts.Logger.Debugf(format, args...)
	}
}

func withAttempts(err error, n int) error {
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		nerr.Attempts = n
	}

	var herr *HTTPError
	if errors.As(err, &herr) {
		herr.Attempts = n
	}

	return err
}

func siteRoot(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host + "/"
}
