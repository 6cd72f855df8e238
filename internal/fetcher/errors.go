package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBodyTooLarge   = errors.New("response body too large")
	ErrUnknownCharset = errors.New("cannot determine character encoding")
)

// NetworkError is a transport failure: connection, TLS, timeout or a
// truncated body. It is returned once retries are exhausted.
type NetworkError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("GET %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type HTTPError struct {
	URL      string
	Status   int
	Attempts int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

type EncodingError struct {
	URL     string
	Charset string
	Err     error
}

func (e *EncodingError) Error() string {
	if e.Charset == "" {
		return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("decode %s as %s: %v", e.URL, e.Charset, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
