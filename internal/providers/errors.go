package providers

import (
	"errors"
	"fmt"
)

var ErrAmbiguousAdapters = errors.New("ambiguous site adapters")

type UnsupportedSiteError struct {
	URL string
}

func (e *UnsupportedSiteError) Error() string {
	return fmt.Sprintf("unsupported site: %s", e.URL)
}

// ParseError means the page markup did not match the adapter's rules.
// Retrying does not help, the selectors are stale.
type ParseError struct {
	Site string
	URL  string
	What string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s not found on %s", e.Site, e.What, e.URL)
}

func NewParseError(site, url, what string) *ParseError {
	return &ParseError{Site: site, URL: url, What: what}
}
