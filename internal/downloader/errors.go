package downloader

import (
	"errors"
	"fmt"
)

var (
	ErrNoChapters   = errors.New("no chapters found")
	ErrTOCLoop      = errors.New("table of contents links back to a visited page")
	ErrOffSite      = errors.New("next page leaves the site")
	ErrTooManyPages = errors.New("too many table of contents pages")

	ErrTooManySubPages   = errors.New("too many pages in one chapter")
	ErrNothingDownloaded = errors.New("no chapter could be downloaded")
)

// DiscoveryError aborts a run: a chapter list that is missing pages cannot
// be repaired later.
type DiscoveryError struct {
	URL  string
	Page int
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover chapters (toc page %d, %s): %v", e.Page, e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

type ChapterError struct {
	Index int
	URL   string
	Err   error
}

func (e *ChapterError) Error() string {
	return fmt.Sprintf("chapter %d (%s): %v", e.Index+1, e.URL, e.Err)
}

func (e *ChapterError) Unwrap() error { return e.Err }
