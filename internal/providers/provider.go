package providers

import (
	"strings"

	"golang.org/x/text/encoding"
)

// ChapterRef points at one chapter as listed on a table-of-contents page.
// Index is the 0-based reading position and the only ordering key.
type ChapterRef struct {
	Index     int
	URL       string
	TitleHint string
}

type Chapter struct {
	Index      int
	URL        string
	Title      string
	Paragraphs []string
}

type Book struct {
	Name   string
	Author string
}

// Page is fetched, decoded page content together with the URL it came from.
type Page struct {
	URL  string
	Text string
}

// TOC is one parsed table-of-contents page. Next is empty on the last page.
type TOC struct {
	Book Book
	Refs []ChapterRef
	Next string
}

// ChapterPage is one parsed chapter page. Next links to the following
// sub-page of the same chapter, if the site splits chapters.
type ChapterPage struct {
	Title      string
	Paragraphs []string
	Next       string
}

// Adapter holds the parsing rules of one site. Implementations carry no
// mutable state and are called concurrently from many workers.
type Adapter interface {
	Name() string
	Hosts() []string
	Recognize(rawURL string) bool
	ParseTOC(page Page) (*TOC, error)
	ParseChapter(page Page) (*ChapterPage, error)
}

// EncodingHinter is implemented by adapters for sites known to serve a
// legacy encoding without always declaring it.
type EncodingHinter interface {
	Encoding() encoding.Encoding
}

// ConcurrencyLimiter caps the number of parallel requests for sites that
// throttle aggressively.
type ConcurrencyLimiter interface {
	MaxConcurrency() int
}

// Keyer is implemented by adapters with a short stable identifier, used in
// cache paths and error messages.
type Keyer interface {
	Key() string
}

// KeyOf falls back to the lowercased display name.
func KeyOf(a Adapter) string {
	if k, ok := a.(Keyer); ok && k.Key() != "" {
		return k.Key()
	}

	return strings.ToLower(strings.ReplaceAll(a.Name(), " ", ""))
}

func EncodingOf(a Adapter) encoding.Encoding {
	if h, ok := a.(EncodingHinter); ok {
		return h.Encoding()
	}

	return nil
}

func WorkersFor(a Adapter, requested int) int {
	if requested < 1 {
		requested = 1
	}
	if l, ok := a.(ConcurrencyLimiter); ok {
		if m := l.MaxConcurrency(); m > 0 && m < requested {
			return m
		}
	}

	return requested
}
