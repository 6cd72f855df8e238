package fetcher

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// maxReplacementRatio is the share of U+FFFD runes above which a decode is
// considered to have used the wrong charset.
const maxReplacementRatio = 0.01

var utf8BOM = []byte("\xef\xbb\xbf")

// detect picks the charset of one response body. Declarations win over
// guesses; the site hint only applies once the body is known not to be
// UTF-8.
func detect(body []byte, contentType string, hint encoding.Encoding) (encoding.Encoding, string) {
	e, name, certain := charset.DetermineEncoding(body, contentType)
	if e != nil && certain {
		return e, name
	}
	if e != nil && name != "windows-1252" && name != "utf-8" {
		return e, name
	}

	if utf8.Valid(body) {
		return unicode.UTF8, "utf-8"
	}

	if hint != nil {
		name, err := htmlindex.Name(hint)
		if err != nil {
			name = "site default"
		}

		return hint, name
	}

	r, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || r == nil {
		return nil, ""
	}

	return lookup(r.Charset)
}

// lookup maps detector names such as "GB-18030" onto WHATWG labels.
func lookup(label string) (encoding.Encoding, string) {
	label = strings.ToLower(strings.TrimSpace(label))

	for _, l := range []string{label, strings.ReplaceAll(label, "-", "")} {
		if e, err := htmlindex.Get(l); err == nil {
			name, _ := htmlindex.Name(e)
			return e, name
		}
	}

	return nil, label
}

// decode converts body to normalized UTF-8 text. A declared charset that
// leaves the text garbled gets a second try with the site hint, since some
// sites label GBK pages as UTF-8.
func decode(body []byte, contentType string, hint encoding.Encoding) (string, string, error) {
	e, name := detect(body, contentType, hint)
	if e == nil {
		return "", name, ErrUnknownCharset
	}

	text, err := convert(e, body)
	if err == nil {
		return text, name, nil
	}

	if hint != nil && hint != e {
		if alt, altErr := convert(hint, body); altErr == nil {
			altName, nerr := htmlindex.Name(hint)
			if nerr != nil {
				altName = "site default"
			}
			return alt, altName, nil
		}
	}

	return "", name, err
}

func convert(e encoding.Encoding, body []byte) (string, error) {
	out, err := e.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}

	out = bytes.TrimPrefix(out, utf8BOM)

	if bad, total := bytes.Count(out, []byte("\uFFFD")), utf8.RuneCount(out); total > 0 &&
		float64(bad)/float64(total) > maxReplacementRatio {
		return "", fmt.Errorf("%d of %d characters could not be decoded", bad, total)
	}

	return strings.ReplaceAll(string(out), "\r\n", "\n"), nil
}
