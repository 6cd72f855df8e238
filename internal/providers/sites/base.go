package sites

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/providers"
)

var nextPageWords = []string{"下一页", "下一頁", "下页", "下頁"}

// site carries the identity every adapter shares. It is a value type and
// holds nothing that changes after construction.
type site struct {
	key   string
	name  string
	hosts []string
}

func (s site) Key() string  { return s.key }
func (s site) Name() string { return s.name }

func (s site) Hosts() []string {
	return append([]string(nil), s.hosts...)
}

func (s site) Recognize(rawURL string) bool {
	return providers.MatchHost(rawURL, s.hosts...)
}

func (s site) parseErr(page providers.Page, what string) error {
	return providers.NewParseError(s.key, page.URL, what)
}

func document(page providers.Page) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(page.Text))
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// chapterLinks collects the hrefs matched by selector in document order.
func (s site) chapterLinks(doc *goquery.Document, page providers.Page, selector string) []providers.ChapterRef {
	var refs []providers.ChapterRef

	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || providers.IsJSLink(href) {
			return
		}

		u := providers.ResolveURL(page.URL, href)
		if u == "" {
			return
		}

		refs = append(refs, providers.ChapterRef{
			Index:     len(refs),
			URL:       u,
			TitleHint: strings.TrimSpace(a.Text()),
		})
	})

	return refs
}

// nextByText finds a same-site "next page" link inside scope.
func (s site) nextByText(doc *goquery.Document, page providers.Page, scope string) string {
	var next string

	doc.Find(scope).Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		for _, w := range nextPageWords {
			if !strings.Contains(text, w) {
				continue
			}

			href, _ := a.Attr("href")
			if providers.IsJSLink(href) {
				return true
			}

			u := providers.ResolveURL(page.URL, href)
			if u != "" && u != page.URL && s.Recognize(u) {
				next = u
				return false
			}
		}

		return true
	})

	return next
}

func reindex(refs []providers.ChapterRef) []providers.ChapterRef {
	for i := range refs {
		refs[i].Index = i
	}

	return refs
}

func skipLines(lines []string, n int) []string {
	if len(lines) <= n {
		return nil
	}

	return lines[n:]
}

func pathStem(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	p := u.Path
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}

	return strings.TrimSuffix(p, ".html")
}
