package providers

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cloudflare/ahocorasick"
	"golang.org/x/net/html"
)

// Phrases that mark a whole line as site chrome rather than story text.
var boilerplate = []string{
	"本章未完，点击下一页继续阅读",
	"本章未完，點擊下一頁繼續閱讀",
	"请记住本书首发域名",
	"請記住本書首發域名",
	"手机版阅读网址",
	"手機版閱讀網址",
	"最新章节请到",
	"最新章節請到",
	"加入书签",
	"加入書籤",
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "dd": true, "dt": true,
}

// Cleaner turns raw body text into paragraphs: regex removals first, then
// line splitting, then dropping lines that contain known boilerplate.
type Cleaner struct {
	remove  []*regexp.Regexp
	junk    []string
	matcher *ahocorasick.Matcher
}

func NewCleaner(removePatterns []string, junk ...string) *Cleaner {
	c := &Cleaner{
		junk: append(append([]string{}, boilerplate...), junk...),
	}
	for _, p := range removePatterns {
		c.remove = append(c.remove, regexp.MustCompile(p))
	}
	c.matcher = ahocorasick.NewStringMatcher(c.junk)

	return c
}

func (c *Cleaner) Clean(text string) []string {
	for _, re := range c.remove {
		text = re.ReplaceAllString(text, "")
	}

	var out []string
	for _, line := range SplitParagraphs(text) {
		// Matcher.Match keeps per-call state; workers share one Cleaner.
		if len(c.matcher.MatchThreadSafe([]byte(line))) > 0 {
			continue
		}
		out = append(out, line)
	}

	return out
}

func SplitParagraphs(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\u3000' || r == '\u00a0'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}

// BlockText is Selection.Text with line breaks kept for <br> and block
// elements, so paragraphs do not run together.
func BlockText(sel *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if blockTags[n.Data] {
				b.WriteByte('\n')
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockTags[n.Data] && n.Data != "br" {
			b.WriteByte('\n')
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return b.String()
}

func ResolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	return b.ResolveReference(u).String()
}

func IsJSLink(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return h == "" || h == "#" || strings.HasPrefix(h, "javascript:")
}
