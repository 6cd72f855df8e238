package sites

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/providers"
)

var rePartCounter = regexp.MustCompile(`\s*\(\d+/\d+\)\s*$`)

// Novel543 is 稷下書院. Long chapters are split across sub-pages named
// <book>_<chapter>_2.html, <book>_<chapter>_3.html and so on.
type Novel543 struct {
	site
	clean *providers.Cleaner
}

func NewNovel543() *Novel543 {
	return &Novel543{
		site: site{
			key:   "novel543",
			name:  "稷下書院",
			hosts: []string{"www.novel543.com"},
		},
		clean: providers.NewCleaner([]string{`㱕`}),
	}
}

// MaxConcurrency is low because the site answers 503 to bursts.
func (n *Novel543) MaxConcurrency() int { return 2 }

func (n *Novel543) ParseTOC(page providers.Page) (*providers.TOC, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	refs := n.chapterLinks(doc, page, "ul.flex.one.two-700.three-900.all > li > a")
	if len(refs) == 0 {
		return nil, n.parseErr(page, "chapter list")
	}

	return &providers.TOC{
		Book: providers.Book{
			Name:   strings.TrimSpace(strings.ReplaceAll(firstText(doc, "h1.title.is-2"), " 章節列表", "")),
			Author: strings.TrimSpace(strings.ReplaceAll(firstText(doc, "h2.title.is-4"), "作者 / ", "")),
		},
		Refs: refs,
	}, nil
}

func (n *Novel543) ParseChapter(page providers.Page) (*providers.ChapterPage, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	body := doc.Find("#chapterWarp > div.chapter-content.px-3 > div").First()
	if body.Length() == 0 {
		return nil, n.parseErr(page, "chapter body")
	}

	lines := n.clean.Clean(providers.BlockText(body))
	if len(lines) == 0 {
		return nil, n.parseErr(page, "chapter text")
	}

	title := firstText(doc, "#chapterWarp > div.chapter-content.px-3 > h1")

	return &providers.ChapterPage{
		Title:      rePartCounter.ReplaceAllString(title, ""),
		Paragraphs: lines,
		Next:       n.subPage(doc, page),
	}, nil
}

// subPage returns the footer link to the following part of the current
// chapter, or "" on the last part.
func (n *Novel543) subPage(doc *goquery.Document, page providers.Page) string {
	root, part := chapterPart(pathStem(page.URL))
	if root == "" {
		return ""
	}
	want := root + "_" + strconv.Itoa(part+1)

	var next string
	doc.Find("div.foot-nav a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		u := providers.ResolveURL(page.URL, href)
		if u == "" || !n.Recognize(u) {
			return true
		}

		if pathStem(u) == want {
			next = u
			return false
		}

		return true
	})

	return next
}

// chapterPart splits "8001_316_2" into ("8001_316", 2). The first part of a
// chapter carries no suffix.
func chapterPart(stem string) (string, int) {
	parts := strings.Split(stem, "_")
	if len(parts) < 2 {
		return "", 0
	}

	root := parts[0] + "_" + parts[1]
	if len(parts) == 2 {
		return root, 1
	}

	part, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0
	}

	return root, part
}
