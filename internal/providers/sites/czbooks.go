package sites

import (
	"regexp"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

var reBookQuote = regexp.MustCompile(`《[^》]*》`)

// Czbooks is 小說狂人. Chapter links are protocol-relative.
type Czbooks struct {
	site
	clean *providers.Cleaner
}

func NewCzbooks() *Czbooks {
	return &Czbooks{
		site: site{
			key:   "czbooks",
			name:  "小說狂人",
			hosts: []string{"czbooks.net"},
		},
		clean: providers.NewCleaner(nil),
	}
}

func (c *Czbooks) ParseTOC(page providers.Page) (*providers.TOC, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	refs := c.chapterLinks(doc, page, "ul.nav.chapter-list > li > a")
	if len(refs) == 0 {
		return nil, c.parseErr(page, "chapter list")
	}

	name := strings.NewReplacer("《", "", "》", "").Replace(firstText(doc, "span.title"))

	return &providers.TOC{
		Book: providers.Book{
			Name:   strings.TrimSpace(name),
			Author: firstText(doc, "span.author > a"),
		},
		Refs: refs,
	}, nil
}

func (c *Czbooks) ParseChapter(page providers.Page) (*providers.ChapterPage, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	body := doc.Find("div.content").First()
	if body.Length() == 0 {
		return nil, c.parseErr(page, "chapter body")
	}

	lines := c.clean.Clean(providers.BlockText(body))
	if len(lines) == 0 {
		return nil, c.parseErr(page, "chapter text")
	}

	title := strings.TrimSpace(reBookQuote.ReplaceAllString(firstText(doc, "div.name"), ""))

	return &providers.ChapterPage{Title: title, Paragraphs: lines}, nil
}
