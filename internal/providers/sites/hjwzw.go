package sites

import (
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

// Hjwzw is 黃金屋, tw.hjwzw.com.
type Hjwzw struct {
	site
	clean *providers.Cleaner
}

func NewHjwzw() *Hjwzw {
	return &Hjwzw{
		site: site{
			key:   "hjwzw",
			name:  "黃金屋",
			hosts: []string{"tw.hjwzw.com"},
		},
		clean: providers.NewCleaner(nil),
	}
}

func (h *Hjwzw) ParseTOC(page providers.Page) (*providers.TOC, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	refs := h.chapterLinks(doc, page, "div#tbchapterlist a")
	if len(refs) == 0 {
		return nil, h.parseErr(page, "chapter list")
	}

	author := firstText(doc, "body > div:first-child > table:nth-of-type(7) tr:nth-child(2) a:first-child")

	return &providers.TOC{
		Book: providers.Book{
			Name:   firstText(doc, "h1"),
			Author: strings.TrimSpace(strings.ReplaceAll(author, "作者 / ", "")),
		},
		Refs: refs,
	}, nil
}

func (h *Hjwzw) ParseChapter(page providers.Page) (*providers.ChapterPage, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	title := firstText(doc, "table:nth-of-type(7) h1")

	doc.Find("div#Pan_Ad1").Remove()
	body := doc.Find("table:nth-of-type(7) div:nth-of-type(4)").First()
	if body.Length() == 0 {
		return nil, h.parseErr(page, "chapter body")
	}

	// The first two lines repeat the book and chapter name.
	lines := skipLines(h.clean.Clean(providers.BlockText(body)), 2)
	if len(lines) == 0 {
		return nil, h.parseErr(page, "chapter text")
	}

	return &providers.ChapterPage{Title: title, Paragraphs: lines}, nil
}
