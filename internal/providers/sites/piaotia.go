package sites

import (
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Piaotia is 飄天. Chapter text sits directly in <body> between the top
// navigation and the keyboard-shortcut footer.
type Piaotia struct {
	site
	clean *providers.Cleaner
}

func NewPiaotia() *Piaotia {
	return &Piaotia{
		site: site{
			key:   "piaotia",
			name:  "飄天",
			hosts: []string{"www.piaotia.com", "piaotia.com"},
		},
		clean: providers.NewCleaner([]string{
			`(?s)（快捷键 ←）.*`,
			`(?s).*返回书页`,
		}),
	}
}

func (p *Piaotia) Encoding() encoding.Encoding {
	return simplifiedchinese.GBK
}

func (p *Piaotia) ParseTOC(page providers.Page) (*providers.TOC, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	refs := p.chapterLinks(doc, page, "div.centent li a")
	if len(refs) == 0 {
		return nil, p.parseErr(page, "chapter list")
	}

	author, _ := doc.Find("meta[name=author]").First().Attr("content")

	return &providers.TOC{
		Book: providers.Book{
			Name:   strings.TrimSpace(strings.ReplaceAll(firstText(doc, "div.title h1"), "最新章节", "")),
			Author: strings.TrimSpace(author),
		},
		Refs: refs,
	}, nil
}

func (p *Piaotia) ParseChapter(page providers.Page) (*providers.ChapterPage, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	title := firstText(doc, "h1")
	if title == "" {
		return nil, p.parseErr(page, "chapter title")
	}

	body := doc.Find("body")
	body.Find("h1, script, style").Remove()

	lines := p.clean.Clean(providers.BlockText(body))
	if len(lines) == 0 {
		return nil, p.parseErr(page, "chapter text")
	}

	return &providers.ChapterPage{Title: title, Paragraphs: lines}, nil
}
