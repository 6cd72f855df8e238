package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/providers"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Qbtr is 全本同人. Pages are GBK and long chapter lists continue on
// further pages linked by "下一页".
type Qbtr struct {
	site
	clean *providers.Cleaner
}

func NewQbtr() *Qbtr {
	return &Qbtr{
		site: site{
			key:   "qbtr",
			name:  "全本同人",
			hosts: []string{"www.qbtr.cc"},
		},
		clean: providers.NewCleaner(nil),
	}
}

func (q *Qbtr) Encoding() encoding.Encoding {
	return simplifiedchinese.GBK
}

func (q *Qbtr) ParseTOC(page providers.Page) (*providers.TOC, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	refs := q.chapterLinks(doc, page, "div.book_list.clearfix > ul > li > a")
	if len(refs) == 0 {
		return nil, q.parseErr(page, "chapter list")
	}

	return &providers.TOC{
		Book: providers.Book{
			Name:   firstText(doc, "div.infos > h1"),
			Author: strings.TrimSpace(strings.ReplaceAll(firstText(doc, "div.date > span"), "作者：", "")),
		},
		Refs: refs,
		Next: q.nextByText(doc, page, "div.page, div.pages, div.pagelist"),
	}, nil
}

func (q *Qbtr) ParseChapter(page providers.Page) (*providers.ChapterPage, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	doc.Find("div.read_chapterDetail > p").Each(func(_ int, p *goquery.Selection) {
		b.WriteString(p.Text())
		b.WriteByte('\n')
	})
	if b.Len() == 0 {
		return nil, q.parseErr(page, "chapter body")
	}

	// Book name and chapter heading are repeated as the first two paragraphs.
	lines := skipLines(q.clean.Clean(b.String()), 2)
	if len(lines) == 0 {
		return nil, q.parseErr(page, "chapter text")
	}

	return &providers.ChapterPage{
		Title:      firstText(doc, "div.read_chapterName.tc > h1"),
		Paragraphs: lines,
	}, nil
}
