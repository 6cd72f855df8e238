package sites

import (
	"slices"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

// UUkanshu is UU看書. Its chapter list is printed newest first.
type UUkanshu struct {
	site
	clean *providers.Cleaner
}

func NewUUkanshu() *UUkanshu {
	return &UUkanshu{
		site: site{
			key:   "uukanshu",
			name:  "UU看書",
			hosts: []string{"tw.uukanshu.com", "www.uukanshu.com", "uukanshu.com"},
		},
		clean: providers.NewCleaner([]string{
			`(?s)如果喜歡.*，請把網址發給您的朋友。.*`,
			`(?s)如果喜欢.*，请把网址发给您的朋友。.*`,
			`[wｗ]{3}[．\.][ｕu][ｕu][ｋk][ａa][ｎn][ｓs][ｈh][ｕu][．\.][ｃc][ｏo][ｍm]`,
			`[ｕuＵU]{2}看书[ ]*`,
			`[ｕuＵU]{2}看書[ ]*`,
			`請記住本書首發域名：。：`,
			`请记住本书首发域名：。：`,
		}),
	}
}

func (u *UUkanshu) ParseTOC(page providers.Page) (*providers.TOC, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	refs := u.chapterLinks(doc, page, "ul#chapterList a")
	if len(refs) == 0 {
		return nil, u.parseErr(page, "chapter list")
	}
	slices.Reverse(refs)

	name := firstText(doc, "dd.jieshao_content > h1 > a")
	name = strings.NewReplacer("最新章節", "", "最新章节", "").Replace(name)

	return &providers.TOC{
		Book: providers.Book{
			Name:   strings.TrimSpace(name),
			Author: firstText(doc, "dd.jieshao_content > h2 > a"),
		},
		Refs: reindex(refs),
	}, nil
}

func (u *UUkanshu) ParseChapter(page providers.Page) (*providers.ChapterPage, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	body := doc.Find("div#contentbox.uu_cont").First()
	if body.Length() == 0 {
		return nil, u.parseErr(page, "chapter body")
	}

	text := strings.ReplaceAll(providers.BlockText(body), "  ", "\n")

	lines := u.clean.Clean(text)
	if len(lines) == 0 {
		return nil, u.parseErr(page, "chapter text")
	}

	return &providers.ChapterPage{
		Title:      firstText(doc, "h1#timu"),
		Paragraphs: lines,
	}, nil
}
