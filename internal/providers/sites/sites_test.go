package sites

import (
	"errors"
	"strings"
	"testing"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func hjwzwPage(inner, tail string) string {
	return "<html><body><div>" +
		strings.Repeat("<table><tr><td></td></tr></table>", 6) +
		"<table><tr><td>" + inner + "</td></tr></table>" +
		"</div>" + tail + "</body></html>"
}

type siteCase struct {
	name    string
	adapter providers.Adapter

	tocURL   string
	tocHTML  string
	book     providers.Book
	firstRef string
	lastRef  string
	refCount int
	tocNext  string

	chapterURL  string
	chapterHTML string
	title       string
	paragraphs  []string
	chapterNext string
}

func siteCases() []siteCase {
	return []siteCase{
		{
			name:    "hjwzw",
			adapter: NewHjwzw(),
			tocURL:  "https://tw.hjwzw.com/Book/Chapter/1234",
			tocHTML: hjwzwPage(`<h1>我的書</h1></td></tr><tr><td><a href="/Book/Read/1234">作者 / 作者甲</a>`,
				`<div id="tbchapterlist"><table><tr>`+
					`<td><a href="/Book/Read/1234,1">第一章</a></td>`+
					`<td><a href="/Book/Read/1234,2">第二章</a></td>`+
					`</tr></table></div>`),
			book:     providers.Book{Name: "我的書", Author: "作者甲"},
			firstRef: "https://tw.hjwzw.com/Book/Read/1234,1",
			lastRef:  "https://tw.hjwzw.com/Book/Read/1234,2",
			refCount: 2,

			chapterURL: "https://tw.hjwzw.com/Book/Read/1234,1",
			chapterHTML: hjwzwPage(`<h1>第一章 開始</h1><div>nav</div><div>nav</div><div>nav</div>` +
				`<div>我的書<br>第一章 開始<br>　　第一段。<br>　　第二段。<div id="Pan_Ad1">廣告</div></div>`, ""),
			title:      "第一章 開始",
			paragraphs: []string{"第一段。", "第二段。"},
		},
		{
			name:    "piaotia",
			adapter: NewPiaotia(),
			tocURL:  "https://www.piaotia.com/html/1/1234/index.html",
			tocHTML: `<html><head><meta name="author" content="作者乙"></head><body>` +
				`<div class="title"><h1>大书最新章节</h1></div>` +
				`<div class="centent"><ul>` +
				`<li><a href="1.html">第一章</a></li>` +
				`<li><a href="2.html">第二章</a></li>` +
				`<li><a href="3.html">第三章</a></li>` +
				`</ul></div></body></html>`,
			book:     providers.Book{Name: "大书", Author: "作者乙"},
			firstRef: "https://www.piaotia.com/html/1/1234/1.html",
			lastRef:  "https://www.piaotia.com/html/1/1234/3.html",
			refCount: 3,

			chapterURL: "https://www.piaotia.com/html/1/1234/1.html",
			chapterHTML: `<html><body><h1>第一章 开始</h1>` +
				`<div>上一章 | 目录 | 返回书页</div>` +
				`　　第一段。<br>　　第二段。<br>` +
				`<script>ad()</script>` +
				`<div>（快捷键 ←）上一章 下一章</div></body></html>`,
			title:      "第一章 开始",
			paragraphs: []string{"第一段。", "第二段。"},
		},
		{
			name:    "uukanshu",
			adapter: NewUUkanshu(),
			tocURL:  "https://tw.uukanshu.com/b/999/",
			tocHTML: `<html><body><dl><dd class="jieshao_content">` +
				`<h1><a>長書最新章節</a></h1><h2><a>作者丙</a></h2></dd></dl>` +
				`<ul id="chapterList">` +
				`<li><a href="/b/999/3.html">第三章</a></li>` +
				`<li><a href="/b/999/2.html">第二章</a></li>` +
				`<li><a href="/b/999/1.html">第一章</a></li>` +
				`</ul></body></html>`,
			book:     providers.Book{Name: "長書", Author: "作者丙"},
			firstRef: "https://tw.uukanshu.com/b/999/1.html",
			lastRef:  "https://tw.uukanshu.com/b/999/3.html",
			refCount: 3,

			chapterURL: "https://tw.uukanshu.com/b/999/1.html",
			chapterHTML: `<html><body><h1 id="timu">第一章</h1>` +
				`<div id="contentbox" class="uu_cont">第一段。  第二段。<br>UU看書 www.uukanshu.com 第三段。</div>` +
				`</body></html>`,
			title:      "第一章",
			paragraphs: []string{"第一段。", "第二段。", "第三段。"},
		},
		{
			name:    "czbooks",
			adapter: NewCzbooks(),
			tocURL:  "https://czbooks.net/n/abc",
			tocHTML: `<html><body><span class="title">《狂書》</span>` +
				`<span class="author"><a>作者丁</a></span>` +
				`<ul class="nav chapter-list">` +
				`<li><a href="//czbooks.net/n/abc/1">第一章</a></li>` +
				`<li><a href="javascript:void(0)">廣告</a></li>` +
				`<li><a href="//czbooks.net/n/abc/2">第二章</a></li>` +
				`</ul></body></html>`,
			book:     providers.Book{Name: "狂書", Author: "作者丁"},
			firstRef: "https://czbooks.net/n/abc/1",
			lastRef:  "https://czbooks.net/n/abc/2",
			refCount: 2,

			chapterURL: "https://czbooks.net/n/abc/1",
			chapterHTML: `<html><body><div class="name">《狂書》第一章 開始</div>` +
				`<div class="content">第一段。<br>第二段。</div></body></html>`,
			title:      "第一章 開始",
			paragraphs: []string{"第一段。", "第二段。"},
		},
		{
			name:    "novel543",
			adapter: NewNovel543(),
			tocURL:  "https://www.novel543.com/0413188175/dir",
			tocHTML: `<html><body><h1 class="title is-2">我的大寶劍 章節列表</h1>` +
				`<h2 class="title is-4">作者 / 學霸殿下</h2>` +
				`<ul class="flex one two-700 three-900 all">` +
				`<li><a href="/0413188175/8001_1.html">第一章</a></li>` +
				`<li><a href="/0413188175/8001_2.html">第二章</a></li>` +
				`</ul></body></html>`,
			book:     providers.Book{Name: "我的大寶劍", Author: "學霸殿下"},
			firstRef: "https://www.novel543.com/0413188175/8001_1.html",
			lastRef:  "https://www.novel543.com/0413188175/8001_2.html",
			refCount: 2,

			chapterURL: "https://www.novel543.com/0413188175/8001_316.html",
			chapterHTML: `<html><body><div id="read"><div id="chapterWarp"><div class="chapter-content px-3">` +
				`<h1>我的大寶劍 - 第一章 (1/2)</h1>` +
				`<div><p>第一段。</p><p>第二段㱕。</p></div>` +
				`</div></div>` +
				`<div class="warp my-5 foot-nav">` +
				`<a href="/0413188175/8001_315.html">上一章</a>` +
				`<a href="/0413188175/dir">目錄</a>` +
				`<a href="/0413188175/8001_316_2.html">下一頁</a>` +
				`</div></div></body></html>`,
			title:       "我的大寶劍 - 第一章",
			paragraphs:  []string{"第一段。", "第二段。"},
			chapterNext: "https://www.novel543.com/0413188175/8001_316_2.html",
		},
		{
			name:    "qbtr",
			adapter: NewQbtr(),
			tocURL:  "https://www.qbtr.cc/tongren/3655.html",
			tocHTML: `<html><body><div class="infos"><h1>我的大宝剑</h1></div>` +
				`<div class="date"><span>作者：学霸殿下</span></div>` +
				`<div class="book_list clearfix"><ul>` +
				`<li><a href="/tongren/3655/1.html">第1章</a></li>` +
				`<li><a href="/tongren/3655/2.html">第2章</a></li>` +
				`</ul></div>` +
				`<div class="page"><a href="/tongren/3655.html">上一页</a><a href="/tongren/3655_2.html">下一页</a></div>` +
				`</body></html>`,
			book:     providers.Book{Name: "我的大宝剑", Author: "学霸殿下"},
			firstRef: "https://www.qbtr.cc/tongren/3655/1.html",
			lastRef:  "https://www.qbtr.cc/tongren/3655/2.html",
			refCount: 2,
			tocNext:  "https://www.qbtr.cc/tongren/3655_2.html",

			chapterURL: "https://www.qbtr.cc/tongren/3655/1.html",
			chapterHTML: `<html><body><div class="read_chapterName tc"><h1>我的大宝剑 第1章</h1></div>` +
				`<div class="read_chapterDetail">` +
				`<p>我的大宝剑</p><p>第1章</p><p>始皇历1838年，天元战争结束。</p><p>充满了幸福和快乐。</p>` +
				`</div></body></html>`,
			title:      "我的大宝剑 第1章",
			paragraphs: []string{"始皇历1838年，天元战争结束。", "充满了幸福和快乐。"},
		},
	}
}

func TestParseTOC(t *testing.T) {
	for _, tc := range siteCases() {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.adapter.Recognize(tc.tocURL))
			assert.Equal(t, tc.name, providers.KeyOf(tc.adapter))

			toc, err := tc.adapter.ParseTOC(providers.Page{URL: tc.tocURL, Text: tc.tocHTML})
			require.NoError(t, err)

			assert.Equal(t, tc.book, toc.Book)
			require.Len(t, toc.Refs, tc.refCount)
			assert.Equal(t, tc.firstRef, toc.Refs[0].URL)
			assert.Equal(t, tc.lastRef, toc.Refs[len(toc.Refs)-1].URL)
			assert.Equal(t, tc.tocNext, toc.Next)

			for i, ref := range toc.Refs {
				assert.Equal(t, i, ref.Index)
				assert.True(t, tc.adapter.Recognize(ref.URL), ref.URL)
				assert.NotEmpty(t, ref.TitleHint)
			}
		})
	}
}

func TestParseChapter(t *testing.T) {
	for _, tc := range siteCases() {
		t.Run(tc.name, func(t *testing.T) {
			page := providers.Page{URL: tc.chapterURL, Text: tc.chapterHTML}

			ch, err := tc.adapter.ParseChapter(page)
			require.NoError(t, err)

			assert.Equal(t, tc.title, ch.Title)
			assert.Equal(t, tc.paragraphs, ch.Paragraphs)
			assert.Equal(t, tc.chapterNext, ch.Next)

			again, err := tc.adapter.ParseChapter(page)
			require.NoError(t, err)
			assert.Equal(t, ch, again)
		})
	}
}

func TestParseErrors(t *testing.T) {
	empty := "<html><body><p>nothing here</p></body></html>"

	for _, a := range All() {
		t.Run(a.Name(), func(t *testing.T) {
			page := providers.Page{URL: "https://" + a.Hosts()[0] + "/x", Text: empty}

			_, err := a.ParseTOC(page)
			var perr *providers.ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, page.URL, perr.URL)

			_, err = a.ParseChapter(page)
			assert.True(t, errors.As(err, &perr), "got %v", err)
		})
	}
}

func TestUUkanshuReversesListing(t *testing.T) {
	tc := siteCases()[2]
	toc, err := tc.adapter.ParseTOC(providers.Page{URL: tc.tocURL, Text: tc.tocHTML})
	require.NoError(t, err)

	var hints []string
	for _, r := range toc.Refs {
		hints = append(hints, r.TitleHint)
	}
	assert.Equal(t, []string{"第一章", "第二章", "第三章"}, hints)
}

func TestNovel543LastPartHasNoNext(t *testing.T) {
	page := providers.Page{
		URL: "https://www.novel543.com/0413188175/8001_316_2.html",
		Text: `<html><body><div id="chapterWarp"><div class="chapter-content px-3">` +
			`<h1>我的大寶劍 - 第一章 (2/2)</h1><div><p>後半段。</p></div></div></div>` +
			`<div class="foot-nav">` +
			`<a href="/0413188175/8001_316.html">上一頁</a>` +
			`<a href="/0413188175/8001_317.html">下一章</a>` +
			`</div></body></html>`,
	}

	ch, err := NewNovel543().ParseChapter(page)
	require.NoError(t, err)
	assert.Equal(t, "我的大寶劍 - 第一章", ch.Title)
	assert.Empty(t, ch.Next)
}

func TestChapterPart(t *testing.T) {
	tests := []struct {
		stem string
		root string
		part int
	}{
		{"8001_316", "8001_316", 1},
		{"8001_316_2", "8001_316", 2},
		{"8001_316_x", "", 0},
		{"dir", "", 0},
	}

	for _, tt := range tests {
		root, part := chapterPart(tt.stem)
		assert.Equal(t, tt.root, root, tt.stem)
		assert.Equal(t, tt.part, part, tt.stem)
	}
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, simplifiedchinese.GBK, providers.EncodingOf(NewPiaotia()))
	assert.Equal(t, simplifiedchinese.GBK, providers.EncodingOf(NewQbtr()))
	assert.Nil(t, providers.EncodingOf(NewCzbooks()))

	assert.Equal(t, 2, providers.WorkersFor(NewNovel543(), 6))
	assert.Equal(t, 6, providers.WorkersFor(NewHjwzw(), 6))
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, reg, again)

	for _, a := range reg.Adapters() {
		for _, h := range a.Hosts() {
			got, err := reg.Resolve("https://" + h + "/some/book/")
			require.NoError(t, err, h)
			assert.Equal(t, a.Name(), got.Name(), h)

			got, err = reg.Resolve("http://" + strings.ToUpper(h) + "/")
			require.NoError(t, err, h)
			assert.Equal(t, a.Name(), got.Name(), h)
		}
	}

	_, err = reg.Resolve("https://example.com/book/1")
	var unsupported *providers.UnsupportedSiteError
	assert.True(t, errors.As(err, &unsupported))

	_, err = reg.Resolve("ftp://czbooks.net/n/abc")
	assert.True(t, errors.As(err, &unsupported))
}
