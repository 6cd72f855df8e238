// Package downloader drives one novel download: sequential table of
// contents discovery, a bounded pool of chapter fetches, and ordered
// assembly into a sink.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/brogergvhs/noveld/internal/fetcher"
	"github.com/brogergvhs/noveld/internal/output"
	"github.com/brogergvhs/noveld/internal/providers"
	"golang.org/x/text/encoding"
)

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, hint encoding.Encoding) (*fetcher.Result, error)
}

type Resolver interface {
	Resolve(rawURL string) (providers.Adapter, error)
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// Progress is satisfied by ui.ProgressHandle.
type Progress interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
}

// Opener creates the sink once the book is known to be writable.
type Opener func(book providers.Book) (output.Sink, error)

// ChapterCache keeps finished chapters between runs, so a download that was
// interrupted or had failures only refetches what is still missing.
type ChapterCache interface {
	Load(ref providers.ChapterRef) (*providers.Chapter, bool)
	Store(ch *providers.Chapter) error
	Clear() error
}

// CacheOpener returns the cache of one book. site is the adapter key.
type CacheOpener func(site string, book providers.Book) (ChapterCache, error)

// Selector narrows the discovered chapter list. It must keep the order and
// the original Index values.
type Selector func(refs []providers.ChapterRef) ([]providers.ChapterRef, error)

type Options struct {
	Workers int
	// Strict stops the run at the first chapter failure and writes nothing.
	Strict        bool
	MissingMarker bool
	MaxTOCPages   int
	MaxSubPages   int
	// Cache is optional. Without it every run starts from scratch.
	Cache         CacheOpener
	Logger        Logger
	Progress      Progress
}

const (
	defaultWorkers     = 6
	defaultMaxTOCPages = 500
	defaultMaxSubPages = 50
)

type Downloader struct {
	f    PageFetcher
	opts Options
}

func New(f PageFetcher, opts Options) *Downloader {
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxTOCPages < 1 {
		opts.MaxTOCPages = defaultMaxTOCPages
	}
	if opts.MaxSubPages < 1 {
		opts.MaxSubPages = defaultMaxSubPages
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}

	return &Downloader{f: f, opts: opts}
}

// Slot holds the outcome for one chapter. Each slot is written by exactly
// one worker and read only after the pool has drained.
type Slot struct {
	Ref     providers.ChapterRef
	Chapter *providers.Chapter
	Err     error
}

func (s Slot) settled() bool {
	if s.Chapter != nil {
		return true
	}

	return s.Err != nil && !errors.Is(s.Err, context.Canceled)
}

type Report struct {
	Site       string
	EntryURL   string
	Book       providers.Book
	Discovered int
	Slots      []Slot
	Bytes      int64
	Written    int64
	// Cached counts chapters taken from an earlier run.
	Cached     int
	Cancelled  bool

	cause error
}

func (r *Report) Succeeded() int {
	n := 0
	for _, s := range r.Slots {
		if s.Chapter != nil {
			n++
		}
	}

	return n
}

// Failed lists slots that ended in an error other than cancellation.
func (r *Report) Failed() []Slot {
	var out []Slot
	for _, s := range r.Slots {
		if s.Chapter == nil && s.settled() {
			out = append(out, s)
		}
	}

	return out
}

// Err is the chapter failure that stopped a strict run.
func (r *Report) Err() error { return r.cause }

// prefix returns the leading run of slots that finished, successfully or
// not. A cancelled best-effort run writes only this part.
func (r *Report) prefix() []Slot {
	for i, s := range r.Slots {
		if !s.settled() {
			return r.Slots[:i]
		}
	}

	return r.Slots
}

// Run downloads the novel at entryURL. open is not called when nothing
// should be written; a nil open makes the run a dry run.
func (d *Downloader) Run(ctx context.Context, reg Resolver, entryURL string, open Opener, sel Selector) (*Report, error) {
	adapter, err := reg.Resolve(entryURL)
	if err != nil {
		return nil, err
	}
	d.opts.Logger.Debugf("site %s for %s", adapter.Name(), entryURL)

	book, refs, err := d.Discover(ctx, adapter, entryURL)
	if err != nil {
		return nil, err
	}
	discovered := len(refs)
	d.opts.Logger.Infof("%s by %s: %d chapters", book.Name, book.Author, discovered)

	if sel != nil {
		if refs, err = sel(refs); err != nil {
			return nil, err
		}
	}

	var cache ChapterCache
	if open != nil && d.opts.Cache != nil {
		if cache, err = d.opts.Cache(providers.KeyOf(adapter), book); err != nil {
			d.opts.Logger.Warnf("chapter cache disabled: %v", err)
			cache = nil
		}
	}

	rep := d.Fetch(ctx, adapter, refs, cache)
	rep.EntryURL = entryURL
	rep.Book = book
	rep.Discovered = discovered

	if rep.cause != nil {
		return rep, rep.cause
	}

	slots := rep.Slots
	if rep.Cancelled {
		if d.opts.Strict {
			return rep, ctx.Err()
		}
		slots = rep.prefix()
		d.opts.Logger.Warnf("interrupted, keeping %d/%d chapters", len(slots), len(rep.Slots))
	}

	if open == nil {
		return rep, ctx.Err()
	}
	if !anyChapter(slots) {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		return rep, ErrNothingDownloaded
	}

	if err := d.write(rep, slots, open); err != nil {
		return rep, err
	}

	if cache != nil && !rep.Cancelled && len(rep.Failed()) == 0 {
		if err := cache.Clear(); err != nil {
			d.opts.Logger.Warnf("clear chapter cache: %v", err)
		}
	}

	return rep, ctx.Err()
}

func anyChapter(slots []Slot) bool {
	for _, s := range slots {
		if s.Chapter != nil {
			return true
		}
	}

	return false
}

func (d *Downloader) write(rep *Report, slots []Slot, open Opener) error {
	sink, err := open(rep.Book)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	entries := make([]output.Entry, len(slots))
	for i, s := range slots {
		entries[i] = output.Entry{Index: s.Ref.Index, TitleHint: s.Ref.TitleHint, Chapter: s.Chapter}
	}

	asm := output.Assembler{MissingMarker: d.opts.MissingMarker, Strict: d.opts.Strict}
	n, err := asm.Write(sink, entries)
	if err != nil {
		_ = sink.Abort()
		return fmt.Errorf("write output: %w", err)
	}
	rep.Written = n

	if err := sink.Commit(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

// Discover walks the table of contents from entryURL and returns the book
// metadata and the merged chapter list, indexed 0..N-1.
func (d *Downloader) Discover(ctx context.Context, adapter providers.Adapter, entryURL string) (providers.Book, []providers.ChapterRef, error) {
	var (
		book      providers.Book
		refs      []providers.ChapterRef
		seenRefs  = map[string]bool{}
		seenPages = map[string]bool{}
		hint      = providers.EncodingOf(adapter)
	)

	pageURL := entryURL
	for page := 1; pageURL != ""; page++ {
		if page > d.opts.MaxTOCPages {
			return book, nil, &DiscoveryError{URL: pageURL, Page: page, Err: ErrTooManyPages}
		}
		seenPages[pageURL] = true

		res, err := d.f.Fetch(ctx, pageURL, hint)
		if err != nil {
			return book, nil, &DiscoveryError{URL: pageURL, Page: page, Err: err}
		}
		seenPages[res.URL] = true

		toc, err := adapter.ParseTOC(providers.Page{URL: res.URL, Text: res.Text})
		if err != nil {
			return book, nil, &DiscoveryError{URL: pageURL, Page: page, Err: err}
		}
		if page == 1 {
			book = toc.Book
		}

		for _, r := range toc.Refs {
			if !adapter.Recognize(r.URL) {
				d.opts.Logger.Debugf("skip off-site chapter link %s", r.URL)
				continue
			}
			if seenRefs[r.URL] {
				continue
			}
			seenRefs[r.URL] = true

			r.Index = len(refs)
			refs = append(refs, r)
		}
		d.opts.Logger.Debugf("toc page %d: %d links, %d chapters so far", page, len(toc.Refs), len(refs))

		next := toc.Next
		if next != "" {
			if !adapter.Recognize(next) {
				return book, nil, &DiscoveryError{URL: next, Page: page + 1, Err: ErrOffSite}
			}
			if seenPages[next] {
				return book, nil, &DiscoveryError{URL: next, Page: page + 1, Err: ErrTOCLoop}
			}
		}
		pageURL = next
	}

	if len(refs) == 0 {
		return book, nil, &DiscoveryError{URL: entryURL, Page: 1, Err: ErrNoChapters}
	}

	return book, refs, nil
}

// Fetch downloads refs with a bounded worker pool. The report's slots are in
// the same order as refs regardless of completion order. Chapters found in
// cache are not requested again and new ones are added to it; cache may be
// nil.
func (d *Downloader) Fetch(ctx context.Context, adapter providers.Adapter, refs []providers.ChapterRef, cache ChapterCache) *Report {
	rep := &Report{
		Site:       adapter.Name(),
		Discovered: len(refs),
		Slots:      make([]Slot, len(refs)),
	}
	for i, r := range refs {
		rep.Slots[i].Ref = r
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		done   atomic.Int64
		bytes  atomic.Int64
		cached atomic.Int64
		once   sync.Once
	)

	total := len(refs)
	d.opts.Progress.SetTotal(total)

	workers := providers.WorkersFor(adapter, d.opts.Workers)
	d.opts.Logger.Debugf("fetching %d chapters with %d workers", total, workers)

	runPool(runCtx, total, workers, func(i int) {
		slot := &rep.Slots[i]

		if cache != nil {
			if ch, ok := cache.Load(slot.Ref); ok {
				slot.Chapter = ch
				cached.Add(1)
				d.opts.Progress.Update(int(done.Add(1)), total, bytes.Load())
				return
			}
		}

		ch, n, err := d.chapter(runCtx, adapter, slot.Ref)
		bytes.Add(n)

		if err != nil {
			slot.Err = err
			if !errors.Is(err, context.Canceled) {
				d.opts.Logger.Warnf("%v", err)
				if d.opts.Strict {
					once.Do(func() {
						rep.cause = err
						cancel()
					})
				}
			}
		} else {
			slot.Chapter = ch
			if cache != nil {
				if err := cache.Store(ch); err != nil {
					d.opts.Logger.Warnf("cache chapter %d: %v", ch.Index+1, err)
				}
			}
		}

		d.opts.Progress.Update(int(done.Add(1)), total, bytes.Load())
	})

	d.opts.Progress.MarkDone()

	rep.Bytes = bytes.Load()
	rep.Cached = int(cached.Load())
	if rep.Cached > 0 {
		d.opts.Logger.Infof("%d chapters reused from the chapter cache", rep.Cached)
	}
	rep.Cancelled = ctx.Err() != nil

	return rep
}

// chapter fetches one chapter, following sub-pages while the adapter
// reports them.
func (d *Downloader) chapter(ctx context.Context, adapter providers.Adapter, ref providers.ChapterRef) (*providers.Chapter, int64, error) {
	var (
		size  int64
		title string
		paras []string
		seen  = map[string]bool{}
		hint  = providers.EncodingOf(adapter)
	)

	pageURL := ref.URL
	for sub := 0; pageURL != ""; sub++ {
		if sub >= d.opts.MaxSubPages {
			return nil, size, &ChapterError{Index: ref.Index, URL: pageURL, Err: ErrTooManySubPages}
		}
		seen[pageURL] = true

		res, err := d.f.Fetch(ctx, pageURL, hint)
		if err != nil {
			return nil, size, &ChapterError{Index: ref.Index, URL: pageURL, Err: err}
		}
		size += res.Size
		seen[res.URL] = true

		cp, err := adapter.ParseChapter(providers.Page{URL: res.URL, Text: res.Text})
		if err != nil {
			return nil, size, &ChapterError{Index: ref.Index, URL: pageURL, Err: err}
		}

		if title == "" {
			title = cp.Title
		}
		paras = append(paras, cp.Paragraphs...)

		next := cp.Next
		if next != "" && (seen[next] || !adapter.Recognize(next)) {
			next = ""
		}
		pageURL = next
	}

	if title == "" {
		title = ref.TitleHint
	}

	return &providers.Chapter{
		Index:      ref.Index,
		URL:        ref.URL,
		Title:      title,
		Paragraphs: paras,
	}, size, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

type nopProgress struct{}

func (nopProgress) SetTotal(int)           {}
func (nopProgress) Update(int, int, int64) {}
func (nopProgress) MarkDone()              {}
