// Package output renders downloaded chapters as one plain-text book.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

var ErrMissingChapter = errors.New("missing chapter")

// Sink receives the rendered book. Nothing written is visible until Commit;
// Abort discards it.
type Sink interface {
	io.Writer
	Commit() error
	Abort() error
}

// Entry is one position in reading order. Chapter is nil when the chapter
// could not be downloaded.
type Entry struct {
	Index     int
	TitleHint string
	Chapter   *providers.Chapter
}

type Assembler struct {
	// MissingMarker writes a placeholder line for each missing chapter.
	// Without it missing chapters are skipped silently.
	MissingMarker bool
	// Strict turns a missing chapter into ErrMissingChapter.
	Strict bool
}

// Write renders entries in ascending Index order and returns the number of
// bytes written. entries must already be sorted.
func (a Assembler) Write(w io.Writer, entries []Entry) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	prev := -1
	for _, e := range entries {
		if e.Index <= prev {
			return cw.n, fmt.Errorf("chapter %d out of order after %d", e.Index+1, prev+1)
		}
		prev = e.Index

		if e.Chapter == nil {
			if a.Strict {
				return cw.n, fmt.Errorf("%w %d: %s", ErrMissingChapter, e.Index+1, e.TitleHint)
			}
			if a.MissingMarker {
				fmt.Fprintf(bw, "%s\n\n", MissingLine(e.Index, e.TitleHint))
			}
			continue
		}

		writeChapter(bw, e.Chapter, e.TitleHint)
	}

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}

	return cw.n, nil
}

// MissingLine numbers chapters from 1, like the failure summary.
func MissingLine(index int, hint string) string {
	if hint == "" {
		return fmt.Sprintf("[missing chapter %d]", index+1)
	}

	return fmt.Sprintf("[missing chapter %d: %s]", index+1, hint)
}

func writeChapter(bw *bufio.Writer, ch *providers.Chapter, hint string) {
	title := strings.TrimSpace(ch.Title)
	if title == "" {
		title = hint
	}

	bw.WriteString(title)
	bw.WriteString("\n\n")
	for _, p := range ch.Paragraphs {
		bw.WriteString(p)
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
