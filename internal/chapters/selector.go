package chapters

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

var ErrEmptySelection = errors.New("selection matches no chapters")

// Selection narrows a chapter list. Numbers are 1-based as shown to users;
// at most one of the fields is honoured, in field order.
type Selection struct {
	Chapter string
	Range   string
	List    string
}

func (s Selection) Empty() bool {
	return s.Chapter == "" && s.Range == "" && s.List == ""
}

// Apply keeps reading order and the original indices.
func (s Selection) Apply(all []providers.ChapterRef) ([]providers.ChapterRef, error) {
	var out []providers.ChapterRef

	switch {
	case s.Chapter != "":
		out = FilterByTitle(all, s.Chapter)
		if len(out) == 0 {
			if n, err := atoi(s.Chapter); err == nil && n > 0 && n <= len(all) {
				out = all[n-1 : n]
			}
		}
	case s.Range != "":
		var err error
		if out, err = FilterRange(all, s.Range); err != nil {
			return nil, err
		}
	case s.List != "":
		out = FilterList(all, s.List)
	default:
		return all, nil
	}

	if len(out) == 0 {
		return nil, ErrEmptySelection
	}

	return out, nil
}

func FilterByTitle(all []providers.ChapterRef, title string) []providers.ChapterRef {
	title = strings.TrimSpace(title)

	var out []providers.ChapterRef
	for _, r := range all {
		if r.TitleHint == title {
			out = append(out, r)
		}
	}

	return out
}

// FilterRange accepts "a-b" and the open form "a-".
func FilterRange(all []providers.ChapterRef, rng string) ([]providers.ChapterRef, error) {
	from, to, ok := strings.Cut(rng, "-")
	if !ok {
		return nil, fmt.Errorf("invalid range %q, want FROM-TO", rng)
	}

	start, err := atoi(from)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", rng, err)
	}

	end := len(all)
	if strings.TrimSpace(to) != "" {
		if end, err = atoi(to); err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", rng, err)
		}
	}

	if start <= 0 || start > end {
		return nil, fmt.Errorf("invalid range %q", rng)
	}
	if start > len(all) {
		return nil, nil
	}
	if end > len(all) {
		end = len(all)
	}

	return all[start-1 : end], nil
}

// FilterList picks "1,5,7"; order and duplicates in the list do not matter.
func FilterList(all []providers.ChapterRef, list string) []providers.ChapterRef {
	picked := map[int]bool{}
	for _, n := range strings.Split(list, ",") {
		idx, err := atoi(n)
		if err != nil {
			continue
		}
		if idx > 0 && idx <= len(all) {
			picked[idx-1] = true
		}
	}

	keys := make([]int, 0, len(picked))
	for k := range picked {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]providers.ChapterRef, 0, len(keys))
	for _, k := range keys {
		out = append(out, all[k])
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
