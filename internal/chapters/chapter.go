package chapters

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/brogergvhs/noveld/internal/providers"
)

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	repl := strings.NewReplacer(
		"•", "_",
		"·", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"　", "_",
		"(", "",
		")", "",
		"《", "",
		"》", "",
	)
	s = repl.Replace(strings.TrimSpace(s))

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}

	s = reUnderscore.ReplaceAllString(string(clean), "_")

	return strings.Trim(s, "_")
}

// BaseName is "<author>_<name>", or just the parts that are known.
func BaseName(book providers.Book) string {
	var parts []string
	for _, p := range []string{book.Author, book.Name} {
		if s := sanitize(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "novel"
	}

	return strings.Join(parts, "_")
}

func FileName(book providers.Book) string {
	return BaseName(book) + ".txt"
}

// OutputPath resolves the file the book is written to. An explicit output
// wins; a directory-only output gets the derived file name.
func OutputPath(book providers.Book, output, dir string) string {
	if output != "" {
		if strings.HasSuffix(output, string(filepath.Separator)) || strings.HasSuffix(output, "/") {
			return filepath.Join(output, FileName(book))
		}
		if filepath.IsAbs(output) || dir == "" {
			return output
		}

		return filepath.Join(dir, output)
	}

	if dir == "" {
		dir = "."
	}

	return filepath.Join(dir, FileName(book))
}
