// Package export persists relation records and derives the filesystem
// names shared by every output artifact.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/adalundhe/citegraph/core/scholar"
)

// SafeFilename reduces a publication title to a filesystem-safe stem.
// Letters, digits, spaces, hyphens and underscores survive; trailing
// whitespace is dropped and remaining spaces become underscores.
func SafeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	kept := strings.TrimRight(b.String(), " \t\n")
	return strings.ReplaceAll(kept, " ", "_")
}

// RelationsCSVName returns the file name for a relation export.
func RelationsCSVName(rel scholar.RelationType, title string) string {
	return fmt.Sprintf("%s_%s.csv", rel, SafeFilename(title))
}

// GraphFileName returns the file name for a rendered graph artifact.
func GraphFileName(mode, title, ext string) string {
	return fmt.Sprintf("graph_%s_%s.%s", mode, SafeFilename(title), ext)
}

// WriteRelationsCSV writes entries as CSV. Unknown years render as N/A
// and untitled records as Unknown.
func WriteRelationsCSV(w io.Writer, entries []scholar.RelationEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"isInfluential", "citationCount", "year", "title"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, entry := range entries {
		year := "N/A"
		if entry.Paper.HasYear() {
			year = strconv.Itoa(entry.Paper.Year)
		}
		title := entry.Paper.Title
		if title == "" {
			title = "Unknown"
		}
		row := []string{
			strconv.FormatBool(entry.Influential),
			strconv.Itoa(entry.Paper.Citations),
			year,
			title,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveRelationsCSV writes entries to dir using the derived file name,
// creating dir if needed. It returns the written path.
func SaveRelationsCSV(dir string, rel scholar.RelationType, title string, entries []scholar.RelationEntry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, RelationsCSVName(rel, title))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	if err := WriteRelationsCSV(f, entries); err != nil {
		return "", err
	}
	return path, nil
}
