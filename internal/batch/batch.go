package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one material file to generate a deck from
type Entry struct {
	Path string
	// Title is the deck title; empty means the generated default
	Title string
}

// ReadBatchFile reads material entries from a batch file.
// Supported line formats:
// - Path only: "notes/chapter1.txt"
// - With deck title: "notes/chapter1.txt = Chapter 1"
// Blank lines and lines starting with '#' are skipped. Relative paths are
// resolved against the directory of the batch file.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	baseDir := filepath.Dir(filename)

	var entries []Entry
	for _, line := range strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		path, title, _ := strings.Cut(line, "=")
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		entries = append(entries, Entry{
			Path:  path,
			Title: strings.TrimSpace(title),
		})
	}

	return entries, nil
}
