package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveStore moves the deck store file into a sibling "archive" directory,
// stamping its name with the current time. It returns the archived path.
func ArchiveStore(storePath string) (string, error) {
	return archiveAt(storePath, time.Now())
}

func archiveAt(storePath string, now time.Time) (string, error) {
	info, err := os.Stat(storePath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("store file does not exist: %s", storePath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat store file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("store path is a directory: %s", storePath)
	}

	archiveDir := filepath.Join(filepath.Dir(storePath), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405"), ext))

	// Two archives within the same second
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(storePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive store file: %w", err)
	}

	return archivePath, nil
}
