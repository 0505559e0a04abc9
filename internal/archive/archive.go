// Package archive moves the saved photos out of the way so the next
// searches start with an empty output directory.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchivePhotos moves photosDir to <parent>/archive/photos-<timestamp> and
// returns the new location.
func ArchivePhotos(photosDir string) (string, error) {
	// Check if photos directory exists
	if _, err := os.Stat(photosDir); os.IsNotExist(err) {
		return "", fmt.Errorf("photos directory does not exist: %s", photosDir)
	}

	archiveDir := filepath.Join(filepath.Dir(photosDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	now := time.Now()
	archivePath := filepath.Join(archiveDir, "photos-"+now.Format("20060102-150405"))

	// Two archives within the same second get microseconds appended
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, "photos-"+now.Format("20060102-150405.000000"))
	}

	if err := os.Rename(photosDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive photos directory: %w", err)
	}

	return archivePath, nil
}
