// Package output implements the command-line display sink: it saves the
// found photo into a directory and prints the title and status lines.
package output

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/flickfinder/internal"
)

// FileSink saves shown images to OutputDir
type FileSink struct {
	outputDir string
	out       io.Writer
	errOut    io.Writer
	log       zerolog.Logger

	mu        sync.Mutex
	lastSaved string
	lastErr   error
}

// NewFileSink creates a sink writing images below outputDir
func NewFileSink(outputDir string, out, errOut io.Writer, log zerolog.Logger) *FileSink {
	return &FileSink{
		outputDir: outputDir,
		out:       out,
		errOut:    errOut,
		log:       log,
	}
}

// ShowImage saves the image and prints where it went
func (s *FileSink) ShowImage(data []byte, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.save(data, title)
	if err != nil {
		s.lastSaved = ""
		s.lastErr = err
		s.log.Error().Err(err).Msg("failed to save image")
		fmt.Fprintf(s.errOut, "Error: could not save %q: %v\n", title, err)
		return
	}

	s.lastSaved = path
	s.lastErr = nil
	fmt.Fprintf(s.out, "%s\n", title)
	fmt.Fprintf(s.out, "Saved to %s\n", path)
}

// ShowNoResults clears the shown image and prints message
func (s *FileSink) ShowNoResults(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSaved = ""
	s.lastErr = nil
	fmt.Fprintln(s.errOut, message)
}

// ShowStatus prints a status line
func (s *FileSink) ShowStatus(text string) {
	fmt.Fprintln(s.out, text)
}

// LastSaved returns the path of the image currently shown, "" if none
func (s *FileSink) LastSaved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Err returns the error of the last failed save
func (s *FileSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *FileSink) save(data []byte, title string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s", internal.SanitizeFilename(title), internal.GeneratePhotoID(title), extensionFor(data))
	outputPath := filepath.Join(s.outputDir, filename)

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		os.Remove(outputPath) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return outputPath, nil
}

// extensionFor picks a file extension from the sniffed content type
func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".jpg"
}
