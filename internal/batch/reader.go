package batch

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/flickfinder/internal/finder"
)

// ReadBatchFile reads searches from a file
// Supports formats:
// - Phrase: "mountains at dawn"
// - Location: "@ 48.85, 2.35"
// - Comment: "# anything"
func ReadBatchFile(filename string) ([]finder.Request, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(string(content)), nil
}

// ParseBatch turns batch file content into search requests.
// Coordinates are not validated here; the finder reports bad ones.
func ParseBatch(content string) []finder.Request {
	var requests []finder.Request

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "@"):
			latitude, longitude, _ := strings.Cut(strings.TrimPrefix(line, "@"), ",")
			requests = append(requests, finder.LocationRequest(
				strings.TrimSpace(latitude),
				strings.TrimSpace(longitude),
			))
		default:
			requests = append(requests, finder.PhraseRequest(line))
		}
	}

	return requests
}
