package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const maxFilenameRunes = 50

// GeneratePhotoID creates a unique ID for a saved photo based on timestamp and title
// Format: epochMillis_md5(title)[:8]
func GeneratePhotoID(title string) string {
	epochMillis := time.Now().UnixMilli()

	hash := md5.Sum([]byte(title))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if n == maxFilenameRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
		n++
	}
	if b.Len() == 0 {
		return "photo"
	}
	return b.String()
}
