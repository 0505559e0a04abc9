package cli

import (
	"time"

	"codeberg.org/snonux/flickfinder/internal/flickr"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	OutputDir   string
	GUIMode     bool
	Archive     bool
	BatchFile   string
	LogLevel    string
	MetricsAddr string

	// Location search flags
	Latitude  string
	Longitude string

	// Flickr flags
	BaseURL       string
	Timeout       time.Duration
	MaxImageBytes int64
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:      "info",
		BaseURL:       flickr.DefaultBaseURL,
		Timeout:       flickr.DefaultTimeout,
		MaxImageBytes: flickr.DefaultMaxImageBytes,
	}
}
