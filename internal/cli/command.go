package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/flickfinder/internal"
	"codeberg.org/snonux/flickfinder/internal/finder"
	"codeberg.org/snonux/flickfinder/internal/flickr"
)

// ErrMixedSearch is returned when more than one kind of search is given
var ErrMixedSearch = errors.New("use only one of a search phrase, --lat/--lon or --batch")

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flickfinder [phrase]",
		Short: "Random Flickr photo finder",
		Long: `flickfinder searches Flickr by phrase or by location and shows one
randomly chosen photo from the matches.

Examples:
  flickfinder                          # Launch interactive GUI (default)
  flickfinder mountains at dawn        # Save a random photo matching the phrase
  flickfinder --lat 48.85 --lon 2.35   # Save a random photo taken near Paris
  flickfinder --batch searches.txt     # Run every search in the file`,
		Args:    cobra.ArbitraryArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Set default output directory to match GUI mode
	home, _ := os.UserHomeDir()
	defaultOutputDir := filepath.Join(home, ".local", "state", "flickfinder", "photos")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.flickfinder.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", defaultOutputDir, "Directory where found photos are saved")
	cmd.Flags().BoolVar(&flags.GUIMode, "gui", false, "Launch the GUI even when a search is given")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the saved photos to the archive directory and exit")
	cmd.Flags().StringVarP(&flags.BatchFile, "batch", "b", "", "Run every search listed in a file (one per line, '@ lat, lon' for locations)")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	// Location flags
	cmd.Flags().StringVar(&flags.Latitude, "lat", "", "Latitude of the search center (-90 to 90)")
	cmd.Flags().StringVar(&flags.Longitude, "lon", "", "Longitude of the search center (-180 to 180)")

	// Flickr flags
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", flags.BaseURL, "Flickr REST endpoint")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP timeout for Flickr requests")
	cmd.Flags().Int64Var(&flags.MaxImageBytes, "max-image-bytes", flags.MaxImageBytes, "Largest image that will be downloaded")
	cmd.Flags().MarkHidden("base-url")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))
	viper.BindPFlag("flickr.base_url", cmd.Flags().Lookup("base-url"))
	viper.BindPFlag("flickr.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("flickr.max_image_bytes", cmd.Flags().Lookup("max-image-bytes"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A .env file in the working directory may carry FLICKR_API_KEY
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".flickfinder" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".flickfinder")
	}

	// Environment variables
	viper.SetEnvPrefix("FLICKFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetFlickrKey retrieves the Flickr API key from environment or config
func GetFlickrKey() string {
	// First check environment variable
	if key := os.Getenv("FLICKR_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("flickr.api_key")
}

// Settings is the resolved configuration after flags, config file and environment
type Settings struct {
	APIKey        string
	BaseURL       string
	OutputDir     string
	LogLevel      string
	MetricsAddr   string
	Timeout       time.Duration
	MaxImageBytes int64
}

// LoadSettings resolves the configuration from viper. A missing base URL
// and a timeout or image size that is not positive (including values that
// do not parse) fall back to the client defaults.
func LoadSettings() Settings {
	s := Settings{
		APIKey:        GetFlickrKey(),
		BaseURL:       viper.GetString("flickr.base_url"),
		OutputDir:     viper.GetString("output.directory"),
		LogLevel:      viper.GetString("log.level"),
		MetricsAddr:   viper.GetString("metrics.addr"),
		Timeout:       viper.GetDuration("flickr.timeout"),
		MaxImageBytes: viper.GetInt64("flickr.max_image_bytes"),
	}

	if s.BaseURL == "" {
		s.BaseURL = flickr.DefaultBaseURL
	}
	if s.Timeout <= 0 {
		s.Timeout = flickr.DefaultTimeout
	}
	if s.MaxImageBytes <= 0 {
		s.MaxImageBytes = flickr.DefaultMaxImageBytes
	}
	return s
}

// BuildRequest decides what to search for from the arguments and flags.
// The second result is true when the GUI should be launched instead. With
// --batch the request is empty; the searches come from the file.
func BuildRequest(cmd *cobra.Command, args []string, flags *Flags) (finder.Request, bool, error) {
	location := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")

	switch {
	case flags.GUIMode:
		return finder.Request{}, true, nil
	case location && len(args) > 0, flags.BatchFile != "" && (location || len(args) > 0):
		return finder.Request{}, false, ErrMixedSearch
	case flags.BatchFile != "":
		return finder.Request{}, false, nil
	case location:
		return finder.LocationRequest(flags.Latitude, flags.Longitude), false, nil
	case len(args) > 0:
		return finder.PhraseRequest(strings.Join(args, " ")), false, nil
	}

	// No input provided - launch GUI mode by default
	return finder.Request{}, true, nil
}
