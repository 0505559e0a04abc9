package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/flickfinder/internal/finder"
	"codeberg.org/snonux/flickfinder/internal/flickr"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "flickfinder [phrase]" {
		t.Errorf("Expected Use to be 'flickfinder [phrase]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Flickr") {
		t.Errorf("Expected Short description to mention Flickr, got %q", cmd.Short)
	}

	flagNames := []string{
		"config", "output", "gui", "archive", "batch", "log-level", "metrics-addr",
		"lat", "lon", "base-url", "timeout", "max-image-bytes",
	}

	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	outputFlag := cmd.Flags().Lookup("output")
	if outputFlag == nil {
		t.Fatal("output flag not found")
	}

	home, _ := os.UserHomeDir()
	expectedDefault := filepath.Join(home, ".local", "state", "flickfinder", "photos")
	if outputFlag.DefValue != expectedDefault {
		t.Errorf("Expected default output dir to be %s, got %s", expectedDefault, outputFlag.DefValue)
	}

	timeoutFlag := cmd.Flags().Lookup("timeout")
	if timeoutFlag == nil {
		t.Fatal("timeout flag not found")
	}
	if timeoutFlag.DefValue != "30s" {
		t.Errorf("Expected default timeout to be 30s, got %s", timeoutFlag.DefValue)
	}

	if baseURL := cmd.Flags().Lookup("base-url"); baseURL == nil || !baseURL.Hidden {
		t.Error("Expected base-url flag to exist and be hidden")
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	if err := cmd.Flags().Parse([]string{"--output", "/tmp/photos", "--timeout", "5s", "--metrics-addr", ":9100"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := viper.GetString("output.directory"); got != "/tmp/photos" {
		t.Errorf("output.directory = %q, want /tmp/photos", got)
	}
	if got := viper.GetDuration("flickr.timeout"); got != 5*time.Second {
		t.Errorf("flickr.timeout = %v, want 5s", got)
	}
	if got := viper.GetString("metrics.addr"); got != ":9100" {
		t.Errorf("metrics.addr = %q, want :9100", got)
	}
	if got := viper.GetString("flickr.base_url"); got != flickr.DefaultBaseURL {
		t.Errorf("flickr.base_url = %q, want default", got)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				tmpDir := t.TempDir()
				cfgPath := filepath.Join(tmpDir, "test-config.yaml")
				content := `flickr:
  api_key: test-key
  timeout: 12s
output:
  directory: /test/output`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				if got := viper.GetString("flickr.api_key"); got != "test-key" {
					t.Errorf("flickr.api_key = %q, want test-key", got)
				}
				if got := viper.GetDuration("flickr.timeout"); got != 12*time.Second {
					t.Errorf("flickr.timeout = %v, want 12s", got)
				}
				if got := viper.GetString("output.directory"); got != "/test/output" {
					t.Errorf("output.directory = %q, want /test/output", got)
				}
			},
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				return ""
			},
			check: func(t *testing.T) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Chdir(t.TempDir())

			InitConfig(tt.setupFunc(t))
			tt.check(t)
		})
	}
}

func TestInitConfigEnvironment(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())
	t.Setenv("FLICKFINDER_METRICS_ADDR", ":9200")

	InitConfig("")

	if got := viper.GetString("metrics.addr"); got != ":9200" {
		t.Errorf("metrics.addr = %q, want :9200 from environment", got)
	}
}

func TestInitConfigDotEnv(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FLICKR_API_KEY", "")
	os.Unsetenv("FLICKR_API_KEY")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FLICKR_API_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	InitConfig("")

	if got := GetFlickrKey(); got != "from-dotenv" {
		t.Errorf("GetFlickrKey() = %q, want from-dotenv", got)
	}
}

func TestGetFlickrKey(t *testing.T) {
	resetViper(t)

	t.Setenv("FLICKR_API_KEY", "env-key")
	viper.Set("flickr.api_key", "config-key")
	if got := GetFlickrKey(); got != "env-key" {
		t.Errorf("GetFlickrKey() = %q, want env-key", got)
	}

	t.Setenv("FLICKR_API_KEY", "")
	if got := GetFlickrKey(); got != "config-key" {
		t.Errorf("GetFlickrKey() = %q, want config-key", got)
	}
}

func TestLoadSettings(t *testing.T) {
	resetViper(t)
	t.Setenv("FLICKR_API_KEY", "k")
	cmd := CreateRootCommand(NewFlags())
	if err := cmd.Flags().Parse([]string{"--log-level", "debug"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s := LoadSettings()
	if s.APIKey != "k" {
		t.Errorf("APIKey = %q, want k", s.APIKey)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", s.LogLevel)
	}
	if s.Timeout != flickr.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, flickr.DefaultTimeout)
	}
	if s.MaxImageBytes != flickr.DefaultMaxImageBytes {
		t.Errorf("MaxImageBytes = %d, want %d", s.MaxImageBytes, flickr.DefaultMaxImageBytes)
	}
}

func TestLoadSettingsFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		size    string
	}{
		{"zero values", "0s", "0"},
		{"negative values", "-5s", "-1"},
		{"unparsable values", "soon", "huge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set("flickr.timeout", tt.timeout)
			viper.Set("flickr.max_image_bytes", tt.size)
			viper.Set("flickr.base_url", "")

			s := LoadSettings()
			if s.Timeout != flickr.DefaultTimeout {
				t.Errorf("Timeout = %v, want %v", s.Timeout, flickr.DefaultTimeout)
			}
			if s.MaxImageBytes != flickr.DefaultMaxImageBytes {
				t.Errorf("MaxImageBytes = %d, want %d", s.MaxImageBytes, flickr.DefaultMaxImageBytes)
			}
			if s.BaseURL != flickr.DefaultBaseURL {
				t.Errorf("BaseURL = %q, want %q", s.BaseURL, flickr.DefaultBaseURL)
			}
		})
	}
}

func TestLoadSettingsKeepsPositiveValues(t *testing.T) {
	resetViper(t)
	viper.Set("flickr.timeout", "7s")
	viper.Set("flickr.max_image_bytes", 2048)

	s := LoadSettings()
	if s.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v, want 7s", s.Timeout)
	}
	if s.MaxImageBytes != 2048 {
		t.Errorf("MaxImageBytes = %d, want 2048", s.MaxImageBytes)
	}
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		flags   []string
		want    finder.Request
		gui     bool
		wantErr error
	}{
		{
			name: "no input launches gui",
			gui:  true,
		},
		{
			name: "phrase from args",
			args: []string{"mountains", "at", "dawn"},
			want: finder.PhraseRequest("mountains at dawn"),
		},
		{
			name:  "location from flags",
			flags: []string{"--lat", "48.85", "--lon", "2.35"},
			want:  finder.LocationRequest("48.85", "2.35"),
		},
		{
			name:  "latitude alone still searches by location",
			flags: []string{"--lat", "10"},
			want:  finder.LocationRequest("10", ""),
		},
		{
			name:    "phrase and location together",
			args:    []string{"paris"},
			flags:   []string{"--lat", "48.85", "--lon", "2.35"},
			wantErr: ErrMixedSearch,
		},
		{
			name:  "batch file",
			flags: []string{"--batch", "searches.txt"},
		},
		{
			name:    "batch and phrase together",
			args:    []string{"paris"},
			flags:   []string{"-b", "searches.txt"},
			wantErr: ErrMixedSearch,
		},
		{
			name:  "gui flag wins",
			args:  []string{"paris"},
			flags: []string{"--gui"},
			gui:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			flags := NewFlags()
			cmd := CreateRootCommand(flags)
			if err := cmd.Flags().Parse(tt.flags); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			req, gui, err := BuildRequest(cmd, tt.args, flags)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BuildRequest() error = %v, want %v", err, tt.wantErr)
			}
			if gui != tt.gui {
				t.Errorf("BuildRequest() gui = %v, want %v", gui, tt.gui)
			}
			if req != tt.want {
				t.Errorf("BuildRequest() request = %+v, want %+v", req, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLogger("warn", &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}

	log.Info().Msg("hidden")
	log.Warn().Msg("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("warn message missing from output: %q", buf.String())
	}

	if _, err := NewLogger("chatty", &buf); err == nil {
		t.Error("NewLogger() expected error for unknown level")
	}

	log, err = NewLogger("", &buf)
	if err != nil {
		t.Fatalf("NewLogger(\"\") error = %v", err)
	}
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("empty level = %v, want info", log.GetLevel())
	}
}
