package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"hsrcal/internal/render"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
formatter:
  sources:
    - name: "events"
      file: "./data/events.json"
      enabled: true
    - name: "calendar"
      url: "http://example.com/events.ics"
      format: "ics"
      backup_urls: ["http://mirror.example.com/events.ics"]
      enabled: false
  section_images:
    "Event Rewards": "https://img.example.com/rewards.png"
    "Event Period": "https://img.example.com/period.png"
    "Event": "https://img.example.com/generic.png"
  retry:
    max_attempts: 3
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
    timeout_sec: 30
  output:
    format: "markdown"
    path: "./out"
    sign: true
  versions:
    maintenance_hours: 4
  logging:
    level: "debug"
features:
  trace_rules: true
  strict_check: true
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Formatter.Sources) != 2 {
		t.Errorf("Expected 2 sources, got %d", len(cfg.Formatter.Sources))
	}

	if cfg.Formatter.Sources[1].Format != SourceFormatICS {
		t.Errorf("Expected ics format, got '%s'", cfg.Formatter.Sources[1].Format)
	}

	if cfg.Formatter.Output.Format != "markdown" || !cfg.Formatter.Output.Sign {
		t.Errorf("Unexpected output config: %+v", cfg.Formatter.Output)
	}

	if cfg.Formatter.Versions.MaintenanceHours != 4 {
		t.Errorf("Expected 4 maintenance hours, got %d", cfg.Formatter.Versions.MaintenanceHours)
	}

	if !cfg.Features.TraceRules || !cfg.Features.StrictCheck {
		t.Errorf("Unexpected features: %+v", cfg.Features)
	}

	// Not set in the file, so the default survives.
	if !cfg.Formatter.Output.PrettyPrint {
		t.Error("Expected pretty_print default to be kept")
	}
}

func TestLoadConfig_SectionImagesKeepOrder(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	titles := cfg.Images().Titles()
	expected := []string{"Event Rewards", "Event Period", "Event"}

	if !reflect.DeepEqual(titles, expected) {
		t.Errorf("Titles() = %v, want %v", titles, expected)
	}

	// "Event Details" contains only "Event", the last entry.
	url, ok := cfg.Images().Resolve("Event Details")
	if !ok || url != "https://img.example.com/generic.png" {
		t.Errorf("Resolve() = %q, %v", url, ok)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_SectionImagesNotMapping(t *testing.T) {
	configPath := createTempConfigFile(t, "formatter:\n  section_images: [a, b]\n")

	_, err := LoadConfig(configPath)
	if !errors.Is(err, ErrInvalidSectionImages) {
		t.Fatalf("Expected ErrInvalidSectionImages, got %v", err)
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		expected error
	}{
		{
			name:     "Missing name",
			mutate:   func(c *Config) { c.Formatter.Sources = []SourceConfig{{File: "a.json"}} },
			expected: ErrSourceMissingName,
		},
		{
			name: "Duplicate name",
			mutate: func(c *Config) {
				c.Formatter.Sources = []SourceConfig{{Name: "a", File: "a.json"}, {Name: "a", File: "b.json"}}
			},
			expected: ErrDuplicateSourceName,
		},
		{
			name:     "Missing URL and file",
			mutate:   func(c *Config) { c.Formatter.Sources = []SourceConfig{{Name: "a"}} },
			expected: ErrSourceMissingURLOrFile,
		},
		{
			name:     "Invalid source format",
			mutate:   func(c *Config) { c.Formatter.Sources = []SourceConfig{{Name: "a", File: "a.csv", Format: "csv"}} },
			expected: ErrInvalidSourceFormat,
		},
		{
			name:     "Empty image title",
			mutate:   func(c *Config) { c.Formatter.SectionImages = SectionImagesConfig{{Title: "", URL: "x"}} },
			expected: ErrEmptyImageTitle,
		},
		{
			name:     "Invalid max attempts",
			mutate:   func(c *Config) { c.Formatter.Retry.MaxAttempts = 0 },
			expected: ErrInvalidMaxAttempts,
		},
		{
			name:     "Negative initial delay",
			mutate:   func(c *Config) { c.Formatter.Retry.InitialDelayMs = -1 },
			expected: ErrInvalidInitialDelay,
		},
		{
			name:     "Backoff multiplier below one",
			mutate:   func(c *Config) { c.Formatter.Retry.BackoffMultiplier = 0.5 },
			expected: ErrInvalidBackoffMultiplier,
		},
		{
			name:     "Invalid timeout",
			mutate:   func(c *Config) { c.Formatter.Retry.TimeoutSec = 0 },
			expected: ErrInvalidTimeout,
		},
		{
			name:     "Invalid output format",
			mutate:   func(c *Config) { c.Formatter.Output.Format = "xml" },
			expected: ErrInvalidOutputFormat,
		},
		{
			name:     "Negative maintenance hours",
			mutate:   func(c *Config) { c.Formatter.Versions.MaintenanceHours = -1 },
			expected: ErrInvalidMaintenanceHours,
		},
		{
			name:     "Invalid logging level",
			mutate:   func(c *Config) { c.Formatter.Logging.Level = "verbose" },
			expected: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.expected) {
				t.Errorf("Validate() = %v, want %v", err, tt.expected)
			}
		})
	}
}

// --- SourceConfig Tests ---

func TestSourceConfig_IsLocalFile(t *testing.T) {
	tests := []struct {
		name     string
		src      SourceConfig
		expected bool
	}{
		{"URL only", SourceConfig{URL: "http://example.com"}, false},
		{"File only", SourceConfig{File: "/path/to/events.json"}, true},
		{"Both URL and File", SourceConfig{URL: "http://example.com", File: "/path/to/events.json"}, true},
		{"Neither", SourceConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.IsLocalFile(); got != tt.expected {
				t.Errorf("IsLocalFile() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSourceConfig_GetSource(t *testing.T) {
	tests := []struct {
		name     string
		src      SourceConfig
		expected string
	}{
		{"URL only", SourceConfig{URL: "http://example.com"}, "http://example.com"},
		{"File only", SourceConfig{File: "/path/to/events.json"}, "/path/to/events.json"},
		{"Both (File takes precedence)", SourceConfig{URL: "http://example.com", File: "/path/to/events.json"}, "/path/to/events.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.GetSource(); got != tt.expected {
				t.Errorf("GetSource() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSourceConfig_GetAllURLs(t *testing.T) {
	src := SourceConfig{
		URL:        "http://primary.com",
		BackupURLs: []string{"http://backup1.com", "http://backup2.com"},
	}

	urls := src.GetAllURLs()
	if len(urls) != 3 {
		t.Fatalf("Expected 3 URLs, got %d", len(urls))
	}

	if urls[0] != "http://primary.com" {
		t.Errorf("Expected primary URL first, got %s", urls[0])
	}
}

// --- RetryPolicy Tests ---

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1000 * time.Millisecond}, // capped
		{10, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := rp.GetRetryDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryPolicy_GetTimeout(t *testing.T) {
	rp := RetryPolicy{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := rp.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

func TestVersionsConfig_MaintenanceDuration(t *testing.T) {
	if got := (VersionsConfig{MaintenanceHours: 5}).MaintenanceDuration(); got != 5*time.Hour {
		t.Errorf("MaintenanceDuration() = %v", got)
	}
}

// --- Config Helper Method Tests ---

func TestConfig_EnabledSources(t *testing.T) {
	cfg := Default()
	if _, err := cfg.EnabledSources(); !errors.Is(err, ErrNoSources) {
		t.Errorf("Expected ErrNoSources, got %v", err)
	}

	cfg.Formatter.Sources = []SourceConfig{{Name: "a", Enabled: false}}
	if _, err := cfg.EnabledSources(); !errors.Is(err, ErrNoEnabledSources) {
		t.Errorf("Expected ErrNoEnabledSources, got %v", err)
	}

	cfg.Formatter.Sources = []SourceConfig{
		{Name: "a", Enabled: true},
		{Name: "b", Enabled: false},
		{Name: "c", Enabled: true},
	}

	enabled, err := cfg.EnabledSources()
	if err != nil || len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled sources, got %d (%v)", len(enabled), err)
	}
}

func TestConfig_FindSource(t *testing.T) {
	cfg := Default()
	cfg.Formatter.Sources = []SourceConfig{{Name: "a", File: "a.json"}}

	src, err := cfg.FindSource("a")
	if err != nil || src.File != "a.json" {
		t.Errorf("FindSource(a) = %+v, %v", src, err)
	}

	if _, err := cfg.FindSource("missing"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", err)
	}
}

func TestConfig_GetOutputPath(t *testing.T) {
	cfg := Default()

	if path := cfg.GetOutputPath("42", render.FormatMarkdown); path != "" {
		t.Errorf("Expected stdout (empty path), got %q", path)
	}

	cfg.Formatter.Output.Path = "./out"
	expected := filepath.Join("./out", "42.md")

	if path := cfg.GetOutputPath("42", render.FormatMarkdown); path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}
}

func TestConfig_SaveConfig_RoundTripKeepsImageOrder(t *testing.T) {
	cfg := Default()
	cfg.Formatter.SectionImages = SectionImagesConfig{
		{Title: "Zeta", URL: "z.png"},
		{Title: "Alpha", URL: "a.png"},
	}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !reflect.DeepEqual(loaded.Formatter.SectionImages, cfg.Formatter.SectionImages) {
		t.Errorf("SectionImages = %+v, want %+v", loaded.Formatter.SectionImages, cfg.Formatter.SectionImages)
	}
}

func TestLoadSectionImages(t *testing.T) {
	path := createTempConfigFile(t, "\"Event Rewards\": url1\n\"Event\": url2\n")

	images, err := LoadSectionImages(path)
	if err != nil {
		t.Fatalf("LoadSectionImages failed: %v", err)
	}

	if url, ok := images.Resolve("Event Rewards"); !ok || url != "url1" {
		t.Errorf("Resolve(Event Rewards) = %q, %v", url, ok)
	}

	if url, ok := images.Resolve("Event Period"); !ok || url != "url2" {
		t.Errorf("Resolve(Event Period) = %q, %v", url, ok)
	}
}
