// Package config provides configuration management for the description formatter.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"hsrcal/internal/formatter"
	"hsrcal/internal/render"
)

// DefaultPath is where the CLI looks for a configuration file.
const DefaultPath = "configs/descfmt.yaml"

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("at least one source is required")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrSourceNotFound           = errors.New("source not found")
	ErrSourceMissingURLOrFile   = errors.New("either URL or file path is required")
	ErrSourceMissingName        = errors.New("name is required")
	ErrDuplicateSourceName      = errors.New("source names must be unique")
	ErrInvalidSourceFormat      = errors.New("format must be one of: json, jsonl, ics")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidOutputFormat      = errors.New("output.format must be one of: json, markdown, html, text, terminal")
	ErrInvalidMaintenanceHours  = errors.New("versions.maintenance_hours must be non-negative")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidSectionImages     = errors.New("section_images must be a mapping of title to URL")
	ErrEmptyImageTitle          = errors.New("section_images titles must not be empty")
)

// Source formats.
const (
	SourceFormatJSON  = "json"
	SourceFormatJSONL = "jsonl"
	SourceFormatICS   = "ics"
)

// Config represents the complete formatter configuration.
type Config struct {
	Formatter FormatterConfig `yaml:"formatter"`
	Features  FeaturesConfig  `yaml:"features"`
}

// FormatterConfig contains formatter-specific settings.
type FormatterConfig struct {
	Sources       []SourceConfig      `yaml:"sources"`
	SectionImages SectionImagesConfig `yaml:"section_images"`
	Output        OutputConfig        `yaml:"output"`
	Retry         RetryPolicy         `yaml:"retry"`
	Versions      VersionsConfig      `yaml:"versions"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// SourceConfig represents an event export.
type SourceConfig struct {
	Name       string   `yaml:"name"`
	URL        string   `yaml:"url"`
	File       string   `yaml:"file"`
	Format     string   `yaml:"format"`
	BackupURLs []string `yaml:"backup_urls"`
	Enabled    bool     `yaml:"enabled"`
}

// IsLocalFile returns true if this source uses a local file.
func (s *SourceConfig) IsLocalFile() bool {
	return s.File != ""
}

// GetSource returns the file path if local, or URL if remote.
func (s *SourceConfig) GetSource() string {
	if s.IsLocalFile() {
		return s.File
	}

	return s.URL
}

// GetAllURLs returns all URLs (primary + backups) for a source.
func (s *SourceConfig) GetAllURLs() []string {
	urls := []string{s.URL}
	urls = append(urls, s.BackupURLs...)

	return urls
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// OutputConfig defines output behavior. An empty Path writes to stdout.
type OutputConfig struct {
	Format      string `yaml:"format"`
	Path        string `yaml:"path"`
	PrettyPrint bool   `yaml:"pretty_print"`
	Sign        bool   `yaml:"sign"`
}

// VersionsConfig tunes version-start derivation.
type VersionsConfig struct {
	MaintenanceHours int `yaml:"maintenance_hours"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	TraceRules     bool `yaml:"trace_rules"`
	ResolvePeriods bool `yaml:"resolve_periods"`
	StrictCheck    bool `yaml:"strict_check"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Formatter: FormatterConfig{
			Output: OutputConfig{
				Format:      string(render.FormatJSON),
				PrettyPrint: true,
			},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			Versions: VersionsConfig{MaintenanceHours: 5},
			Logging:  LoggingConfig{Level: "info"},
		},
		Features: FeaturesConfig{ResolvePeriods: true},
	}
}

// LoadConfig loads configuration from a YAML file. Keys missing from the file
// keep their Default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration. Sources are optional; commands that
// need them call EnabledSources.
func (c *Config) Validate() error {
	names := make(map[string]bool, len(c.Formatter.Sources))

	for i, src := range c.Formatter.Sources {
		if src.Name == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingName, i)
		}

		if names[src.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateSourceName, src.Name)
		}

		names[src.Name] = true

		if src.URL == "" && src.File == "" {
			return fmt.Errorf("%w: source %s", ErrSourceMissingURLOrFile, src.Name)
		}

		switch src.Format {
		case "", SourceFormatJSON, SourceFormatJSONL, SourceFormatICS:
		default:
			return fmt.Errorf("%w: source %s has %q", ErrInvalidSourceFormat, src.Name, src.Format)
		}
	}

	for _, entry := range c.Formatter.SectionImages {
		if entry.Title == "" {
			return ErrEmptyImageTitle
		}
	}

	retry := c.Formatter.Retry
	if retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if _, err := render.ParseFormat(c.Formatter.Output.Format); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Formatter.Output.Format)
	}

	if c.Formatter.Versions.MaintenanceHours < 0 {
		return ErrInvalidMaintenanceHours
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Formatter.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// EnabledSources returns the enabled sources, or an error when there are none.
func (c *Config) EnabledSources() ([]SourceConfig, error) {
	if len(c.Formatter.Sources) == 0 {
		return nil, ErrNoSources
	}

	var enabled []SourceConfig

	for _, src := range c.Formatter.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	if len(enabled) == 0 {
		return nil, ErrNoEnabledSources
	}

	return enabled, nil
}

// FindSource returns the named source, enabled or not.
func (c *Config) FindSource(name string) (SourceConfig, error) {
	for _, src := range c.Formatter.Sources {
		if src.Name == name {
			return src, nil
		}
	}

	return SourceConfig{}, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// MaintenanceDuration is the time between an update announcement and the
// start of the new version.
func (v VersionsConfig) MaintenanceDuration() time.Duration {
	return time.Duration(v.MaintenanceHours) * time.Hour
}

// GetOutputPath returns {path}/{eventID}{ext} for one rendered event, or ""
// when output goes to stdout.
func (c *Config) GetOutputPath(eventID string, format render.Format) string {
	if c.Formatter.Output.Path == "" {
		return ""
	}

	return filepath.Join(c.Formatter.Output.Path, eventID+format.Extension())
}

// Images returns the configured section images as a resolver.
func (c *Config) Images() *formatter.SectionImages {
	return c.Formatter.SectionImages.Images()
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, SectionImages: %d, MaxAttempts: %d, Output: %s}",
		len(c.Formatter.Sources),
		len(c.Formatter.SectionImages),
		c.Formatter.Retry.MaxAttempts,
		c.Formatter.Output.Format,
	)
}
