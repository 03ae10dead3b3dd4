package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tracefile/internal/report"
)

// EnvPrefix is prepended to every environment variable read by tracefile.
const EnvPrefix = "TRACEFILE"

// DefaultTestDataDir is where sample files are seeded when no directory is given.
const DefaultTestDataDir = "test_data"

// ErrInvalidDate is returned when a date bound cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Config captures runtime configuration for one tracefile invocation.
// Values are layered from defaults, the optional TOML options file,
// TRACEFILE_* env vars, and CLI flags, in increasing precedence.
type Config struct {
	// TargetDir is the root of the scanned tree.
	TargetDir string `mapstructure:"-"`

	// OutputFile is the CSV report destination.
	OutputFile string `mapstructure:"-"`

	StartDate   string   `mapstructure:"start_date"`
	EndDate     string   `mapstructure:"end_date"`
	FileTypes   []string `mapstructure:"file_types"`
	TestDataDir string   `mapstructure:"test_data_dir"`

	// Database is the SQLite case database. Empty disables archiving.
	Database string `mapstructure:"db"`

	// ServeAddr switches the chart display to the browser when non-empty.
	ServeAddr string `mapstructure:"serve"`

	ChartWidth int  `mapstructure:"chart_width"`
	NoChart    bool `mapstructure:"no_chart"`

	// Scan is the validated filter configuration derived from the fields above.
	Scan ScanConfig `mapstructure:"-"`
}

// NewViper returns a viper instance reading TRACEFILE_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every known key so env lookups and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("start_date", "")
	v.SetDefault("end_date", "")
	v.SetDefault("file_types", []string{})
	v.SetDefault("test_data_dir", DefaultTestDataDir)
	v.SetDefault("db", "")
	v.SetDefault("serve", "")
	v.SetDefault("chart_width", report.DefaultTerminalWidth)
	v.SetDefault("no_chart", false)
}

// LoadOptions registers defaults and merges the options file named by the
// "config" key, if any, beneath env and flag values.
func LoadOptions(v *viper.Viper) error {
	SetDefaults(v)

	path := v.GetString("config")
	if path == "" {
		return nil
	}
	options, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(options); err != nil {
		return fmt.Errorf("merge options file %s: %w", path, err)
	}
	return nil
}

// Load builds the run configuration for the given target directory and output
// file. Date bounds are parsed here so a malformed value is rejected before any
// scanning begins.
func Load(v *viper.Viper, targetDir, outputFile string) (Config, error) {
	if err := LoadOptions(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.TestDataDir == "" {
		cfg.TestDataDir = DefaultTestDataDir
	}
	if cfg.ChartWidth < 0 {
		return Config{}, fmt.Errorf("chart width must not be negative, got %d", cfg.ChartWidth)
	}
	if cfg.ChartWidth == 0 {
		cfg.ChartWidth = report.DefaultTerminalWidth
	}

	scan, err := NewScanConfig(targetDir, outputFile, cfg.StartDate, cfg.EndDate, cfg.FileTypes)
	if err != nil {
		return Config{}, err
	}
	cfg.TargetDir = scan.Root
	cfg.OutputFile = scan.Output
	cfg.Scan = scan

	return cfg, nil
}

// ScanConfig is the filter and target configuration of one collection pass.
// It is not modified after NewScanConfig returns.
type ScanConfig struct {
	Root   string
	Output string

	// StartDate and EndDate bound the creation time, both inclusive.
	StartDate *time.Time
	EndDate   *time.Time

	// FileTypes are literal, case-sensitive file name suffixes.
	FileTypes []string
}

// NewScanConfig validates the raw values and returns an immutable ScanConfig.
// Empty date strings leave the corresponding bound unset.
func NewScanConfig(root, output, startDate, endDate string, fileTypes []string) (ScanConfig, error) {
	if strings.TrimSpace(root) == "" {
		return ScanConfig{}, errors.New("target directory is required")
	}
	if strings.TrimSpace(output) == "" {
		return ScanConfig{}, errors.New("output file is required")
	}

	cfg := ScanConfig{
		Root:   filepath.Clean(root),
		Output: output,
	}

	if startDate != "" {
		start, err := ParseDate(startDate)
		if err != nil {
			return ScanConfig{}, fmt.Errorf("start_date: %w", err)
		}
		cfg.StartDate = &start
	}
	if endDate != "" {
		end, err := ParseDate(endDate)
		if err != nil {
			return ScanConfig{}, fmt.Errorf("end_date: %w", err)
		}
		cfg.EndDate = &end
	}

	if len(fileTypes) > 0 {
		cfg.FileTypes = make([]string, len(fileTypes))
		copy(cfg.FileTypes, fileTypes)
	}

	return cfg, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

// ParseDate accepts a calendar date or an ISO-8601 date-time. Values without an
// offset are interpreted in the local zone, so a bare date means local midnight.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: want YYYY-MM-DD or an ISO-8601 date-time", ErrInvalidDate, raw)
}

// MatchesType reports whether name passes the suffix filter. An empty filter
// accepts every name.
func (c ScanConfig) MatchesType(name string) bool {
	if len(c.FileTypes) == 0 {
		return true
	}
	for _, suffix := range c.FileTypes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// InRange reports whether created lies within the configured bounds.
func (c ScanConfig) InRange(created time.Time) bool {
	if c.StartDate != nil && created.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && created.After(*c.EndDate) {
		return false
	}
	return true
}
