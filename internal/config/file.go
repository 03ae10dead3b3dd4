package config

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// fileOptions mirrors the keys accepted in a tracefile options file.
type fileOptions struct {
	StartDate   string   `toml:"start_date"`
	EndDate     string   `toml:"end_date"`
	FileTypes   []string `toml:"file_types"`
	TestDataDir string   `toml:"test_data_dir"`
	Database    string   `toml:"db"`
	Serve       string   `toml:"serve"`
	ChartWidth  int      `toml:"chart_width"`
	NoChart     bool     `toml:"no_chart"`
}

// LoadFile decodes a TOML options file and returns the keys it sets. Unknown
// keys are rejected so a misspelled filter never silently widens a scan.
func LoadFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open options file: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()

	var opts fileOptions
	if err := dec.Decode(&opts); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("options file %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("parse options file %s: %w", path, err)
	}

	return opts.settings(), nil
}

func (o fileOptions) settings() map[string]any {
	settings := make(map[string]any)
	if o.StartDate != "" {
		settings["start_date"] = o.StartDate
	}
	if o.EndDate != "" {
		settings["end_date"] = o.EndDate
	}
	if len(o.FileTypes) > 0 {
		settings["file_types"] = o.FileTypes
	}
	if o.TestDataDir != "" {
		settings["test_data_dir"] = o.TestDataDir
	}
	if o.Database != "" {
		settings["db"] = o.Database
	}
	if o.Serve != "" {
		settings["serve"] = o.Serve
	}
	if o.ChartWidth != 0 {
		settings["chart_width"] = o.ChartWidth
	}
	if o.NoChart {
		settings["no_chart"] = true
	}
	return settings
}
