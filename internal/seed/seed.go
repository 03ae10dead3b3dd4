// Package seed creates a small directory of sample files to scan.
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SampleFile is one file written by Ensure.
type SampleFile struct {
	Name    string
	Content string
}

// Samples are the fixed files written into a new sample directory.
var Samples = []SampleFile{
	{Name: "sample1.txt", Content: "Sample file 1."},
	{Name: "sample2.txt", Content: "Sample file 2."},
	{Name: "sample3.txt", Content: "Sample file 2."},
}

// Ensure creates dir and fills it with Samples. An existing dir is left
// untouched and created is false.
func Ensure(dir string) (created bool, err error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat sample dir %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create sample dir %s: %w", dir, err)
	}
	for _, sample := range Samples {
		path := filepath.Join(dir, sample.Name)
		if err := os.WriteFile(path, []byte(sample.Content), 0o644); err != nil {
			return true, fmt.Errorf("write sample %s: %w", path, err)
		}
	}
	return true, nil
}
