package storage

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run id is not present in the archive.
var ErrRunNotFound = errors.New("run not found")

// Run describes one archived collection pass.
type Run struct {
	ID         string
	Root       string
	Output     string
	StartDate  time.Time
	EndDate    time.Time
	FileTypes  []string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int
	Failures   int
}

// Failure is a file the run could not read.
type Failure struct {
	Path    string
	Kind    string
	Message string
}
