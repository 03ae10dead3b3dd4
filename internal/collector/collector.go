// Package collector walks a directory tree and gathers per-file timestamps
// into a timeline, applying the suffix and creation-date filters of a
// ScanConfig.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"tracefile/internal/config"
	"tracefile/internal/timeline"
)

// ErrNotDirectory is reported when the scan root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Times holds the three timestamps the host reports for a file.
type Times struct {
	Created  time.Time
	Modified time.Time
	Accessed time.Time
}

// StatReader queries the host for a file's timestamps.
type StatReader interface {
	Stat(path string) (Times, error)
}

// HostStat reads timestamps with the host's file-status primitive.
type HostStat struct{}

// FailureKind categorizes why a file was left out of the timeline.
type FailureKind string

const (
	FailurePermission FailureKind = "permission"
	FailureNotExist   FailureKind = "not-exist"
	FailureOther      FailureKind = "other"
)

// Failure records a file or directory that could not be read.
type Failure struct {
	Path string
	Kind FailureKind
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Path, f.Kind, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

func newFailure(path string, err error) Failure {
	kind := FailureOther
	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = FailurePermission
	case errors.Is(err, fs.ErrNotExist):
		kind = FailureNotExist
	}
	return Failure{Path: path, Kind: kind, Err: err}
}

// Result is the outcome of one collection pass.
type Result struct {
	Timeline timeline.Timeline
	Failures []Failure

	// Visited counts file entries considered, Skipped those removed by a filter.
	Visited int
	Skipped int
}

// Collector produces a timeline for a single ScanConfig.
type Collector struct {
	cfg  config.ScanConfig
	stat StatReader
}

// Option customizes a Collector.
type Option func(*Collector)

// WithStatReader replaces the host status query.
func WithStatReader(reader StatReader) Option {
	return func(c *Collector) {
		if reader != nil {
			c.stat = reader
		}
	}
}

// New constructs a Collector for cfg.
func New(cfg config.ScanConfig, opts ...Option) *Collector {
	c := &Collector{cfg: cfg, stat: HostStat{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the scan configuration the collector was built with.
func (c *Collector) Config() config.ScanConfig {
	return c.cfg
}

// Collect walks the configured root once and returns every file that passes
// both filters, in walk order. Unreadable files and directories are logged,
// recorded in Result.Failures, and skipped. The only error returned is the
// context's, in which case no partial timeline is returned.
func (c *Collector) Collect(ctx context.Context) (Result, error) {
	result := Result{Timeline: timeline.Timeline{}}

	root := c.cfg.Root
	info, err := os.Stat(root)
	if err != nil {
		c.fail(&result, root, err)
		return result, nil
	}
	if !info.IsDir() {
		c.fail(&result, root, ErrNotDirectory)
		return result, nil
	}

	walkRoot := root
	if link, err := os.Lstat(root); err == nil && link.Mode()&fs.ModeSymlink != 0 {
		// WalkDir does not follow a symlinked root; the trailing separator
		// makes its Lstat resolve the link while paths keep the link prefix.
		walkRoot = root + string(filepath.Separator)
	}

	walkErr := filepath.WalkDir(walkRoot, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.fail(&result, path, err)
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		out := c.inspect(path, entry)
		switch out.kind {
		case outcomeRecord:
			result.Visited++
			result.Timeline = append(result.Timeline, out.record)
		case outcomeSkipped:
			result.Visited++
			result.Skipped++
		case outcomeFailed:
			result.Visited++
			c.fail(&result, out.failure.Path, out.failure.Err)
		}
		return nil
	})
	if walkErr != nil {
		return Result{}, walkErr
	}

	return result, nil
}

type outcomeKind int

const (
	outcomeRecord outcomeKind = iota
	outcomeSkipped
	outcomeFailed
	outcomeDirLink
)

type outcome struct {
	kind    outcomeKind
	record  timeline.Record
	failure Failure
}

// inspect decides the fate of a single non-directory entry.
func (c *Collector) inspect(path string, entry fs.DirEntry) outcome {
	if entry.Type()&fs.ModeSymlink != 0 {
		if target, err := os.Stat(path); err == nil && target.IsDir() {
			return outcome{kind: outcomeDirLink}
		}
	}

	if !c.cfg.MatchesType(entry.Name()) {
		return outcome{kind: outcomeSkipped}
	}

	times, err := c.stat.Stat(path)
	if err != nil {
		return outcome{kind: outcomeFailed, failure: Failure{Path: path, Err: err}}
	}

	if !c.cfg.InRange(times.Created) {
		return outcome{kind: outcomeSkipped}
	}

	return outcome{
		kind: outcomeRecord,
		record: timeline.Record{
			Path:     path,
			Created:  times.Created,
			Modified: times.Modified,
			Accessed: times.Accessed,
		},
	}
}

func (c *Collector) fail(result *Result, path string, err error) {
	log.Printf("skipping %s: %v", path, err)
	result.Failures = append(result.Failures, newFailure(path, err))
}
