package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"tracefile/internal/collector"
	"tracefile/internal/config"
	"tracefile/internal/report"
	"tracefile/internal/seed"
	"tracefile/internal/server"
	"tracefile/internal/storage"
	"tracefile/internal/storage/sqlite"
	"tracefile/internal/timeline"
)

// Archive persists the outcome of a run.
type Archive interface {
	SaveRun(ctx context.Context, run storage.Run, tl timeline.Timeline, failures []storage.Failure) error
	Close() error
}

// App ties together configuration, the collector, and the report outputs.
type App struct {
	cfg       config.Config
	collector *collector.Collector
	archive   Archive
	display   report.Display
	now       func() time.Time

	collectorOpts []collector.Option
}

// Option customizes an App.
type Option func(*App)

// WithDisplay overrides the chart display chosen from the configuration.
func WithDisplay(display report.Display) Option {
	return func(a *App) {
		a.display = display
	}
}

// WithArchive overrides the SQLite archive opened from the configuration.
func WithArchive(archive Archive) Option {
	return func(a *App) {
		a.archive = archive
	}
}

// WithCollectorOptions passes options through to the collector.
func WithCollectorOptions(opts ...collector.Option) Option {
	return func(a *App) {
		a.collectorOpts = append(a.collectorOpts, opts...)
	}
}

// New constructs an App using the provided configuration.
func New(cfg config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	a.collector = collector.New(cfg.Scan, a.collectorOpts...)

	if a.archive == nil && cfg.Database != "" {
		store, err := sqlite.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.archive = store
	}

	if a.display == nil && !cfg.NoChart {
		a.display = DisplayFor(cfg, os.Stdout)
	}

	return a, nil
}

// DisplayFor returns the chart display selected by cfg. Terminal charts are
// written to out.
func DisplayFor(cfg config.Config, out io.Writer) report.Display {
	if cfg.ServeAddr != "" {
		return server.Display{Addr: cfg.ServeAddr}
	}
	return report.TerminalDisplay{Out: out, Width: cfg.ChartWidth}
}

// Close releases the archive, if one was opened.
func (a *App) Close() error {
	if a.archive == nil {
		return nil
	}
	return a.archive.Close()
}

// Run collects the timeline once and hands it to every configured output.
// An output that fails is logged and reported in the returned error, but does
// not stop the outputs after it.
func (a *App) Run(ctx context.Context) error {
	scan := a.cfg.Scan
	log.Printf("scanning directory %s", scan.Root)

	started := a.now()
	result, err := a.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect metadata: %w", err)
	}
	finished := a.now()
	log.Printf("collected metadata for %d files (%d filtered, %d unreadable)",
		len(result.Timeline), result.Skipped, len(result.Failures))

	var errs []error

	if err := report.WriteCSV(result.Timeline, scan.Output); err != nil {
		log.Printf("failed to save timeline: %v", err)
		errs = append(errs, err)
	} else {
		log.Printf("timeline saved to %s", scan.Output)
	}

	if a.archive != nil {
		run := newRun(scan, started, finished)
		if err := a.archive.SaveRun(ctx, run, result.Timeline, storageFailures(result.Failures)); err != nil {
			log.Printf("failed to archive run: %v", err)
			errs = append(errs, fmt.Errorf("archive run: %w", err))
		} else {
			log.Printf("archived run %s", run.ID)
		}
	}

	if a.display != nil {
		shown, err := report.RenderTimeline(ctx, result.Timeline, a.display)
		switch {
		case err != nil:
			log.Printf("failed to display timeline: %v", err)
			errs = append(errs, fmt.Errorf("display timeline: %w", err))
		case !shown:
			log.Printf("no data to visualize, timeline is empty")
		}
	}

	created, err := seed.Ensure(a.cfg.TestDataDir)
	if err != nil {
		log.Printf("failed to seed sample data: %v", err)
		errs = append(errs, err)
	} else if created {
		log.Printf("created sample data in %s", a.cfg.TestDataDir)
	}

	return errors.Join(errs...)
}

func newRun(scan config.ScanConfig, started, finished time.Time) storage.Run {
	run := storage.Run{
		ID:         uuid.NewString(),
		Root:       scan.Root,
		Output:     scan.Output,
		FileTypes:  scan.FileTypes,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if scan.StartDate != nil {
		run.StartDate = *scan.StartDate
	}
	if scan.EndDate != nil {
		run.EndDate = *scan.EndDate
	}
	return run
}

func storageFailures(failures []collector.Failure) []storage.Failure {
	converted := make([]storage.Failure, 0, len(failures))
	for _, failure := range failures {
		converted = append(converted, storage.Failure{
			Path:    failure.Path,
			Kind:    string(failure.Kind),
			Message: failure.Err.Error(),
		})
	}
	return converted
}
