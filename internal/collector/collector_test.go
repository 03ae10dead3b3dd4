package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tracefile/internal/config"
	"tracefile/internal/timeline"
)

// fakeStat serves timestamps keyed by file base name.
type fakeStat struct {
	times map[string]Times
	errs  map[string]error
}

func (f fakeStat) Stat(path string) (Times, error) {
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return Times{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	if ts, ok := f.times[name]; ok {
		return ts, nil
	}
	return Times{}, fmt.Errorf("no fake times for %s", name)
}

func sameTimes(ts time.Time) Times {
	return Times{Created: ts, Modified: ts, Accessed: ts}
}

func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func mustScanConfig(t *testing.T, root, start, end string, types ...string) config.ScanConfig {
	t.Helper()
	cfg, err := config.NewScanConfig(root, filepath.Join(t.TempDir(), "out.csv"), start, end, types)
	if err != nil {
		t.Fatalf("NewScanConfig: %v", err)
	}
	return cfg
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.Local)
}

func TestCollectFiltersByTypeAndCreationDate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "b.log", "c.txt")

	stat := fakeStat{times: map[string]Times{
		"a.txt": sameTimes(day(5)),
		"b.log": sameTimes(day(10)),
		"c.txt": sameTimes(day(9)),
	}}
	cfg := mustScanConfig(t, root, "2024-01-01", "2024-01-08", ".txt")

	result, err := New(cfg, WithStatReader(stat)).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := timeline.Timeline{{
		Path:     filepath.Join(root, "a.txt"),
		Created:  day(5),
		Modified: day(5),
		Accessed: day(5),
	}}
	if diff := cmp.Diff(want, result.Timeline); diff != "" {
		t.Fatalf("timeline mismatch (-want +got):\n%s", diff)
	}
	if result.Visited != 3 || result.Skipped != 2 {
		t.Fatalf("visited=%d skipped=%d, want 3 and 2", result.Visited, result.Skipped)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failures)
	}
}

func TestCollectDateBoundsAreInclusive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "at_start", "at_end", "before", "after")

	start := day(1)
	end := day(8)
	stat := fakeStat{times: map[string]Times{
		"at_start": sameTimes(start),
		"at_end":   sameTimes(end),
		"before":   sameTimes(start.Add(-time.Nanosecond)),
		"after":    sameTimes(end.Add(time.Nanosecond)),
	}}
	cfg := mustScanConfig(t, root, "2024-01-01", "2024-01-08")

	result, err := New(cfg, WithStatReader(stat)).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{filepath.Join(root, "at_end"), filepath.Join(root, "at_start")}
	if diff := cmp.Diff(want, result.Timeline.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFiltersOnCreatedOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "old.txt")

	stat := fakeStat{times: map[string]Times{
		"old.txt": {Created: day(5), Modified: day(20), Accessed: day(25)},
	}}
	cfg := mustScanConfig(t, root, "2024-01-01", "2024-01-08")

	result, err := New(cfg, WithStatReader(stat)).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(result.Timeline) != 1 {
		t.Fatalf("expected modified/accessed outside the range to be ignored, got %d records", len(result.Timeline))
	}
}

func TestCollectSkipsUnreadableFileAndLogs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "locked.txt", "z.txt")
	logs := captureLog(t)

	stat := fakeStat{
		times: map[string]Times{
			"a.txt": sameTimes(day(2)),
			"z.txt": sameTimes(day(3)),
		},
		errs: map[string]error{"locked.txt": syscall.EACCES},
	}
	cfg := mustScanConfig(t, root, "", "")

	result, err := New(cfg, WithStatReader(stat)).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{filepath.Join(root, "a.txt"), filepath.Join(root, "z.txt")}
	if diff := cmp.Diff(want, result.Timeline.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	if len(result.Failures) != 1 {
		t.Fatalf("expected one failure, got %v", result.Failures)
	}
	failure := result.Failures[0]
	if failure.Kind != FailurePermission {
		t.Fatalf("failure kind = %q, want %q", failure.Kind, FailurePermission)
	}
	if !errors.Is(failure, fs.ErrPermission) {
		t.Fatalf("failure should unwrap to fs.ErrPermission: %v", failure)
	}

	locked := filepath.Join(root, "locked.txt")
	if !strings.Contains(logs.String(), locked) {
		t.Fatalf("expected log to reference %s, got %q", locked, logs.String())
	}
}

func TestCollectEmptyTree(t *testing.T) {
	root := t.TempDir()
	cfg := mustScanConfig(t, root, "", "")

	result, err := New(cfg).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if result.Timeline == nil || len(result.Timeline) != 0 {
		t.Fatalf("expected empty non-nil timeline, got %#v", result.Timeline)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failures)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	captureLog(t)
	root := filepath.Join(t.TempDir(), "missing")
	cfg := mustScanConfig(t, root, "", "")

	result, err := New(cfg).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(result.Timeline) != 0 {
		t.Fatalf("expected empty timeline, got %v", result.Timeline)
	}
	if len(result.Failures) != 1 || result.Failures[0].Kind != FailureNotExist {
		t.Fatalf("expected one not-exist failure, got %v", result.Failures)
	}
}

func TestCollectRootIsFile(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	writeTree(t, dir, "single.txt")
	cfg := mustScanConfig(t, filepath.Join(dir, "single.txt"), "", "")

	result, err := New(cfg).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(result.Timeline) != 0 {
		t.Fatalf("expected empty timeline, got %v", result.Timeline)
	}
	if len(result.Failures) != 1 || !errors.Is(result.Failures[0], ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory failure, got %v", result.Failures)
	}
}

func TestCollectWalkOrderAndNesting(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "z.txt", "sub/deeper/c.txt", "sub/b.txt", "a.txt")

	stat := fakeStat{times: map[string]Times{
		"a.txt": sameTimes(day(4)),
		"b.txt": sameTimes(day(1)),
		"c.txt": sameTimes(day(3)),
		"z.txt": sameTimes(day(2)),
	}}
	cfg := mustScanConfig(t, root, "", "")

	result, err := New(cfg, WithStatReader(stat)).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.txt"),
		filepath.Join(root, "sub", "deeper", "c.txt"),
		filepath.Join(root, "z.txt"),
	}
	if diff := cmp.Diff(want, result.Timeline.Paths()); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectSkipsDirectorySymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, root, "a.txt")
	writeTree(t, outside, "hidden.txt")
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	cfg := mustScanConfig(t, root, "", "")
	result, err := New(cfg).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{filepath.Join(root, "a.txt")}
	if diff := cmp.Diff(want, result.Timeline.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFollowsSymlinkedRoot(t *testing.T) {
	logs := captureLog(t)
	target := t.TempDir()
	writeTree(t, target, "a.txt", "sub/b.txt")
	link := filepath.Join(t.TempDir(), "evidence")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	cfg := mustScanConfig(t, link, "", "")
	result, err := New(cfg).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{filepath.Join(link, "a.txt"), filepath.Join(link, "sub", "b.txt")}
	if diff := cmp.Diff(want, result.Timeline.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if len(result.Failures) != 0 || logs.Len() != 0 {
		t.Fatalf("unexpected failures %v, log %q", result.Failures, logs.String())
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "b.log", "nested/c.md")
	cfg := mustScanConfig(t, root, "", "")
	c := New(cfg)

	first, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	second, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("second Collect: %v", err)
	}

	if len(first.Timeline) != 3 {
		t.Fatalf("expected 3 records, got %d", len(first.Timeline))
	}
	if diff := cmp.Diff(first.Timeline, second.Timeline); diff != "" {
		t.Fatalf("timelines differ between runs (-first +second):\n%s", diff)
	}
}

func TestCollectHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt")
	cfg := mustScanConfig(t, root, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(cfg).Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHostStatReportsModAndAccessTimes(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "f.txt")
	path := filepath.Join(dir, "f.txt")

	accessed := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	modified := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, accessed, modified); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	times, err := HostStat{}.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !times.Modified.Equal(modified) {
		t.Fatalf("Modified = %v, want %v", times.Modified, modified)
	}
	if !times.Accessed.Equal(accessed) {
		t.Fatalf("Accessed = %v, want %v", times.Accessed, accessed)
	}
	if times.Created.IsZero() {
		t.Fatalf("Created should be set")
	}
}

func TestHostStatMissingFile(t *testing.T) {
	_, err := HostStat{}.Stat(filepath.Join(t.TempDir(), "gone"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
