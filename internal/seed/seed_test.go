package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureCreatesSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "test_data")

	created, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !created {
		t.Fatalf("expected directory to be created")
	}

	for _, sample := range Samples {
		data, err := os.ReadFile(filepath.Join(dir, sample.Name))
		if err != nil {
			t.Fatalf("read %s: %v", sample.Name, err)
		}
		if string(data) != sample.Content {
			t.Fatalf("%s = %q, want %q", sample.Name, data, sample.Content)
		}
	}
}

func TestEnsureLeavesExistingDirAlone(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(marker, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	created, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if created {
		t.Fatalf("existing directory must not be reseeded")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the marker file, got %d entries", len(entries))
	}
}
