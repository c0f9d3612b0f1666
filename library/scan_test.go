package library

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "deep/er/c.webp", "deep/d.tiff", "skip.txt", "noext"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	cache := filepath.Join(dir, "cache.png")
	writeFile(t, cache, "x")

	got, err := Scan(dir, cache)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.JPG"),
		filepath.Join(dir, "deep/d.tiff"),
		filepath.Join(dir, "deep/er/c.webp"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("Scan:\n got %q\nwant %q", got, want)
	}
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Errorf("Scan of a missing folder must fail")
	}
}
