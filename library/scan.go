package library

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"photomosaic/imageio"
)

// Scan walks root recursively and returns the paths of every file with a
// supported image extension, in lexical walk order. Paths in skip are left
// out, and so are paths with line breaks since the cache cannot hold them.
// Unreadable subfolders are logged and skipped.
func Scan(root string, skip ...string) ([]string, error) {
	excluded := make(map[string]bool, len(skip))
	for _, p := range skip {
		if abs, err := filepath.Abs(p); err == nil {
			excluded[abs] = true
		}
	}

	var locators []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Error("could not read folder", "dir", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !imageio.Supported(path) {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid library path %q: %w", path, err)
		}
		switch {
		case excluded[abs]:
		case strings.ContainsAny(abs, "\r\n"):
			slog.Error("skipping image with a line break in its path", "file", abs)
		default:
			locators = append(locators, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan folder %q: %w", root, err)
	}

	slog.Info("scanned", "dir", root, "images", len(locators))
	return locators, nil
}
