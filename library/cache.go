package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"photomosaic/sample"
)

// DefaultCacheName is the cache file created inside the library folder.
const DefaultCacheName = "metadata.txt"

// ErrMalformedEntry is returned for cache lines that are not
// "red, green, blue, norm, locator".
var ErrMalformedEntry = errors.New("malformed cache entry")

// WriteEntries writes one "red, green, blue, norm, locator" line per valid
// sample, in the order given. Locators containing line breaks cannot be read
// back and are left out.
func WriteEntries(w io.Writer, samples []sample.Color) (int, error) {
	bw := bufio.NewWriter(w)
	var count int
	for _, s := range samples {
		if !s.Valid() {
			continue
		}
		if strings.ContainsAny(s.Locator, "\r\n") {
			slog.Error("not caching image with a line break in its path", "file", s.Locator)
			continue
		}
		if _, err := fmt.Fprintf(bw, "%d, %d, %d, %d, %s\n", s.R, s.G, s.B, s.Norm, s.Locator); err != nil {
			return count, fmt.Errorf("could not write entry %d: %w", count, err)
		}
		count++
	}

	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("could not flush entries: %w", err)
	}
	return count, nil
}

// ReadEntries parses the lines written by WriteEntries. Channels and norm are
// taken verbatim. Blank lines are skipped; any other line that does not parse
// fails the whole read.
func ReadEntries(r io.Reader) ([]sample.Color, error) {
	var res []sample.Color

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		s, err := parseEntry(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		res = append(res, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read entries: %w", err)
	}

	return res, nil
}

func parseEntry(text string) (sample.Color, error) {
	fields := strings.SplitN(text, ",", 5)
	if len(fields) != 5 {
		return sample.Color{}, fmt.Errorf("%w: %d fields: %q", ErrMalformedEntry, len(fields), text)
	}

	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(strings.TrimSpace(fields[i]), 10, 8)
		if err != nil {
			return sample.Color{}, fmt.Errorf("%w: channel %d: %w", ErrMalformedEntry, i, err)
		}
		channels[i] = uint8(v)
	}

	norm, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return sample.Color{}, fmt.Errorf("%w: norm: %w", ErrMalformedEntry, err)
	}

	locator := strings.TrimSpace(fields[4])
	if locator == "" {
		return sample.Color{}, fmt.Errorf("%w: empty locator", ErrMalformedEntry)
	}

	return sample.Color{
		R:       channels[0],
		G:       channels[1],
		B:       channels[2],
		Norm:    norm,
		Locator: locator,
	}, nil
}

func compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// WriteCache stores the valid samples into path, zstd compressed when path
// ends in ".zst". The file is replaced atomically.
func WriteCache(path string, samples []sample.Color) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	outFile, err := os.CreateTemp(dir, name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary cache %q: %w", name, err)
	}
	defer func() {
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary cache %q: %w", name, defErr)
		}
		if err == nil {
			if defErr := os.Rename(outFile.Name(), path); defErr != nil {
				err = fmt.Errorf("could not rename cache file %q: %w", name, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(outFile.Name())
		}
	}()

	var w io.Writer = outFile
	var enc *zstd.Encoder
	if compressed(path) {
		if enc, err = zstd.NewWriter(outFile); err != nil {
			return fmt.Errorf("could not start compressing cache %q: %w", name, err)
		}
		w = enc
	}

	count, err := WriteEntries(w, samples)
	if err != nil {
		if enc != nil {
			_ = enc.Close()
		}
		return fmt.Errorf("could not write cache %q: %w", name, err)
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return fmt.Errorf("could not finish compressing cache %q: %w", name, err)
		}
	}
	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush cache %q: %w", name, err)
	}

	slog.Info("cache written", "file", path, "entries", count)
	return nil
}

// ReadCache loads the samples stored by WriteCache.
func ReadCache(path string) ([]sample.Color, error) {
	inFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open cache %q: %w", path, err)
	}
	defer func() {
		if closeErr := inFile.Close(); closeErr != nil {
			slog.Error("could not close cache", "file", path, "error", closeErr)
		}
	}()

	var r io.Reader = inFile
	if compressed(path) {
		dec, err := zstd.NewReader(inFile)
		if err != nil {
			return nil, fmt.Errorf("could not start decompressing cache %q: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	samples, err := ReadEntries(r)
	if err != nil {
		return nil, fmt.Errorf("could not load cache %q: %w", path, err)
	}

	slog.Info("cache loaded", "file", path, "entries", len(samples))
	return samples, nil
}
