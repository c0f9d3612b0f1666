package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"photomosaic/imageio"
)

// Params locates a library and its cache.
type Params struct {
	Library    string `help:"Library folder to scan for candidate images" default:"."`
	Cache      string `help:"Library cache file. Relative to the library folder if not absolute. A .zst suffix compresses it." default:"metadata.txt"`
	Workers    int    `help:"Number of reducer workers" default:"10"`
	AutoOrient bool   `help:"Apply EXIF orientation when decoding" default:"false"`
}

// Validate normalises the library and cache paths.
func (p *Params) Validate() error {
	libDir, err := filepath.Abs(p.Library)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(libDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid library path %q: %w", p.Library, err)
	}
	p.Library = libDir

	if p.Cache == "" {
		p.Cache = DefaultCacheName
	}
	if !filepath.IsAbs(p.Cache) {
		p.Cache = filepath.Join(libDir, p.Cache)
	}

	if p.Workers < 1 {
		return fmt.Errorf("invalid number of workers: %d", p.Workers)
	}
	return nil
}

func (p *Params) Decoder() imageio.Decoder {
	return imageio.FileDecoder{AutoOrient: p.AutoOrient}
}

// Build scans the library folder, reduces every image, writes the cache and
// returns the sorted index.
func (p *Params) Build(dec imageio.Decoder) (*Index, error) {
	locators, err := Scan(p.Library, p.Cache)
	if err != nil {
		return nil, err
	}

	samples := Candidates(locators)
	Reduce(dec, samples, p.Workers)
	index := NewIndex(samples)

	if err := WriteCache(p.Cache, index.Samples()); err != nil {
		return nil, err
	}
	return index, nil
}

// Load reads the index from the cache when it exists and rebuild is false,
// and builds it otherwise.
func (p *Params) Load(dec imageio.Decoder, rebuild bool) (*Index, error) {
	if !rebuild {
		samples, err := ReadCache(p.Cache)
		switch {
		case err == nil:
			return NewIndex(samples), nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
		slog.Info("no cache, scanning library", "dir", p.Library)
	}
	return p.Build(dec)
}

// CLICmd builds the library cache without composing anything.
type CLICmd struct {
	Params
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	return c.Params.Validate()
}

func (c *CLICmd) Run() error {
	index, err := c.Build(c.Decoder())
	if err != nil {
		return err
	}
	if index.Len() == 0 {
		return fmt.Errorf("no usable image in library %q", c.Library)
	}
	return nil
}
