// Package compose rebuilds a target image out of library images, one tile at
// a time.
package compose

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"photomosaic/imageio"
	"photomosaic/sample"
)

const (
	DefaultTileWidth  = 20
	DefaultTileHeight = 20
)

// ErrTargetTooSmall is returned when the target cannot hold a single tile.
var ErrTargetTooSmall = errors.New("target image is smaller than one tile")

// Matcher picks the library sample for a tile's mean colour.
type Matcher interface {
	Find(query sample.Color) (sample.Color, error)
}

type Options struct {
	TileWidth  int
	TileHeight int
	// Workers bounds the number of tile rows composed at once.
	Workers int
	// Fill paints tiles whose matched image can no longer be decoded.
	Fill color.NRGBA
}

// tile is one cell of the output grid.
type tile struct {
	Bounds  image.Rectangle
	Average sample.Color
	Match   sample.Color
}

type Stats struct {
	Tiles     int
	Fallbacks int
	Decodes   int
}

type Composer struct {
	matcher Matcher
	decoder imageio.Decoder
	opts    Options

	// fill is shared by every tile whose image could not be decoded.
	fill *image.NRGBA

	mu     sync.Mutex
	blocks map[string]*image.NRGBA

	tiles, fallbacks, decodes atomic.Int64
}

func New(matcher Matcher, decoder imageio.Decoder, opts Options) (*Composer, error) {
	if opts.TileWidth < 1 || opts.TileHeight < 1 {
		return nil, fmt.Errorf("invalid tile size: %dx%d", opts.TileWidth, opts.TileHeight)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	f := opts.Fill
	return &Composer{
		matcher: matcher,
		decoder: decoder,
		opts:    opts,
		fill:    fill(opts.TileWidth, opts.TileHeight, f.R, f.G, f.B),
		blocks:  make(map[string]*image.NRGBA),
	}, nil
}

// Compose returns the mosaic of target. Its size is the target's rounded
// down to whole tiles; the trailing partial row and column are dropped. Rows
// are composed concurrently and each tile writes only its own rectangle.
func (c *Composer) Compose(ctx context.Context, target *image.NRGBA) (*image.NRGBA, error) {
	tw, th := c.opts.TileWidth, c.opts.TileHeight
	b := target.Rect
	cols, rows := b.Dx()/tw, b.Dy()/th
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: %dx%d < %dx%d", ErrTargetTooSmall, b.Dx(), b.Dy(), tw, th)
	}

	slog.Info("composing", "columns", cols, "rows", rows, "tile_width", tw, "tile_height", th)
	out := image.NewNRGBA(image.Rect(0, 0, cols*tw, rows*th))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for j := range rows {
		g.Go(func() error {
			for i := range cols {
				if err := ctx.Err(); err != nil {
					return err
				}
				origin := image.Pt(i*tw, j*th)
				cell := tile{Bounds: image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tw, th))}.Add(b.Min)}
				if err := c.composeTile(target, out, &cell, origin); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := c.Stats()
	slog.Info("stats", "tiles", stats.Tiles, "fallbacks", stats.Fallbacks, "decodes", stats.Decodes)
	return out, nil
}

func (c *Composer) composeTile(target, out *image.NRGBA, cell *tile, origin image.Point) error {
	cell.Average = sample.Mean(target, cell.Bounds)

	match, err := c.matcher.Find(cell.Average)
	if err != nil {
		return fmt.Errorf("could not match tile at %v: %w", cell.Bounds.Min, err)
	}
	cell.Match = match
	slog.Debug("tile matched", "at", cell.Bounds.Min, "average", cell.Average,
		"match", cell.Match, "file", cell.Match.Locator)

	paste(out, c.block(cell.Match.Locator), origin)
	c.tiles.Add(1)
	return nil
}

// block returns the downsampled pixels of locator. Decoding is deterministic,
// so each locator is decoded at most once per composer, barring concurrent
// first requests.
func (c *Composer) block(locator string) *image.NRGBA {
	c.mu.Lock()
	blk, ok := c.blocks[locator]
	c.mu.Unlock()
	if !ok {
		blk = c.load(locator)
		c.mu.Lock()
		c.blocks[locator] = blk
		c.mu.Unlock()
	}

	if blk == nil {
		c.fallbacks.Add(1)
		return c.fill
	}
	return blk
}

func (c *Composer) load(locator string) *image.NRGBA {
	c.decodes.Add(1)
	img, err := c.decoder.Decode(locator)
	if err != nil {
		slog.Error("could not decode matched image, filling tile", "file", locator, "error", err)
		return nil
	}
	return Downsample(img, c.opts.TileWidth, c.opts.TileHeight)
}

func (c *Composer) Stats() Stats {
	return Stats{
		Tiles:     int(c.tiles.Load()),
		Fallbacks: int(c.fallbacks.Load()),
		Decodes:   int(c.decodes.Load()),
	}
}
