package compose

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"photomosaic/finder"
	"photomosaic/imageio"
	"photomosaic/library"
	"photomosaic/sample"
)

type memDecoder map[string]*image.NRGBA

func (m memDecoder) Decode(locator string) (*image.NRGBA, error) {
	img, ok := m[locator]
	if !ok {
		return nil, fmt.Errorf("%w %q: not found", imageio.ErrDecode, locator)
	}
	return img, nil
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return fill(w, h, c.R, c.G, c.B)
}

func mustComposer(t *testing.T, dec memDecoder, opts Options) *Composer {
	t.Helper()

	samples := make([]sample.Color, 0, len(dec))
	for loc := range dec {
		samples = append(samples, sample.Color{Locator: loc})
	}
	library.Reduce(dec, samples, 2)

	f, err := finder.New(library.NewIndex(samples), finder.DefaultRadius)
	if err != nil {
		t.Fatalf("finder.New: %v", err)
	}
	c, err := New(f, dec, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func assertSolid(t *testing.T, img *image.NRGBA, r image.Rectangle, want color.NRGBA) {
	t.Helper()

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if got := img.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d, %d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	grey  = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

func TestComposeSingleCandidate(t *testing.T) {
	t.Parallel()

	c := mustComposer(t, memDecoder{"blue.png": solid(2, 2, blue)}, Options{TileWidth: 2, TileHeight: 2})

	out, err := c.Compose(context.Background(), solid(4, 4, red))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if out.Rect != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds: got %v, want 4x4", out.Rect)
	}
	assertSolid(t, out, out.Rect, blue)

	if stats := c.Stats(); stats.Tiles != 4 || stats.Decodes != 1 || stats.Fallbacks != 0 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestComposeDropsPartialTiles(t *testing.T) {
	t.Parallel()

	c := mustComposer(t, memDecoder{"blue.png": solid(5, 5, blue)}, Options{TileWidth: 3, TileHeight: 2, Workers: 4})

	out, err := c.Compose(context.Background(), solid(10, 7, red))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if want := image.Rect(0, 0, 9, 6); out.Rect != want {
		t.Errorf("bounds: got %v, want %v", out.Rect, want)
	}
}

func TestComposePicksPerTile(t *testing.T) {
	t.Parallel()

	// Left half dark, right half bright.
	target := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			if x < 2 {
				target.SetNRGBA(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
			} else {
				target.SetNRGBA(x, y, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
			}
		}
	}

	dec := memDecoder{
		"black.png": solid(6, 6, color.NRGBA{A: 255}),
		"white.png": solid(6, 6, white),
	}
	for _, workers := range []int{1, 3} {
		c := mustComposer(t, dec, Options{TileWidth: 2, TileHeight: 2, Workers: workers})
		out, err := c.Compose(context.Background(), target)
		if err != nil {
			t.Fatalf("workers=%d: Compose: %v", workers, err)
		}
		assertSolid(t, out, image.Rect(0, 0, 2, 2), color.NRGBA{A: 255})
		assertSolid(t, out, image.Rect(2, 0, 4, 2), white)
	}
}

func TestComposeFillsUnreadableMatch(t *testing.T) {
	t.Parallel()

	dec := memDecoder{"blue.png": solid(2, 2, blue)}
	c := mustComposer(t, dec, Options{TileWidth: 2, TileHeight: 2, Fill: grey})

	// The library was built while the file could still be read.
	delete(dec, "blue.png")

	out, err := c.Compose(context.Background(), solid(4, 2, red))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	assertSolid(t, out, out.Rect, grey)

	if stats := c.Stats(); stats.Fallbacks != 2 || stats.Tiles != 2 {
		t.Errorf("stats: got %+v, want 2 tiles and 2 fallbacks", stats)
	}
}

func TestComposeEmptyLibrary(t *testing.T) {
	t.Parallel()

	f, err := finder.New(library.NewIndex(nil), finder.DefaultRadius)
	if err != nil {
		t.Fatalf("finder.New: %v", err)
	}
	c, err := New(f, memDecoder{}, Options{TileWidth: 2, TileHeight: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Compose(context.Background(), solid(4, 4, red)); !errors.Is(err, finder.ErrEmptyLibrary) {
		t.Errorf("Compose: got %v, want ErrEmptyLibrary", err)
	}
}

func TestComposeTargetTooSmall(t *testing.T) {
	t.Parallel()

	c := mustComposer(t, memDecoder{"blue.png": solid(2, 2, blue)}, Options{TileWidth: 8, TileHeight: 8})
	if _, err := c.Compose(context.Background(), solid(7, 20, red)); !errors.Is(err, ErrTargetTooSmall) {
		t.Errorf("Compose: got %v, want ErrTargetTooSmall", err)
	}
}

func TestComposeCancelled(t *testing.T) {
	t.Parallel()

	c := mustComposer(t, memDecoder{"blue.png": solid(2, 2, blue)}, Options{TileWidth: 1, TileHeight: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Compose(ctx, solid(4, 4, red)); !errors.Is(err, context.Canceled) {
		t.Errorf("Compose: got %v, want context.Canceled", err)
	}
}

func TestNewRejectsTileSize(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, memDecoder{}, Options{TileWidth: 0, TileHeight: 4}); err == nil {
		t.Errorf("New with zero tile width must fail")
	}
}

func TestFallbackBlockIsShared(t *testing.T) {
	t.Parallel()

	c := mustComposer(t, memDecoder{"blue.png": solid(2, 2, blue)}, Options{TileWidth: 2, TileHeight: 2, Fill: grey})

	first := c.block("gone.png")
	second := c.block("also-gone.png")
	if first != second {
		t.Errorf("fallback tiles must reuse one fill block")
	}
	assertSolid(t, first, first.Rect, grey)
	if stats := c.Stats(); stats.Fallbacks != 2 {
		t.Errorf("stats: got %+v, want 2 fallbacks", stats)
	}
}

func TestComposeTileRecordsMatch(t *testing.T) {
	t.Parallel()

	c := mustComposer(t, memDecoder{
		"blue.png":  solid(2, 2, blue),
		"white.png": solid(2, 2, white),
	}, Options{TileWidth: 2, TileHeight: 2})

	target := solid(2, 2, color.NRGBA{R: 10, G: 10, B: 250, A: 255})
	out := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	cell := tile{Bounds: image.Rect(0, 0, 2, 2)}
	if err := c.composeTile(target, out, &cell, image.Point{}); err != nil {
		t.Fatalf("composeTile: %v", err)
	}

	if want := sample.New(10, 10, 250, ""); cell.Average != want {
		t.Errorf("average: got %v, want %v", cell.Average, want)
	}
	if cell.Match.Locator != "blue.png" {
		t.Errorf("match: got %q, want %q", cell.Match.Locator, "blue.png")
	}
	assertSolid(t, out, out.Rect, blue)
}
