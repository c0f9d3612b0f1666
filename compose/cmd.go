package compose

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/lucasb-eyer/go-colorful"

	"photomosaic/finder"
	"photomosaic/imageio"
	"photomosaic/library"
)

type CLICmd struct {
	library.Params

	Target     string      `arg:"" help:"Image to turn into a mosaic" type:"existingfile"`
	Output     string      `help:"Mosaic destination; the extension picks the format (bmp, png, jpeg, gif, tiff)" default:"MosaicImage.bmp"`
	TileWidth  int         `help:"Tile width in pixels" default:"20" group:"mosaic"`
	TileHeight int         `help:"Tile height in pixels" default:"20" group:"mosaic"`
	Radius     int         `help:"Number of library entries scanned on each side of the norm match" default:"200" group:"mosaic"`
	Fill       string      `help:"Colour of tiles whose image can no longer be read, as #RRGGBB" default:"#808080" group:"mosaic"`
	Rebuild    bool        `help:"Rescan the library even if its cache exists" default:"false"`
	FillColor  color.NRGBA `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := c.Params.Validate(); err != nil {
		return err
	}

	switch {
	case c.TileWidth < 1:
		return fmt.Errorf("invalid tile width: %d", c.TileWidth)
	case c.TileHeight < 1:
		return fmt.Errorf("invalid tile height: %d", c.TileHeight)
	case c.Radius < 1:
		return fmt.Errorf("invalid search radius: %d", c.Radius)
	}

	output, err := filepath.Abs(c.Output)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", c.Output, err)
	}
	if _, err := imageio.Format(output); err != nil {
		return err
	}
	c.Output = output

	fillColor, err := colorful.Hex(c.Fill)
	if err != nil {
		return fmt.Errorf("invalid fill colour %q: %w", c.Fill, err)
	}
	r, g, b := fillColor.RGB255()
	c.FillColor = color.NRGBA{R: r, G: g, B: b, A: 0xFF}

	return nil
}

func (c *CLICmd) Run(ctx context.Context) error {
	dec := c.Decoder()

	target, err := dec.Decode(c.Target)
	if err != nil {
		return fmt.Errorf("could not read target image: %w", err)
	}

	index, err := c.Load(dec, c.Rebuild)
	if err != nil {
		return err
	}

	match, err := finder.New(index, c.Radius)
	if err != nil {
		return err
	}

	composer, err := New(match, dec, Options{
		TileWidth:  c.TileWidth,
		TileHeight: c.TileHeight,
		Workers:    c.Workers,
		Fill:       c.FillColor,
	})
	if err != nil {
		return err
	}

	mosaic, err := composer.Compose(ctx, target)
	if err != nil {
		return err
	}

	if err := imageio.Save(mosaic, c.Output); err != nil {
		return err
	}
	slog.Info("mosaic written", "file", c.Output, "width", mosaic.Rect.Dx(), "height", mosaic.Rect.Dy())
	return nil
}
