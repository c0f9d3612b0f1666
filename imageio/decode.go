// Package imageio reads library and target images into NRGBA pixel grids and
// writes the finished mosaic.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// ErrDecode is wrapped by every error returned from a Decoder.
var ErrDecode = errors.New("could not decode image")

// Decoder turns a locator into pixels. Implementations must be safe for
// concurrent use and return the same pixels for the same locator.
type Decoder interface {
	Decode(locator string) (*image.NRGBA, error)
}

// FileDecoder decodes image files from disk.
type FileDecoder struct {
	// AutoOrient applies the EXIF orientation tag of JPEG files.
	AutoOrient bool
}

func (d FileDecoder) Decode(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(d.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDecode, path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w %q: empty image", ErrDecode, path)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA returns img as an NRGBA grid anchored at the origin, converting it
// when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return nrgba
	}

	dest := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dest, dest.Bounds(), img, b.Min, draw.Src)
	return dest
}

var extensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// Supported reports whether the file name carries the extension of a
// registered decoder.
func Supported(name string) bool {
	_, ok := slices.BinarySearch(extensions, strings.ToLower(filepath.Ext(name)))
	return ok
}
