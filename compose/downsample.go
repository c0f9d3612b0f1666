package compose

import (
	"image"

	"photomosaic/parallel"
	"photomosaic/sample"
)

// buckets maps n source pixels onto parts output pixels. When there are at
// least as many source pixels as parts they are split with parallel.Split;
// otherwise every part picks the single source pixel under it.
func buckets(n, parts int) []parallel.Range {
	if n >= parts {
		return parallel.Split(n, parts)
	}

	ranges := make([]parallel.Range, parts)
	for i := range ranges {
		start := i * n / parts
		ranges[i] = parallel.Range{Start: start, End: start + 1}
	}
	return ranges
}

// Downsample average-pools src into a w×h grid. Each output pixel is the
// integer mean of its bucket of source pixels; output alpha is opaque.
func Downsample(src *image.NRGBA, w, h int) *image.NRGBA {
	b := src.Rect
	cols := buckets(b.Dx(), w)
	rows := buckets(b.Dy(), h)

	dest := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y, rr := range rows {
		for x, cr := range cols {
			mean := sample.Mean(src, image.Rect(
				b.Min.X+cr.Start, b.Min.Y+rr.Start,
				b.Min.X+cr.End, b.Min.Y+rr.End,
			))
			i := dest.PixOffset(x, y)
			dest.Pix[i+0] = mean.R
			dest.Pix[i+1] = mean.G
			dest.Pix[i+2] = mean.B
			dest.Pix[i+3] = 0xFF
		}
	}
	return dest
}

// fill returns a w×h opaque block of a single colour.
func fill(w, h int, r, g, b uint8) *image.NRGBA {
	dest := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(dest.Pix); i += 4 {
		dest.Pix[i+0] = r
		dest.Pix[i+1] = g
		dest.Pix[i+2] = b
		dest.Pix[i+3] = 0xFF
	}
	return dest
}

// paste copies block into dest with its origin at pt.
func paste(dest *image.NRGBA, block *image.NRGBA, pt image.Point) {
	w := block.Rect.Dx() * 4
	for y := 0; y < block.Rect.Dy(); y++ {
		src := block.Pix[block.PixOffset(block.Rect.Min.X, block.Rect.Min.Y+y):]
		dst := dest.Pix[dest.PixOffset(pt.X, pt.Y+y):]
		copy(dst[:w], src[:w])
	}
}
