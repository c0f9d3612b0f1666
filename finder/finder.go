// Package finder matches a colour against the library.
//
// A lookup first bisects the norm-sorted index to an anchor whose norm is
// close to the query's, then scans up to Radius positions on each side of the
// anchor and keeps the sample with the smallest squared colour distance. Norm
// and distance are correlated but not equivalent, so the result is only
// guaranteed to be the true nearest colour when the window covers the whole
// index.
package finder

import (
	"errors"
	"fmt"

	"photomosaic/library"
	"photomosaic/sample"
)

// DefaultRadius is the scan half-width used when none is given.
const DefaultRadius = 200

var ErrEmptyLibrary = errors.New("library has no usable image")

type Finder struct {
	index  *library.Index
	radius int
}

func New(index *library.Index, radius int) (*Finder, error) {
	if radius < 1 {
		return nil, fmt.Errorf("invalid search radius: %d", radius)
	}
	return &Finder{index: index, radius: radius}, nil
}

func (f *Finder) Radius() int {
	return f.radius
}

// Find returns the library sample closest to query within the scan window.
// The anchor seeds the result; the left side is scanned before the right one
// and a candidate only replaces the current best when strictly closer, so the
// earliest of equally distant samples wins.
func (f *Finder) Find(query sample.Color) (sample.Color, error) {
	anchor := f.index.Locate(query.Norm)
	if anchor < 0 {
		return sample.Color{}, ErrEmptyLibrary
	}

	best := f.index.At(anchor)
	bestDist := sample.Distance(best, query)

	visit := func(i int) {
		c := f.index.At(i)
		if d := sample.Distance(c, query); d < bestDist {
			best, bestDist = c, d
		}
	}

	for i, n := anchor, f.radius; i >= 0 && n > 0; i, n = i-1, n-1 {
		visit(i)
	}
	for i, n := anchor, f.radius; i < f.index.Len() && n > 0; i, n = i+1, n-1 {
		visit(i)
	}

	return best, nil
}
