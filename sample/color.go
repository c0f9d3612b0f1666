// Package sample holds the representative colour of a library image and the
// integer colour arithmetic the rest of the pipeline is built on.
package sample

import "fmt"

// InvalidNorm marks a Color whose source image could not be decoded.
const InvalidNorm = -100

// Color is the representative colour of one image. Norm is the sum of squares
// of the channels and is the sort key of the library; it is only kept in sync
// by Set, so code assigning R, G or B directly must call Set instead.
type Color struct {
	R, G, B uint8
	Norm    int
	Locator string
}

// New returns a Color for the given channels with its norm computed.
func New(r, g, b uint8, locator string) Color {
	c := Color{Locator: locator}
	c.Set(r, g, b)
	return c
}

// NormOf is r² + g² + b². The largest value, 3·255², fits in an int32.
func NormOf(r, g, b uint8) int {
	ri, gi, bi := int(r), int(g), int(b)
	return ri*ri + gi*gi + bi*bi
}

// Set replaces the channels and recomputes the norm.
func (c *Color) Set(r, g, b uint8) {
	c.R, c.G, c.B = r, g, b
	c.Norm = NormOf(r, g, b)
}

// Invalidate marks the colour as coming from an undecodable image.
func (c *Color) Invalidate() {
	c.R, c.G, c.B = 0, 0, 0
	c.Norm = InvalidNorm
}

// Valid reports whether the colour was computed from a decodable image.
func (c Color) Valid() bool {
	return c.Norm >= 0
}

// SameColor compares the channels only; locators and norms are ignored.
func (c Color) SameColor(o Color) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)/%d", c.R, c.G, c.B, c.Norm)
}

// Distance is the squared euclidean distance between the two colours.
func Distance(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
