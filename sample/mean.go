package sample

import "image"

// Mean averages the channels of img over r with integer floor division.
// Alpha is ignored. An empty intersection yields black.
func Mean(img *image.NRGBA, r image.Rectangle) Color {
	r = r.Intersect(img.Rect)
	if r.Empty() {
		return New(0, 0, 0, "")
	}

	var rSum, gSum, bSum uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			rSum += uint64(img.Pix[i])
			gSum += uint64(img.Pix[i+1])
			bSum += uint64(img.Pix[i+2])
			i += 4
		}
	}

	n := uint64(r.Dx() * r.Dy())
	return New(uint8(rSum/n), uint8(gSum/n), uint8(bSum/n), "")
}
