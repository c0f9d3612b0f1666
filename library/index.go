package library

import (
	"cmp"
	"slices"

	"photomosaic/sample"
)

// Index is the read-only library: valid samples in ascending norm order.
type Index struct {
	samples []sample.Color
}

// NewIndex copies the valid samples and sorts them by norm. Samples sharing a
// norm keep their input order.
func NewIndex(samples []sample.Color) *Index {
	valid := make([]sample.Color, 0, len(samples))
	for _, s := range samples {
		if s.Valid() {
			valid = append(valid, s)
		}
	}

	slices.SortStableFunc(valid, func(a, b sample.Color) int {
		return cmp.Compare(a.Norm, b.Norm)
	})
	return &Index{samples: valid}
}

func (x *Index) Len() int {
	return len(x.samples)
}

func (x *Index) At(i int) sample.Color {
	return x.samples[i]
}

// Samples returns the sorted samples. The slice must not be modified.
func (x *Index) Samples() []sample.Color {
	return x.samples
}

// Locate returns a position whose norm is close to norm, or -1 for an empty
// index. The bisection keeps its lower bound strictly below norm and stops as
// soon as the bounds are adjacent, returning whichever of the two is closer,
// or as soon as it meets an equal norm. The result is not guaranteed to be the
// closest norm overall; callers refine around it.
func (x *Index) Locate(norm int) int {
	if len(x.samples) == 0 {
		return -1
	}

	left, right := 0, len(x.samples)-1
	for left != right {
		if x.samples[left].Norm >= norm {
			return left
		}
		if x.samples[right].Norm == norm {
			return right
		}

		mid := left + (right-left)/2
		if mid == left {
			return x.closer(left, right, norm)
		}

		switch m := x.samples[mid].Norm; {
		case m == norm:
			return mid
		case m < norm:
			left = mid
		default:
			right = mid
		}
	}
	return left
}

// closer prefers first on ties.
func (x *Index) closer(first, second, norm int) int {
	if absDiff(x.samples[first].Norm, norm) > absDiff(x.samples[second].Norm, norm) {
		return second
	}
	return first
}

func absDiff(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
