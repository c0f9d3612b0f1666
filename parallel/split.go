package parallel

// Range is the half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Split divides [0, n) into parts contiguous ranges whose sizes differ by at
// most one. The first n%parts ranges carry the extra element. Fewer than one
// part is treated as one.
func Split(n, parts int) []Range {
	if parts < 1 {
		parts = 1
	}
	if n < 0 {
		n = 0
	}

	size, rest := n/parts, n%parts
	ranges := make([]Range, parts)
	for i := range parts {
		if i < rest {
			ranges[i] = Range{Start: i * (size + 1), End: (i + 1) * (size + 1)}
		} else {
			ranges[i] = Range{Start: i*size + rest, End: (i+1)*size + rest}
		}
	}
	return ranges
}
