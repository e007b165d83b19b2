package spatial

import "math/rand"

// Box is an axis-aligned bounding box, low/high inclusive per dimension.
// A Box with Low > High in any dimension is empty. The zero value is
// the degenerate box at the origin, not an empty box; use EmptyBox to
// construct an empty one.
type Box struct {
	Low  Vertex
	High Vertex
}

// EmptyBox returns a box that contains no points and unions to the
// identity element: Union(EmptyBox(), b) == b.
func EmptyBox() Box {
	var b Box
	for i := 0; i < Dims; i++ {
		b.Low[i] = float32(maxFloat)
		b.High[i] = float32(-maxFloat)
	}
	return b
}

const maxFloat = 3.402823e+38 // just below math.MaxFloat32

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	for i := 0; i < Dims; i++ {
		if b.Low[i] > b.High[i] {
			return true
		}
	}
	return false
}

// BoxFromPoint returns the degenerate box containing exactly p.
func BoxFromPoint(p Vertex) Box {
	return Box{Low: p, High: p}
}

// ExpandPoint grows b (in place semantics via return) to also contain p.
func (b Box) ExpandPoint(p Vertex) Box {
	if b.IsEmpty() {
		return BoxFromPoint(p)
	}
	for i := 0; i < Dims; i++ {
		if p[i] < b.Low[i] {
			b.Low[i] = p[i]
		}
		if p[i] > b.High[i] {
			b.High[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box containing both a and b.
func Union(a, b Box) Box {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	var r Box
	for i := 0; i < Dims; i++ {
		r.Low[i] = minF(a.Low[i], b.Low[i])
		r.High[i] = maxF(a.High[i], b.High[i])
	}
	return r
}

// BoundingBoxOf returns the minimal box enclosing all the given points.
// Returns EmptyBox() for an empty slice.
func BoundingBoxOf(points []Vertex) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.ExpandPoint(p)
	}
	return b
}

// Overlap reports whether a and b share at least one point.
func Overlap(a, b Box) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	for i := 0; i < Dims; i++ {
		if a.High[i] < b.Low[i] || b.High[i] < a.Low[i] {
			return false
		}
	}
	return true
}

// Contains reports whether outer fully contains inner.
func Contains(outer, inner Box) bool {
	if inner.IsEmpty() {
		return true
	}
	if outer.IsEmpty() {
		return false
	}
	for i := 0; i < Dims; i++ {
		if inner.Low[i] < outer.Low[i] || inner.High[i] > outer.High[i] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether b contains p (inclusive on both ends).
func ContainsPoint(b Box, p Vertex) bool {
	if b.IsEmpty() {
		return false
	}
	for i := 0; i < Dims; i++ {
		if p[i] < b.Low[i] || p[i] > b.High[i] {
			return false
		}
	}
	return true
}

// Volume returns the box's volume. Zero for an empty or degenerate box.
func (b Box) Volume() float64 {
	if b.IsEmpty() {
		return 0
	}
	v := 1.0
	for i := 0; i < Dims; i++ {
		v *= float64(b.High[i]) - float64(b.Low[i])
	}
	return v
}

// RandomBox returns a random box inside world with approximately the
// given target volume, used only by the workload generator (spec
// §4.1 "random box generation"). r must be non-nil.
func RandomBox(world Box, targetVolume float64, r *rand.Rand) Box {
	if targetVolume <= 0 {
		return BoxFromPoint(world.Low)
	}
	side := cubeRoot(targetVolume)
	var low, high Vertex
	for i := 0; i < Dims; i++ {
		span := float64(world.High[i]) - float64(world.Low[i])
		s := side
		if s > span {
			s = span
		}
		maxLow := float64(world.High[i]) - s
		minLow := float64(world.Low[i])
		l := minLow
		if maxLow > minLow {
			l = minLow + r.Float64()*(maxLow-minLow)
		}
		low[i] = float32(l)
		high[i] = float32(l + s)
	}
	return Box{Low: low, High: high}
}

func cubeRoot(v float64) float64 {
	if v <= 0 {
		return 0
	}
	// Newton's method; three dimensions only, a handful of iterations
	// converges well past float32 precision.
	x := v
	for i := 0; i < 32; i++ {
		x = x - (x*x*x-v)/(3*x*x)
	}
	return x
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
