// Package spatial provides the fixed-dimension-3 geometric primitives
// shared by every other component: vertices, axis-aligned boxes, and
// tetrahedron circumcenters.
package spatial

import "math"

// Dims is the fixed dimensionality of the data model. The spec is not
// generalized beyond 3D.
const Dims = 3

// Vertex is a point in 3-space.
type Vertex [Dims]float32

// Sub returns a-b.
func (a Vertex) Sub(b Vertex) Vertex {
	var r Vertex
	for i := 0; i < Dims; i++ {
		r[i] = a[i] - b[i]
	}
	return r
}

// Add returns a+b.
func (a Vertex) Add(b Vertex) Vertex {
	var r Vertex
	for i := 0; i < Dims; i++ {
		r[i] = a[i] + b[i]
	}
	return r
}

// Scale returns a*s.
func (a Vertex) Scale(s float32) Vertex {
	var r Vertex
	for i := 0; i < Dims; i++ {
		r[i] = a[i] * s
	}
	return r
}

// Dot returns the dot product of a and b.
func (a Vertex) Dot(b Vertex) float32 {
	var sum float32
	for i := 0; i < Dims; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// DistSquared returns the squared Euclidean distance between a and b.
func (a Vertex) DistSquared(b Vertex) float64 {
	var sum float64
	for i := 0; i < Dims; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Dist returns the Euclidean distance between a and b.
func (a Vertex) Dist(b Vertex) float64 {
	return math.Sqrt(a.DistSquared(b))
}
