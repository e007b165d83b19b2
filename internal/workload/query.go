// Package workload defines the supported query shapes, runs them
// against a crawler, and aggregates per-query statistics into summary
// tables (spec §4.10, C11). Grounded on
// original_source/lib/bbpdias/QueryGenerator.cpp and
// QualitativeComparison.cpp's "generate boxes, run each, tally stats"
// harness shape.
package workload

import "github.com/xDarkicex/touchgraph/internal/spatial"

// Kind identifies a query's shape.
type Kind int

const (
	// Range queries a single box; output is every enclosed point.
	Range Kind = iota
	// Point queries a single point; output is every point equal to it.
	Point
	// Moving is an ordered trajectory of boxes, executed as a
	// sequence of range queries.
	Moving
)

func (k Kind) String() string {
	switch k {
	case Range:
		return "range"
	case Point:
		return "point"
	case Moving:
		return "moving"
	default:
		return "unknown"
	}
}

// Query is one workload entry. Range and Point queries carry exactly
// one box (a Point query's box is the degenerate box around its
// coordinate); Moving queries carry an ordered trajectory.
type Query struct {
	Kind       Kind
	Boxes      []spatial.Box
	Annotation string // optional label, e.g. "dense-region-1"
}

// NewRange returns a single-box range query.
func NewRange(box spatial.Box) Query {
	return Query{Kind: Range, Boxes: []spatial.Box{box}}
}

// NewPoint returns a single-point query.
func NewPoint(p spatial.Vertex) Query {
	return Query{Kind: Point, Boxes: []spatial.Box{spatial.BoxFromPoint(p)}}
}

// NewMoving returns a trajectory query over an ordered list of boxes.
func NewMoving(boxes []spatial.Box) Query {
	return Query{Kind: Moving, Boxes: boxes}
}
