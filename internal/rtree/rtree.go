// Package rtree is the seed index's spatial tree (spec §4.7, C8): two
// independent ways to build the same read-only structure — a bulk
// loader for the common "build once, query forever" path and an
// insertion-based tree for incremental construction — behind one
// shared Tree interface, so the seed index depends on the R-tree only
// abstractly. Grounded on original_source/lib/bbpdias/RtreeGenerator.cpp
// and TileSort.cpp's two build strategies (bulk sort-tile vs
// incremental insert), reimplemented in Go since the original wraps
// libspatialindex as an opaque C++ dependency the pack carries no Go
// equivalent of.
package rtree

import "github.com/xDarkicex/touchgraph/internal/spatial"

// Entry is one leaf entry: an MBR, the page id it describes, and an
// opaque serialized payload (the page's packer.Metadata blob).
type Entry struct {
	MBR     spatial.Box
	PageID  uint64
	Payload []byte
}

// Tree is the shared read interface both build strategies satisfy.
type Tree interface {
	// Intersects visits every leaf entry whose MBR intersects query,
	// in no particular order. visit returning false stops the walk
	// early (spec §4.7 "the visitor can decide to stop early").
	Intersects(query spatial.Box, visit func(Entry) bool) error
	Len() int
}

type node struct {
	mbr      spatial.Box
	children []*node
	entries  []Entry // non-nil only on leaves
}

func (n *node) isLeaf() bool { return n.children == nil }

func walkIntersects(root *node, query spatial.Box, visit func(Entry) bool) {
	if root == nil {
		return
	}
	stop := false
	var walk func(n *node)
	walk = func(n *node) {
		if stop || !spatial.Overlap(n.mbr, query) {
			return
		}
		if n.isLeaf() {
			for _, e := range n.entries {
				if stop {
					return
				}
				if spatial.Overlap(e.MBR, query) && !visit(e) {
					stop = true
					return
				}
			}
			return
		}
		for _, c := range n.children {
			if stop {
				return
			}
			walk(c)
		}
	}
	walk(root)
}

func centroid(b spatial.Box) spatial.Vertex {
	return spatial.Vertex{
		(b.Low[0] + b.High[0]) / 2,
		(b.Low[1] + b.High[1]) / 2,
		(b.Low[2] + b.High[2]) / 2,
	}
}

func widestAxis(b spatial.Box) int {
	best, bestSpread := 0, b.High[0]-b.Low[0]
	for i := 1; i < 3; i++ {
		if spread := b.High[i] - b.Low[i]; spread > bestSpread {
			best, bestSpread = i, spread
		}
	}
	return best
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
