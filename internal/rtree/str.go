package rtree

import (
	"math"
	"sort"

	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// DefaultLeafCapacity bounds how many entries a leaf holds (also used
// as internal-node fanout) when no capacity is given.
const DefaultLeafCapacity = 32

// STRTree is built once via BulkLoad from a complete stream of
// entries and never mutated afterward (spec §4.7 "bulk-load
// constructor from a stream of (mbr, serialized_metadata, page_id)
// records").
type STRTree struct {
	root  *node
	count int
}

// BulkLoad builds a balanced R-tree over entries using the
// sort-tile-recursive algorithm generalized to three dimensions:
// entries are sliced into slabs along X, each slab into sub-slabs
// along Y, each sub-slab into leaves along Z, then internal levels
// are built bottom-up by grouping leafCap siblings at a time.
func BulkLoad(entries []Entry, leafCap int) *STRTree {
	if leafCap <= 0 {
		leafCap = DefaultLeafCapacity
	}
	if len(entries) == 0 {
		return &STRTree{}
	}

	ordered := make([]Entry, len(entries))
	copy(ordered, entries)

	leaves := strLeaves(ordered, leafCap)
	nodes := make([]*node, len(leaves))
	for i, leaf := range leaves {
		nodes[i] = leafNode(leaf)
	}
	for len(nodes) > 1 {
		nodes = buildLevel(nodes, leafCap)
	}
	return &STRTree{root: nodes[0], count: len(entries)}
}

func (t *STRTree) Intersects(query spatial.Box, visit func(Entry) bool) error {
	walkIntersects(t.root, query, visit)
	return nil
}

func (t *STRTree) Len() int { return t.count }

// strLeaves partitions entries into leaf-sized groups via the STR
// tiling: ceil(numLeaves^(1/3)) slabs per axis, sorted successively by
// X, then Y, then Z centroid within each slab.
func strLeaves(entries []Entry, leafCap int) [][]Entry {
	n := len(entries)
	numLeaves := ceilDiv(n, leafCap)
	s := int(math.Ceil(math.Cbrt(float64(numLeaves))))
	if s < 1 {
		s = 1
	}

	sortByAxis(entries, 0)
	var leaves [][]Entry
	xSlab := ceilDiv(n, s)
	for i := 0; i < n; i += xSlab {
		end := i + xSlab
		if end > n {
			end = n
		}
		slabX := entries[i:end]
		sortByAxis(slabX, 1)

		ySlab := ceilDiv(len(slabX), s)
		for j := 0; j < len(slabX); j += ySlab {
			yEnd := j + ySlab
			if yEnd > len(slabX) {
				yEnd = len(slabX)
			}
			slabY := slabX[j:yEnd]
			sortByAxis(slabY, 2)

			for k := 0; k < len(slabY); k += leafCap {
				kEnd := k + leafCap
				if kEnd > len(slabY) {
					kEnd = len(slabY)
				}
				leaf := make([]Entry, kEnd-k)
				copy(leaf, slabY[k:kEnd])
				leaves = append(leaves, leaf)
			}
		}
	}
	return leaves
}

func sortByAxis(entries []Entry, axis int) {
	sort.Slice(entries, func(i, j int) bool {
		return centroid(entries[i].MBR)[axis] < centroid(entries[j].MBR)[axis]
	})
}

func leafNode(entries []Entry) *node {
	mbr := spatial.EmptyBox()
	for _, e := range entries {
		mbr = spatial.Union(mbr, e.MBR)
	}
	return &node{mbr: mbr, entries: entries}
}

func buildLevel(nodes []*node, fanout int) []*node {
	parents := make([]*node, 0, ceilDiv(len(nodes), fanout))
	for i := 0; i < len(nodes); i += fanout {
		end := i + fanout
		if end > len(nodes) {
			end = len(nodes)
		}
		group := append([]*node{}, nodes[i:end]...)
		mbr := spatial.EmptyBox()
		for _, c := range group {
			mbr = spatial.Union(mbr, c.mbr)
		}
		parents = append(parents, &node{mbr: mbr, children: group})
	}
	return parents
}
