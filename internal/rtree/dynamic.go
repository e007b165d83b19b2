package rtree

import (
	"sort"

	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// Dynamic is an insertion-based R-tree: entries are added one at a
// time, splitting a node along its widest axis whenever it overflows
// maxEntries. Unlike STRTree it never needs the whole entry set up
// front, at the cost of a less tightly packed tree.
type Dynamic struct {
	root       *node
	maxEntries int
	count      int
}

// NewDynamic returns an empty Dynamic tree that splits nodes once they
// exceed maxEntries children/entries (DefaultLeafCapacity if <= 0).
func NewDynamic(maxEntries int) *Dynamic {
	if maxEntries <= 0 {
		maxEntries = DefaultLeafCapacity
	}
	return &Dynamic{
		maxEntries: maxEntries,
		root:       &node{mbr: spatial.EmptyBox()},
	}
}

func (d *Dynamic) Len() int { return d.count }

// Insert adds e, splitting nodes bottom-up as needed and growing the
// root when the split propagates all the way up.
func (d *Dynamic) Insert(e Entry) error {
	sibling := d.insert(d.root, e)
	if sibling != nil {
		d.root = &node{mbr: spatial.Union(d.root.mbr, sibling.mbr), children: []*node{d.root, sibling}}
	}
	d.count++
	return nil
}

func (d *Dynamic) insert(n *node, e Entry) *node {
	if n.isLeaf() {
		n.entries = append(n.entries, e)
		n.mbr = spatial.Union(n.mbr, e.MBR)
		if len(n.entries) <= d.maxEntries {
			return nil
		}
		return splitLeaf(n)
	}

	child := chooseSubtree(n.children, e.MBR)
	sibling := d.insert(child, e)
	n.mbr = spatial.Union(n.mbr, e.MBR)
	if sibling == nil {
		return nil
	}
	n.children = append(n.children, sibling)
	if len(n.children) <= d.maxEntries {
		return nil
	}
	return splitInternal(n)
}

func (d *Dynamic) Intersects(query spatial.Box, visit func(Entry) bool) error {
	walkIntersects(d.root, query, visit)
	return nil
}

// chooseSubtree picks the child needing the least MBR enlargement to
// cover mbr, breaking ties toward the smaller existing volume.
func chooseSubtree(children []*node, mbr spatial.Box) *node {
	best := children[0]
	bestEnlargement := enlargement(best.mbr, mbr)
	for _, c := range children[1:] {
		e := enlargement(c.mbr, mbr)
		if e < bestEnlargement || (e == bestEnlargement && c.mbr.Volume() < best.mbr.Volume()) {
			best, bestEnlargement = c, e
		}
	}
	return best
}

func enlargement(existing, added spatial.Box) float64 {
	return spatial.Union(existing, added).Volume() - existing.Volume()
}

func splitLeaf(n *node) *node {
	axis := widestAxis(n.mbr)
	sort.Slice(n.entries, func(i, j int) bool {
		return centroid(n.entries[i].MBR)[axis] < centroid(n.entries[j].MBR)[axis]
	})
	mid := len(n.entries) / 2
	right := &node{entries: append([]Entry{}, n.entries[mid:]...)}
	n.entries = n.entries[:mid]
	n.mbr = unionEntries(n.entries)
	right.mbr = unionEntries(right.entries)
	return right
}

func splitInternal(n *node) *node {
	axis := widestAxis(n.mbr)
	sort.Slice(n.children, func(i, j int) bool {
		return centroid(n.children[i].mbr)[axis] < centroid(n.children[j].mbr)[axis]
	})
	mid := len(n.children) / 2
	right := &node{children: append([]*node{}, n.children[mid:]...)}
	n.children = n.children[:mid]
	n.mbr = unionChildren(n.children)
	right.mbr = unionChildren(right.children)
	return right
}

func unionEntries(entries []Entry) spatial.Box {
	mbr := spatial.EmptyBox()
	for _, e := range entries {
		mbr = spatial.Union(mbr, e.MBR)
	}
	return mbr
}

func unionChildren(children []*node) spatial.Box {
	mbr := spatial.EmptyBox()
	for _, c := range children {
		mbr = spatial.Union(mbr, c.mbr)
	}
	return mbr
}
