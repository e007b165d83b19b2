// Package idmap implements the vertex-id -> page-id map (spec §4.6,
// C5): a persistent external B+-tree keyed on a 32-bit vertex id,
// storing 64-bit page ids as values. Grounded on
// l4zy9uy-vqlite/table/btree.go and btree_node.go's page-offset
// header layout and split-on-overflow discipline (adapted here from
// SQL rows to fixed uint32->uint64 entries), with a persisted header
// page following sirgallo-mari/Meta.go's pattern so reopening the
// tree needs no replay.
package idmap

import (
	"fmt"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/page"
)

// Pair is one (vertex id, page id) entry returned by RangeQuery.
type Pair struct {
	VertexID uint32
	PageID   uint64
}

// Tree is a single-threaded, on-disk B+-tree (spec §4.6 "Concurrency:
// single-threaded").
type Tree struct {
	pf              *page.File
	header          header
	maxLeafKeys     int
	maxInternalKeys int
}

// Create initializes a new, empty id-map at path.
func Create(path string, pageSize int) (*Tree, error) {
	maxLeaf, maxInternal := capacities(pageSize)
	if maxLeaf < 3 || maxInternal < 3 {
		return nil, fmt.Errorf("idmap: page size %d too small for any useful node capacity", pageSize)
	}

	pf, err := page.Create(path, pageSize)
	if err != nil {
		return nil, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}

	// Page 0: header (reserved, written below). Page 1: empty leaf root.
	if _, err := pf.Append(make([]byte, pageSize)); err != nil {
		return nil, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	root := node{isLeaf: true, next: noChild}
	rootID, err := pf.Append(encodeNode(root, pageSize))
	if err != nil {
		return nil, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}

	t := &Tree{
		pf:              pf,
		header:          header{root: rootID, height: 1, count: 0, pageSize: uint32(pageSize)},
		maxLeafKeys:     maxLeaf,
		maxInternalKeys: maxInternal,
	}
	if err := t.writeHeader(); err != nil {
		return nil, err
	}
	return t, nil
}

// Open reopens an existing id-map, reconstructing its shape from the
// persisted header page.
func Open(path string, pageSize int) (*Tree, error) {
	pf, err := page.Open(path, pageSize)
	if err != nil {
		return nil, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	buf, err := pf.ReadPage(0)
	if err != nil {
		return nil, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	h := decodeHeader(buf)
	if int(h.pageSize) != pageSize {
		return nil, fmt.Errorf("idmap: %w: header page size %d does not match %d", errs.ErrCorruption, h.pageSize, pageSize)
	}
	maxLeaf, maxInternal := capacities(pageSize)
	return &Tree{pf: pf, header: h, maxLeafKeys: maxLeaf, maxInternalKeys: maxInternal}, nil
}

func (t *Tree) writeHeader() error {
	if err := t.pf.WritePage(0, encodeHeader(t.header, int(t.pf.PageSize()))); err != nil {
		return fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	return nil
}

// Count returns the number of keys currently stored.
func (t *Tree) Count() uint64 { return t.header.count }

func (t *Tree) readNode(id uint64) (node, error) {
	buf, err := t.pf.ReadPage(id)
	if err != nil {
		return node{}, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	return decodeNode(buf), nil
}

func (t *Tree) writeNode(id uint64, n node) error {
	if err := t.pf.WritePage(id, encodeNode(n, int(t.pf.PageSize()))); err != nil {
		return fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	return nil
}

func (t *Tree) allocNode(n node) (uint64, error) {
	id, err := t.pf.Append(encodeNode(n, int(t.pf.PageSize())))
	if err != nil {
		return 0, fmt.Errorf("idmap: %w: %v", errs.ErrIO, err)
	}
	return id, nil
}

// Insert adds vertexID -> pageID. Inserting a key that already exists
// is a fatal inconsistency (spec §4.6).
func (t *Tree) Insert(vertexID uint32, pageID uint64) error {
	promoted, newID, split, err := t.insert(t.header.root, vertexID, pageID)
	if err != nil {
		return err
	}
	if split {
		newRoot := node{isLeaf: false, keys: []uint32{promoted}, values: []uint64{t.header.root, newID}}
		newRootID, err := t.allocNode(newRoot)
		if err != nil {
			return err
		}
		t.header.root = newRootID
		t.header.height++
	}
	t.header.count++
	return t.writeHeader()
}

func (t *Tree) insert(nodeID uint64, key uint32, val uint64) (promoted uint32, newID uint64, split bool, err error) {
	n, err := t.readNode(nodeID)
	if err != nil {
		return 0, 0, false, err
	}

	if n.isLeaf {
		idx := n.leafIndexForKey(key)
		if idx < len(n.keys) && n.keys[idx] == key {
			return 0, 0, false, fmt.Errorf("idmap: %w: vertex id %d already present in id-map", errs.ErrCorruption, key)
		}
		n.keys = insertU32(n.keys, idx, key)
		n.values = insertU64(n.values, idx, val)

		if len(n.keys) <= t.maxLeafKeys {
			return 0, 0, false, t.writeNode(nodeID, n)
		}

		mid := len(n.keys) / 2
		right := node{isLeaf: true, keys: append([]uint32{}, n.keys[mid:]...), values: append([]uint64{}, n.values[mid:]...), next: n.next}
		left := node{isLeaf: true, keys: append([]uint32{}, n.keys[:mid]...), values: append([]uint64{}, n.values[:mid]...)}

		rightID, err := t.allocNode(right)
		if err != nil {
			return 0, 0, false, err
		}
		left.next = rightID
		if err := t.writeNode(nodeID, left); err != nil {
			return 0, 0, false, err
		}
		return right.keys[0], rightID, true, nil
	}

	childIdx := n.childForKey(key)
	childID := n.values[childIdx]
	childPromoted, childNewID, childSplit, err := t.insert(childID, key, val)
	if err != nil {
		return 0, 0, false, err
	}
	if !childSplit {
		return 0, 0, false, nil
	}

	n.keys = insertU32(n.keys, childIdx, childPromoted)
	n.values = insertU64(n.values, childIdx+1, childNewID)

	if len(n.keys) <= t.maxInternalKeys {
		return 0, 0, false, t.writeNode(nodeID, n)
	}

	mid := len(n.keys) / 2
	promotedKey := n.keys[mid]
	right := node{isLeaf: false, keys: append([]uint32{}, n.keys[mid+1:]...), values: append([]uint64{}, n.values[mid+1:]...)}
	left := node{isLeaf: false, keys: append([]uint32{}, n.keys[:mid]...), values: append([]uint64{}, n.values[:mid+1]...)}

	rightID, err := t.allocNode(right)
	if err != nil {
		return 0, 0, false, err
	}
	if err := t.writeNode(nodeID, left); err != nil {
		return 0, 0, false, err
	}
	return promotedKey, rightID, true, nil
}

// PointQuery returns the unique page id for vertexID, or a wrapped
// errs.ErrNotFound if absent.
func (t *Tree) PointQuery(vertexID uint32) (uint64, error) {
	nodeID := t.header.root
	for {
		n, err := t.readNode(nodeID)
		if err != nil {
			return 0, err
		}
		if n.isLeaf {
			idx := n.leafIndexForKey(vertexID)
			if idx < len(n.keys) && n.keys[idx] == vertexID {
				return n.values[idx], nil
			}
			return 0, fmt.Errorf("idmap: %w: vertex id %d", errs.ErrNotFound, vertexID)
		}
		nodeID = n.values[n.childForKey(vertexID)]
	}
}

// RangeQuery returns every (vertex id, page id) pair with lo <= id <= hi,
// in ascending id order.
func (t *Tree) RangeQuery(lo, hi uint32) ([]Pair, error) {
	if lo > hi {
		return nil, nil
	}

	nodeID := t.header.root
	var leaf node
	for {
		n, err := t.readNode(nodeID)
		if err != nil {
			return nil, err
		}
		if n.isLeaf {
			leaf = n
			break
		}
		nodeID = n.values[n.childForKey(lo)]
	}

	var out []Pair
	idx := leaf.leafIndexForKey(lo)
	for {
		for ; idx < len(leaf.keys); idx++ {
			if leaf.keys[idx] > hi {
				return out, nil
			}
			out = append(out, Pair{VertexID: leaf.keys[idx], PageID: leaf.values[idx]})
		}
		if leaf.next == noChild {
			return out, nil
		}
		next, err := t.readNode(leaf.next)
		if err != nil {
			return nil, err
		}
		leaf = next
		idx = 0
	}
}

// Close flushes and closes the backing file.
func (t *Tree) Close() error {
	if err := t.pf.Sync(); err != nil {
		return err
	}
	return t.pf.Close()
}

func insertU32(s []uint32, idx int, v uint32) []uint32 {
	s = append(s, 0)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func insertU64(s []uint64, idx int, v uint64) []uint64 {
	s = append(s, 0)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}
