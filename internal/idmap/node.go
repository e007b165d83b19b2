package idmap

import "encoding/binary"

const (
	nodeLeaf     = byte(1)
	nodeInternal = byte(2)

	// noChild marks the absence of a next-leaf link.
	noChild = ^uint64(0)

	// leafHeaderBytes: type(1) + numKeys(2) + next(8)
	leafHeaderBytes = 1 + 2 + 8
	// internalHeaderBytes: type(1) + numKeys(2)
	internalHeaderBytes = 1 + 2
)

// capacities returns the maximum number of keys a leaf and an
// internal node can hold within pageSize bytes (spec §4.6 "Node and
// leaf capacities derived from the page size").
func capacities(pageSize int) (maxLeafKeys, maxInternalKeys int) {
	// leaf: header + n*(key 4 + value 8)
	maxLeafKeys = (pageSize - leafHeaderBytes) / 12
	// internal: header + n*key(4) + (n+1)*child(8) = header + 8 + n*12
	maxInternalKeys = (pageSize - internalHeaderBytes - 8) / 12
	return
}

type node struct {
	isLeaf bool
	keys   []uint32
	values []uint64 // leaf: vertex->page values; internal: child page ids, len(values)==len(keys)+1
	next   uint64   // leaf only
}

func encodeNode(n node, pageSize int) []byte {
	buf := make([]byte, pageSize)
	if n.isLeaf {
		buf[0] = nodeLeaf
		binary.LittleEndian.PutUint16(buf[1:], uint16(len(n.keys)))
		binary.LittleEndian.PutUint64(buf[3:], n.next)
		off := leafHeaderBytes
		for i, k := range n.keys {
			binary.LittleEndian.PutUint32(buf[off:], k)
			binary.LittleEndian.PutUint64(buf[off+4:], n.values[i])
			off += 12
		}
	} else {
		buf[0] = nodeInternal
		binary.LittleEndian.PutUint16(buf[1:], uint16(len(n.keys)))
		off := internalHeaderBytes
		binary.LittleEndian.PutUint64(buf[off:], n.values[0])
		off += 8
		for i, k := range n.keys {
			binary.LittleEndian.PutUint32(buf[off:], k)
			binary.LittleEndian.PutUint64(buf[off+4:], n.values[i+1])
			off += 12
		}
	}
	return buf
}

func decodeNode(buf []byte) node {
	var n node
	switch buf[0] {
	case nodeLeaf:
		n.isLeaf = true
		numKeys := int(binary.LittleEndian.Uint16(buf[1:]))
		n.next = binary.LittleEndian.Uint64(buf[3:])
		off := leafHeaderBytes
		n.keys = make([]uint32, numKeys)
		n.values = make([]uint64, numKeys)
		for i := 0; i < numKeys; i++ {
			n.keys[i] = binary.LittleEndian.Uint32(buf[off:])
			n.values[i] = binary.LittleEndian.Uint64(buf[off+4:])
			off += 12
		}
	case nodeInternal:
		n.isLeaf = false
		numKeys := int(binary.LittleEndian.Uint16(buf[1:]))
		off := internalHeaderBytes
		n.values = make([]uint64, numKeys+1)
		n.values[0] = binary.LittleEndian.Uint64(buf[off:])
		off += 8
		n.keys = make([]uint32, numKeys)
		for i := 0; i < numKeys; i++ {
			n.keys[i] = binary.LittleEndian.Uint32(buf[off:])
			n.values[i+1] = binary.LittleEndian.Uint64(buf[off+4:])
			off += 12
		}
	}
	return n
}

// childForKey returns the index of the child to descend into for key
// in an internal node: the last child whose separator is <= key.
func (n node) childForKey(key uint32) int {
	idx := 0
	for idx < len(n.keys) && key >= n.keys[idx] {
		idx++
	}
	return idx
}

// leafIndexForKey returns the position where key is, or should be
// inserted, within a leaf's sorted key list.
func (n node) leafIndexForKey(key uint32) int {
	lo, hi := 0, len(n.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if n.keys[mid] < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
