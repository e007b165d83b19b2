package extsort

import (
	"encoding/binary"
	"sort"

	"github.com/xDarkicex/touchgraph/internal/hilbert"
)

// rawFromEntry prefixes e's key onto its data so a spilled run can be
// read back without a full Decode just to compare keys.
func rawFromEntry(e entry) []byte {
	buf := make([]byte, 8+len(e.data))
	binary.LittleEndian.PutUint64(buf, uint64(e.key))
	copy(buf[8:], e.data)
	return buf
}

func entryFromRaw(raw []byte) entry {
	key := hilbert.Key(binary.LittleEndian.Uint64(raw))
	data := make([]byte, len(raw)-8)
	copy(data, raw[8:])
	return entry{key: key, data: data}
}

func sortEntries(buf []entry) {
	sort.Slice(buf, func(i, j int) bool { return hilbert.Less(buf[i].key, buf[j].key) })
}

// mergeNode is one candidate in the k-way merge heap: the smallest
// unconsumed entry of one run (or of the in-memory remainder, source
// == -1).
type mergeNode struct {
	entry  entry
	source int
}

// mergeHeap orders mergeNodes by key, smallest first.
type mergeHeap []*mergeNode

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return hilbert.Less(h[i].entry.key, h[j].entry.key) }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(*mergeNode)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
