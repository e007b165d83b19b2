package rtree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

func gridEntries(n int) []Entry {
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		p := spatial.Vertex{float32(i % 10), float32((i / 10) % 10), float32(i / 100)}
		out[i] = Entry{MBR: spatial.BoxFromPoint(p), PageID: uint64(i)}
	}
	return out
}

func collect(t Tree, q spatial.Box) []uint64 {
	var got []uint64
	_ = t.Intersects(q, func(e Entry) bool {
		got = append(got, e.PageID)
		return true
	})
	return got
}

func TestSTRBulkLoadFindsAllPointsInBox(t *testing.T) {
	entries := gridEntries(1000)
	tr := BulkLoad(entries, 16)
	require.Equal(t, 1000, tr.Len())

	q := spatial.Box{Low: spatial.Vertex{2, 2, 0}, High: spatial.Vertex{4, 4, 9}}
	got := collect(tr, q)

	var want int
	for _, e := range entries {
		if spatial.ContainsPoint(q, e.MBR.Low) {
			want++
		}
	}
	assert.Len(t, got, want)
	assert.NotZero(t, want)
}

func TestSTRBulkLoadEmpty(t *testing.T) {
	tr := BulkLoad(nil, 16)
	assert.Equal(t, 0, tr.Len())
	got := collect(tr, spatial.Box{Low: spatial.Vertex{-1, -1, -1}, High: spatial.Vertex{1, 1, 1}})
	assert.Empty(t, got)
}

func TestIntersectsVisitorStopsEarly(t *testing.T) {
	entries := gridEntries(500)
	tr := BulkLoad(entries, 8)

	seen := 0
	_ = tr.Intersects(spatial.Box{Low: spatial.Vertex{0, 0, 0}, High: spatial.Vertex{9, 9, 9}}, func(e Entry) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestDynamicInsertFindsAllPointsInBox(t *testing.T) {
	entries := gridEntries(800)
	tr := NewDynamic(8)
	r := rand.New(rand.NewSource(1))
	perm := r.Perm(len(entries))
	for _, i := range perm {
		require.NoError(t, tr.Insert(entries[i]))
	}
	require.Equal(t, 800, tr.Len())

	q := spatial.Box{Low: spatial.Vertex{1, 1, 0}, High: spatial.Vertex{3, 3, 9}}
	got := collect(tr, q)

	var want int
	for _, e := range entries {
		if spatial.ContainsPoint(q, e.MBR.Low) {
			want++
		}
	}
	assert.Len(t, got, want)
}

func TestDynamicAndSTRAgreeOnRandomBoxes(t *testing.T) {
	entries := make([]Entry, 300)
	r := rand.New(rand.NewSource(2))
	for i := range entries {
		p := spatial.Vertex{float32(r.Intn(100)), float32(r.Intn(100)), float32(r.Intn(100))}
		entries[i] = Entry{MBR: spatial.BoxFromPoint(p), PageID: uint64(i)}
	}

	str := BulkLoad(entries, 12)
	dyn := NewDynamic(12)
	for _, e := range entries {
		require.NoError(t, dyn.Insert(e))
	}

	q := spatial.Box{Low: spatial.Vertex{20, 20, 20}, High: spatial.Vertex{60, 60, 60}}
	strGot := collect(str, q)
	dynGot := collect(dyn, q)

	assert.ElementsMatch(t, strGot, dynGot)
}
