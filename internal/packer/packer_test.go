package packer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/idmap"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

const testPageSize = 256

func newWriter(t *testing.T) (*Writer, *page.File, *idmap.Tree) {
	t.Helper()
	pf, err := page.Create(filepath.Join(t.TempDir(), "graph.dat"), testPageSize)
	require.NoError(t, err)
	ids, err := idmap.Create(filepath.Join(t.TempDir(), "ids.map"), testPageSize)
	require.NoError(t, err)
	return NewWriter(pf, ids), pf, ids
}

func ring(n int) []graphpage.Record {
	out := make([]graphpage.Record, n)
	for i := 0; i < n; i++ {
		out[i] = graphpage.Record{
			ID:     uint32(i),
			Coords: spatial.Vertex{float32(i), float32(i), float32(i)},
			VMBR:   spatial.BoxFromPoint(spatial.Vertex{float32(i), float32(i), float32(i)}),
			Neighbours: []uint32{
				uint32((i + 1) % n),
				uint32((i - 1 + n) % n),
			},
		}
	}
	return out
}

func TestFlatEveryVertexLandsOnExactlyOnePage(t *testing.T) {
	w, pf, ids := newWriter(t)
	f := NewFlat(w)
	for _, v := range ring(40) {
		require.NoError(t, f.Add(v))
	}
	require.NoError(t, f.Finish())

	assert.Greater(t, pf.NumPages(), int64(1))
	for i := uint32(0); i < 40; i++ {
		_, err := ids.PointQuery(i)
		assert.NoError(t, err, "vertex %d should have an id-map entry", i)
	}
}

func TestFlatRejectsSingleOversizedVertex(t *testing.T) {
	w, _, _ := newWriter(t)
	f := NewFlat(w)
	huge := graphpage.Record{ID: 1, Neighbours: make([]uint32, 100)}
	err := f.Add(huge)
	require.Error(t, err)
}

func TestHaltEveryVertexLandsOnExactlyOnePage(t *testing.T) {
	w, pf, ids := newWriter(t)
	h := NewHalt(w, 40)
	for _, v := range ring(160) {
		require.NoError(t, h.Add(v))
	}
	require.NoError(t, h.Finish())

	assert.Greater(t, pf.NumPages(), int64(1))
	for i := uint32(0); i < 160; i++ {
		_, err := ids.PointQuery(i)
		assert.NoError(t, err, "vertex %d should have an id-map entry", i)
	}
}

func TestRewriteResolvesNeighboursToPageIDs(t *testing.T) {
	w, pf, ids := newWriter(t)
	f := NewFlat(w)
	for _, v := range ring(40) {
		require.NoError(t, f.Add(v))
	}
	require.NoError(t, f.Finish())

	metas, err := Rewrite(pf, ids)
	require.NoError(t, err)
	require.NotEmpty(t, metas)

	validPages := make(map[uint64]bool, pf.NumPages())
	for p := uint64(0); p < uint64(pf.NumPages()); p++ {
		validPages[p] = true
	}

	for _, m := range metas {
		assert.False(t, m.PartitionMBR.IsEmpty())
		assert.True(t, spatialContains(m.PartitionMBR, m.PageMBR))
		for _, link := range m.PageLinks {
			assert.NotEqual(t, m.PageID, link, "a page must not list itself as a link")
			assert.True(t, validPages[link], "link %d must reference an existing page", link)
		}
	}

	// After rewriting, decode every page and check no neighbour id
	// equals a vertex id stored on the same page.
	for p := uint64(0); p < uint64(pf.NumPages()); p++ {
		buf, err := pf.ReadPage(p)
		require.NoError(t, err)
		pg, err := graphpage.Decode(buf)
		require.NoError(t, err)
		owned := make(map[uint32]bool)
		for _, r := range pg.Records {
			owned[r.ID] = true
		}
		for _, r := range pg.Records {
			for _, n := range r.Neighbours {
				assert.False(t, owned[n], "neighbour %d must not equal a vertex id on the same page", n)
			}
		}
	}
}

func spatialContains(outer, inner spatial.Box) bool {
	return spatial.Contains(outer, inner)
}
