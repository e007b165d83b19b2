package seedindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/idmap"
	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

const testPageSize = 512

// buildFixture packs a ring of vertices with internal/packer and
// rewrites it, returning the graph-page file and its metadata.
func buildFixture(t *testing.T, n int) (*page.File, []packer.Metadata) {
	t.Helper()
	pf, err := page.Create(filepath.Join(t.TempDir(), "graph.dat"), testPageSize)
	require.NoError(t, err)
	ids, err := idmap.Create(filepath.Join(t.TempDir(), "ids.map"), testPageSize)
	require.NoError(t, err)

	w := packer.NewWriter(pf, ids)
	f := packer.NewFlat(w)
	for i := 0; i < n; i++ {
		p := spatial.Vertex{float32(i), float32(i), float32(i)}
		require.NoError(t, f.Add(graphpage.Record{
			ID:     uint32(i),
			Coords: p,
			VMBR:   spatial.BoxFromPoint(p),
			Neighbours: []uint32{
				uint32((i + 1) % n),
				uint32((i - 1 + n) % n),
			},
		}))
	}
	require.NoError(t, f.Finish())

	metas, err := packer.Rewrite(pf, ids)
	require.NoError(t, err)
	return pf, metas
}

func TestIntersectsVisitsPagesOverlappingQuery(t *testing.T) {
	pf, metas := buildFixture(t, 60)
	idx, err := Build(metas, 4)
	require.NoError(t, err)
	assert.Equal(t, len(metas), idx.Len())

	q := spatial.Box{Low: spatial.Vertex{0, 0, 0}, High: spatial.Vertex{5, 5, 5}}
	var visited []uint64
	require.NoError(t, idx.Intersects(q, func(m packer.Metadata) bool {
		visited = append(visited, m.PageID)
		return true
	}))
	assert.NotEmpty(t, visited)
	_ = pf
}

func TestSeedFindsAPageContainingAMatchingVertex(t *testing.T) {
	pf, metas := buildFixture(t, 60)
	idx, err := Build(metas, 4)
	require.NoError(t, err)

	q := spatial.Box{Low: spatial.Vertex{10, 10, 10}, High: spatial.Vertex{12, 12, 12}}
	pageID, found, err := idx.Seed(q, pf)
	require.NoError(t, err)
	require.True(t, found)

	buf, err := pf.ReadPage(pageID)
	require.NoError(t, err)
	pg, err := graphpage.Decode(buf)
	require.NoError(t, err)
	var hit bool
	for _, r := range pg.Records {
		if spatial.ContainsPoint(q, r.Coords) {
			hit = true
		}
	}
	assert.True(t, hit)
}

func TestSeedReportsNotFoundForDisjointQuery(t *testing.T) {
	pf, metas := buildFixture(t, 60)
	idx, err := Build(metas, 4)
	require.NoError(t, err)

	q := spatial.Box{Low: spatial.Vertex{9000, 9000, 9000}, High: spatial.Vertex{9001, 9001, 9001}}
	_, found, err := idx.Seed(q, pf)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBuildDynamicInsertAndSeed(t *testing.T) {
	pf, metas := buildFixture(t, 60)
	idx := BuildDynamic(4)
	for _, m := range metas {
		require.NoError(t, idx.Insert(m))
	}
	assert.Equal(t, len(metas), idx.Len())

	q := spatial.Box{Low: spatial.Vertex{20, 20, 20}, High: spatial.Vertex{22, 22, 22}}
	_, found, err := idx.Seed(q, pf)
	require.NoError(t, err)
	assert.True(t, found)
}
