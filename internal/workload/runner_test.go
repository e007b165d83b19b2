package workload

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/crawler"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/idmap"
	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/seedindex"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

const testPageSize = 512

// buildLine packs n colinear vertices along X, each linked to its two
// nearest neighbours, and returns a ready-to-query exact crawler.
func buildLine(t *testing.T, n int) *crawler.Exact {
	t.Helper()
	dir := t.TempDir()
	gpath := filepath.Join(dir, "graph.dat")

	pf, err := page.Create(gpath, testPageSize)
	require.NoError(t, err)
	ids, err := idmap.Create(filepath.Join(dir, "ids.map"), testPageSize)
	require.NoError(t, err)

	w := packer.NewWriter(pf, ids)
	f := packer.NewFlat(w)
	for i := 0; i < n; i++ {
		var nbrs []uint32
		if i > 0 {
			nbrs = append(nbrs, uint32(i-1))
		}
		if i < n-1 {
			nbrs = append(nbrs, uint32(i+1))
		}
		p := spatial.Vertex{float32(i), 0, 0}
		require.NoError(t, f.Add(graphpage.Record{
			ID:         uint32(i),
			Coords:     p,
			VMBR:       spatial.BoxFromPoint(p),
			Neighbours: nbrs,
		}))
	}
	require.NoError(t, f.Finish())

	metas, err := packer.Rewrite(pf, ids)
	require.NoError(t, err)
	idx, err := seedindex.Build(metas, 4)
	require.NoError(t, err)
	require.NoError(t, ids.Close())

	return crawler.NewExact(idx, pf)
}

func TestRunExecutesEveryBoxAsOneStep(t *testing.T) {
	c := buildLine(t, 20)
	q := NewMoving([]spatial.Box{
		{Low: spatial.Vertex{0, -1, -1}, High: spatial.Vertex{2, 1, 1}},
		{Low: spatial.Vertex{5, -1, -1}, High: spatial.Vertex{7, 1, 1}},
		{Low: spatial.Vertex{15, -1, -1}, High: spatial.Vertex{19, 1, 1}},
	})

	out, err := Run(q, c.Query)
	require.NoError(t, err)
	require.Len(t, out.Steps, 3)

	assert.Len(t, out.Steps[0].Points, 3)
	assert.Len(t, out.Steps[1].Points, 3)
	assert.Len(t, out.Steps[2].Points, 5)
}

func TestOutcomeTotalStatsSumsSteps(t *testing.T) {
	c := buildLine(t, 10)
	q := NewMoving([]spatial.Box{
		{Low: spatial.Vertex{0, -1, -1}, High: spatial.Vertex{3, 1, 1}},
		{Low: spatial.Vertex{4, -1, -1}, High: spatial.Vertex{9, 1, 1}},
	})

	out, err := Run(q, c.Query)
	require.NoError(t, err)

	total := out.TotalStats()
	var want int
	for _, s := range out.Steps {
		want += s.Stats.ResultPoints
	}
	assert.Equal(t, want, total.ResultPoints)
	assert.Equal(t, 10, len(out.Points()))
}

func TestRunSingleRangeQuery(t *testing.T) {
	c := buildLine(t, 5)
	q := NewRange(spatial.Box{Low: spatial.Vertex{0, -1, -1}, High: spatial.Vertex{4, 1, 1}})

	out, err := Run(q, c.Query)
	require.NoError(t, err)
	require.Len(t, out.Steps, 1)
	assert.Len(t, out.Steps[0].Points, 5)
}
