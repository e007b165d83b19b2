package touchgraph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// writeStream writes a small synthetic Delaunay stream describing an
// 8-vertex cube with a handful of tetrahedra connecting its corners,
// enough to exercise the full build pipeline without needing a real
// tetrahedralizer.
func writeStream(t *testing.T, path string) {
	t.Helper()
	lines := []string{
		"# cube corners",
		"v 0 0 0",
		"v 10 0 0",
		"v 0 10 0",
		"v 10 10 0",
		"v 0 0 10",
		"v 10 0 10",
		"v 0 10 10",
		"v 10 10 10",
		"c 1 2 3 5",
		"c 2 3 4 8",
		"c 2 5 6 8",
		"c 3 5 7 8",
		"c 2 3 5 8",
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestBuildThenOpenThenQueryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	streamPath := filepath.Join(dir, "cube.sva")
	writeStream(t, streamPath)

	stem := filepath.Join(dir, "cube")
	stats, err := Build(streamPath, stem,
		WithPageSize(512),
		WithWorldBounds(spatial.Vertex{0, 0, 0}, spatial.Vertex{10, 10, 10}),
	)
	require.NoError(t, err)
	assert.Equal(t, 8, stats.VerticesPacked)
	assert.Greater(t, stats.PagesWritten, 0)

	g, err := Open(stem, WithOpenPageSize(512))
	require.NoError(t, err)
	defer g.Close()

	results, qstats, err := g.Query(spatial.Box{Low: spatial.Vertex{-1, -1, -1}, High: spatial.Vertex{11, 11, 11}})
	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.Equal(t, 8, qstats.ResultPoints)
}

func TestBuildRequiresWorldBounds(t *testing.T) {
	dir := t.TempDir()
	streamPath := filepath.Join(dir, "cube.sva")
	writeStream(t, streamPath)

	_, err := Build(streamPath, filepath.Join(dir, "cube"))
	assert.Error(t, err)
}

func TestOpenWithPrefetchingMatchesExact(t *testing.T) {
	dir := t.TempDir()
	streamPath := filepath.Join(dir, "cube.sva")
	writeStream(t, streamPath)

	stem := filepath.Join(dir, "cube")
	_, err := Build(streamPath, stem,
		WithPageSize(512),
		WithWorldBounds(spatial.Vertex{0, 0, 0}, spatial.Vertex{10, 10, 10}),
	)
	require.NoError(t, err)

	exact, err := Open(stem, WithOpenPageSize(512))
	require.NoError(t, err)
	defer exact.Close()

	pre, err := Open(stem, WithOpenPageSize(512), WithPrefetching(16, 2))
	require.NoError(t, err)
	defer pre.Close()

	box := spatial.Box{Low: spatial.Vertex{-1, -1, -1}, High: spatial.Vertex{11, 11, 11}}
	wantResults, _, err := exact.Query(box)
	require.NoError(t, err)
	gotResults, _, err := pre.Query(box)
	require.NoError(t, err)
	assert.ElementsMatch(t, wantResults, gotResults)
}
