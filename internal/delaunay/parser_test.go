package delaunay

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/errs"
)

func TestParseSingleTetrahedron(t *testing.T) {
	// Two vertices, one degenerate "tetrahedron" referencing v1 twice
	// isn't legal Delaunay input; use four distinct points with the
	// last id given as a relative reference (0, i.e. vertex 4), which
	// finalizes vertex 4 at once; the other three are finalized at end
	// of stream.
	input := strings.Join([]string{
		"# comment",
		"v 0 0 0",
		"v 1 0 0",
		"v 0 1 0",
		"v 0 0 1",
		"c 1 2 3 0",
	}, "\n")

	var got []Vertex
	err := Parse(strings.NewReader(input), func(v Vertex) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 4)

	byID := map[uint32]Vertex{}
	for _, v := range got {
		byID[v.ID] = v
	}
	for id := uint32(1); id <= 4; id++ {
		v, ok := byID[id]
		require.True(t, ok, "vertex %d finalized", id)
		assert.ElementsMatch(t, []uint32{1, 2, 3, 4}, append(v.Neighbours, id))
		assert.False(t, v.VMBR.IsEmpty())
	}
}

func TestParseFinalizesRemainingAtEOF(t *testing.T) {
	input := strings.Join([]string{
		"v 0 0 0",
		"v 1 0 0",
		"v 0 1 0",
		"v 0 0 1",
	}, "\n")

	var got []Vertex
	err := Parse(strings.NewReader(input), func(v Vertex) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 4)
	for _, v := range got {
		assert.Empty(t, v.Neighbours)
		assert.True(t, v.VMBR.IsEmpty())
	}
}

func TestParseDeduplicatesNeighbours(t *testing.T) {
	input := strings.Join([]string{
		"v 0 0 0",
		"v 1 0 0",
		"v 0 1 0",
		"v 0 0 1",
		"c 1 2 3 4",
		"v 2 2 2",
		"c 1 2 3 5",
		"c -4 0 0 0", // current_id=5: k=-4 -> vertex 1, k=0 -> vertex 5 (three times); finalizes vertices 1 and 5
	}, "\n")

	var got []Vertex
	err := Parse(strings.NewReader(input), func(v Vertex) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)

	byID := map[uint32]Vertex{}
	for _, v := range got {
		byID[v.ID] = v
	}
	v1 := byID[1]
	seen := map[uint32]int{}
	for _, n := range v1.Neighbours {
		seen[n]++
	}
	for _, count := range seen {
		assert.Equal(t, 1, count, "neighbour id repeated in vertex 1's list")
	}
}

func TestParseMalformedLine(t *testing.T) {
	err := Parse(strings.NewReader("v 0 0\n"), func(Vertex) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrParse)
}

func TestParseMissingVertexReference(t *testing.T) {
	err := Parse(strings.NewReader("c 1 2 3 4\n"), func(Vertex) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestParseUnknownRecordType(t *testing.T) {
	err := Parse(strings.NewReader("x 1 2 3\n"), func(Vertex) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrParse)
}

func TestParseSinkErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	err := Parse(strings.NewReader("v 0 0 0\n"), func(Vertex) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
