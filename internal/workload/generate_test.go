package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xDarkicex/touchgraph/internal/crawler"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

func TestGenerateRandomProducesBoxesInsideWorld(t *testing.T) {
	world := spatial.Box{Low: spatial.Vertex{0, 0, 0}, High: spatial.Vertex{100, 100, 100}}
	r := rand.New(rand.NewSource(1))

	queries := GenerateRandom(world, 20, 0.01, r)
	assert.Len(t, queries, 20)
	for _, q := range queries {
		assert.Equal(t, Range, q.Kind)
		require := q.Boxes[0]
		for i := 0; i < spatial.Dims; i++ {
			assert.GreaterOrEqual(t, require.Low[i], world.Low[i])
			assert.LessOrEqual(t, require.High[i], world.High[i])
		}
	}
}

func TestBruteForceMatchesContainsPoint(t *testing.T) {
	points := []crawler.Result{
		{ID: 1, Coords: spatial.Vertex{1, 1, 1}},
		{ID: 2, Coords: spatial.Vertex{50, 50, 50}},
		{ID: 3, Coords: spatial.Vertex{2, 2, 2}},
	}
	q := spatial.Box{Low: spatial.Vertex{0, 0, 0}, High: spatial.Vertex{3, 3, 3}}

	got := BruteForce(points, q)
	assert.Len(t, got, 2)
	ids := map[uint32]bool{}
	for _, g := range got {
		ids[g.ID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[3])
}
