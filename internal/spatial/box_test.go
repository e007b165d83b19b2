package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxOverlapContains(t *testing.T) {
	a := Box{Low: Vertex{0, 0, 0}, High: Vertex{2, 2, 2}}
	b := Box{Low: Vertex{1, 1, 1}, High: Vertex{3, 3, 3}}
	c := Box{Low: Vertex{10, 10, 10}, High: Vertex{11, 11, 11}}

	assert.True(t, Overlap(a, b))
	assert.False(t, Overlap(a, c))
	assert.True(t, Contains(Box{Low: Vertex{-1, -1, -1}, High: Vertex{5, 5, 5}}, a))
	assert.False(t, Contains(a, b))
}

func TestContainsPoint(t *testing.T) {
	b := Box{Low: Vertex{0, 0, 0}, High: Vertex{2, 2, 2}}
	assert.True(t, ContainsPoint(b, Vertex{1, 1, 1}))
	assert.True(t, ContainsPoint(b, Vertex{0, 0, 0}))
	assert.True(t, ContainsPoint(b, Vertex{2, 2, 2}))
	assert.False(t, ContainsPoint(b, Vertex{2.1, 0, 0}))
}

func TestUnionIdentity(t *testing.T) {
	a := Box{Low: Vertex{1, 1, 1}, High: Vertex{2, 2, 2}}
	u := Union(EmptyBox(), a)
	assert.Equal(t, a, u)
}

func TestBoundingBoxOf(t *testing.T) {
	pts := []Vertex{{0, 0, 0}, {1, 5, -1}, {-2, 2, 3}}
	b := BoundingBoxOf(pts)
	require.False(t, b.IsEmpty())
	assert.Equal(t, Vertex{-2, 0, -1}, b.Low)
	assert.Equal(t, Vertex{1, 5, 3}, b.High)
}

func TestVolume(t *testing.T) {
	b := Box{Low: Vertex{0, 0, 0}, High: Vertex{2, 3, 4}}
	assert.InDelta(t, 24.0, b.Volume(), 1e-9)
	assert.Equal(t, 0.0, EmptyBox().Volume())
}

func TestRandomBoxInsideWorld(t *testing.T) {
	world := Box{Low: Vertex{0, 0, 0}, High: Vertex{100, 100, 100}}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		b := RandomBox(world, 1000, r)
		assert.True(t, Contains(world, b), "box %v not inside world", b)
	}
}
