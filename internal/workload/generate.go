package workload

import (
	"math/rand"

	"github.com/xDarkicex/touchgraph/internal/crawler"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// GenerateRandom produces count independent Range queries, each a box
// of the given fraction of world's volume placed at a random offset
// within world. Grounded on QueryGenerator::Generate's "same volume,
// random queries" loop over Box::randomBox.
func GenerateRandom(world spatial.Box, count int, volumeFraction float64, r *rand.Rand) []Query {
	targetVolume := world.Volume() * volumeFraction

	queries := make([]Query, count)
	for i := 0; i < count; i++ {
		queries[i] = NewRange(spatial.RandomBox(world, targetVolume, r))
	}
	return queries
}

// BruteForce answers q by a full linear scan of points, the reference
// answer QualitativeComparison.cpp checks crawler results against.
func BruteForce(points []crawler.Result, q spatial.Box) []crawler.Result {
	var out []crawler.Result
	for _, p := range points {
		if spatial.ContainsPoint(q, p.Coords) {
			out = append(out, p)
		}
	}
	return out
}
