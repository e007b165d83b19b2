package packer

import (
	"math"

	"github.com/xDarkicex/touchgraph/internal/graphpage"
)

// chunkGraph is the neighbour graph induced on one packing chunk,
// indexed by position within the chunk rather than vertex id.
type chunkGraph struct {
	weight    []int
	adjacency [][]int
}

func buildChunkGraph(records []graphpage.Record) *chunkGraph {
	idx := make(map[uint32]int, len(records))
	for i, r := range records {
		idx[r.ID] = i
	}
	g := &chunkGraph{weight: make([]int, len(records)), adjacency: make([][]int, len(records))}
	for i, r := range records {
		g.weight[i] = r.SerializedSize()
		for _, n := range r.Neighbours {
			if j, ok := idx[n]; ok && j != i {
				g.adjacency[i] = append(g.adjacency[i], j)
			}
		}
	}
	return g
}

// partitionChunk splits records into k balanced, edge-cut-minimizing
// parts, growing k until the average shrunk partition size fits a
// page (spec §4.5.2 steps 1-2).
func partitionChunk(g *chunkGraph, records []graphpage.Record, pageSize int) [][]graphpage.Record {
	total := 0
	for _, w := range g.weight {
		total += w
	}
	k := int(math.Ceil(float64(total) / (float64(pageSize) * 0.6)))
	if k < 1 {
		k = 1
	}

	for {
		assign := greedyEdgeCutPartition(g, k)
		parts := groupByPartition(assign, records, k)
		if k >= len(records) || averageShrunkSize(parts) < float64(pageSize) {
			return parts
		}
		k++
	}
}

// greedyEdgeCutPartition assigns each chunk-local vertex to one of k
// parts by growing k breadth-first regions in lockstep from spread
// seeds: a vertex joins whichever region's frontier reaches it first,
// which greedily keeps adjacent vertices together and so minimizes
// edge cut without a full partitioning solver (spec §4.5.2 step 2,
// grounded on HALTGenerator.cpp's region-growing tiler, reimplemented
// from scratch since the pack carries no graph-partitioning library).
func greedyEdgeCutPartition(g *chunkGraph, k int) []int {
	n := len(g.weight)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	if n == 0 {
		return assign
	}

	partWeight := make([]int, k)
	queues := make([][]int, k)
	for p := 0; p < k && p < n; p++ {
		seed := p * n / k
		assign[seed] = p
		partWeight[p] += g.weight[seed]
		queues[p] = append(queues[p], seed)
	}

	assigned := k
	if n < k {
		assigned = n
	}
	for assigned < n {
		progressed := false
		for p := 0; p < k; p++ {
			if len(queues[p]) == 0 {
				continue
			}
			v := queues[p][0]
			queues[p] = queues[p][1:]
			for _, nb := range g.adjacency[v] {
				if assign[nb] == -1 {
					assign[nb] = p
					partWeight[p] += g.weight[nb]
					queues[p] = append(queues[p], nb)
					assigned++
					progressed = true
				}
			}
		}
		if !progressed {
			// No frontier reaches an unassigned vertex: the chunk
			// graph is disconnected here. Hand the lightest partition
			// the next unassigned vertex and keep growing from there.
			p := lightestPartition(partWeight)
			for i := 0; i < n; i++ {
				if assign[i] == -1 {
					assign[i] = p
					partWeight[p] += g.weight[i]
					queues[p] = append(queues[p], i)
					assigned++
					break
				}
			}
		}
	}
	return assign
}

func lightestPartition(weight []int) int {
	best := 0
	for p := 1; p < len(weight); p++ {
		if weight[p] < weight[best] {
			best = p
		}
	}
	return best
}

func groupByPartition(assign []int, records []graphpage.Record, k int) [][]graphpage.Record {
	parts := make([][]graphpage.Record, k)
	for i, p := range assign {
		parts[p] = append(parts[p], records[i])
	}
	out := parts[:0]
	for _, part := range parts {
		if len(part) > 0 {
			out = append(out, part)
		}
	}
	return out
}

func averageShrunkSize(parts [][]graphpage.Record) float64 {
	if len(parts) == 0 {
		return 0
	}
	total := 0
	for _, part := range parts {
		total += graphpage.ShrunkSize(part, ownedSet(part))
	}
	return float64(total) / float64(len(parts))
}
