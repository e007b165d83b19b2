package crawler

// predictor scores each out-edge (page p -> neighbour n) by the
// fraction of past times n turned out to hold a result point once
// visited (spec §4.9 "a counter per out-edge, scored by fraction of
// times that neighbour's vertices were inside prior queries in this
// session").
type predictor struct {
	hits       map[edgeKey]int
	considered map[edgeKey]int
}

type edgeKey struct {
	from, to uint64
}

func newPredictor() *predictor {
	return &predictor{hits: make(map[edgeKey]int), considered: make(map[edgeKey]int)}
}

// score returns the edge's current hit fraction, 0 for an unseen edge
// (neither optimistic nor pessimistic: an untried prediction simply
// sorts behind any edge with observed signal).
func (p *predictor) score(from, to uint64) float64 {
	k := edgeKey{from, to}
	c := p.considered[k]
	if c == 0 {
		return 0
	}
	return float64(p.hits[k]) / float64(c)
}

// record updates an edge's outcome once its target page has actually
// been read and it is known whether it held a result point.
func (p *predictor) record(from, to uint64, wasUseful bool) {
	k := edgeKey{from, to}
	p.considered[k]++
	if wasUseful {
		p.hits[k]++
	}
}
