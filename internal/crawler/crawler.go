// Package crawler implements the query engine's page-graph BFS (spec
// §4.8/§4.9, C9/C10): seed into the graph via the seed index, then
// walk adjacent pages guided by Voronoi-MBR pruning, collecting every
// point the query box contains. Grounded on
// original_source/lib/bbpdias/QualitativeComparison.cpp's seed-then-walk
// query loop, reimplemented over internal/seedindex and
// internal/graphpage rather than libspatialindex's RTree query API.
package crawler

import (
	"fmt"
	"time"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/seedindex"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// Result is one point found inside a query box.
type Result struct {
	ID     uint32
	Coords spatial.Vertex
}

// Stats is the per-query I/O and outcome breakdown (spec §4.10).
type Stats struct {
	SeedIOs       int
	MetadataIOs   int
	PayloadIOs    int
	ResultPoints  int
	UselessPoints int
	SeedTime      time.Duration
	CrawlTime     time.Duration
}

// Exact is the plain BFS crawler (spec §4.8): no speculation, no
// cache, one page read per page visited.
type Exact struct {
	seed *seedindex.Index
	pf   *page.File
}

// NewExact builds an exact crawler over an already-built seed index
// and a read-only graph-page file.
func NewExact(seed *seedindex.Index, pf *page.File) *Exact {
	return &Exact{seed: seed, pf: pf}
}

// Query runs the BFS crawl for query box q, returning every indexed
// point it contains.
func (c *Exact) Query(q spatial.Box) (results []Result, stats Stats, err error) {
	seedStart := time.Now()
	seedPage, found, err := c.seed.Seed(q, c.pf)
	stats.SeedIOs++
	stats.SeedTime = time.Since(seedStart)
	if err != nil {
		return nil, stats, err
	}
	if !found {
		return nil, stats, nil
	}

	crawlStart := time.Now()
	defer func() { stats.CrawlTime = time.Since(crawlStart) }()

	visited := map[uint64]bool{seedPage: true}
	queue := []uint64{seedPage}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		pg, err := readPage(c.pf, p)
		stats.PayloadIOs++
		if err != nil {
			return nil, stats, err
		}
		for _, r := range pg.Records {
			if spatial.ContainsPoint(q, r.Coords) {
				results = append(results, Result{ID: r.ID, Coords: r.Coords})
				stats.ResultPoints++
			} else {
				stats.UselessPoints++
			}
		}

		meta, err := c.seed.MetadataForPage(p)
		stats.MetadataIOs++
		if err != nil {
			return nil, stats, fmt.Errorf("crawler: %w: %v", errs.ErrCorruption, err)
		}
		for _, n := range meta.PageLinks {
			if visited[n] {
				continue
			}
			nmeta, err := c.seed.MetadataForPage(n)
			stats.MetadataIOs++
			if err != nil {
				return nil, stats, fmt.Errorf("crawler: %w: %v", errs.ErrCorruption, err)
			}
			if spatial.Overlap(q, nmeta.PartitionMBR) {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	return results, stats, nil
}

func readPage(pf *page.File, id uint64) (graphpage.Page, error) {
	buf, err := pf.ReadPage(id)
	if err != nil {
		return graphpage.Page{}, fmt.Errorf("crawler: %w: %v", errs.ErrIO, err)
	}
	pg, err := graphpage.Decode(buf)
	if err != nil {
		return graphpage.Page{}, fmt.Errorf("crawler: %w: %v", errs.ErrCorruption, err)
	}
	return pg, nil
}
