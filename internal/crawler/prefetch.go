package crawler

import (
	"fmt"
	"sort"
	"time"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/seedindex"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// DefaultCacheCapacity is the prefetching crawler's default page
// cache size.
const DefaultCacheCapacity = 256

// DefaultPrefetchWidth is how many top-scored neighbours get a
// speculative read per page visited.
const DefaultPrefetchWidth = 2

// PrefetchStats extends Stats with the prefetch telemetry spec §4.9
// requires: prefetch hits, edges considered, prediction comparisons,
// and entry candidates.
type PrefetchStats struct {
	Stats
	PrefetchEdgesConsidered int
	PredictionComparisons   int
	PrefetchHits            int
	EntryCandidates         int
}

// Prefetching is the speculative-fetch crawler (spec §4.9): same BFS
// skeleton as Exact, but every page read triggers asynchronous-style
// speculative reads of its most promising unvisited neighbours, kept
// warm in an LRU cache. Correctness is identical to Exact; a
// prefetch that's never consumed is simply discarded.
type Prefetching struct {
	seed      *seedindex.Index
	pf        *page.File
	cache     *pageCache
	predictor *predictor
	width     int
}

// NewPrefetching builds a prefetching crawler over seed and pf, with
// the given cache capacity and prefetch width (DefaultCacheCapacity /
// DefaultPrefetchWidth when <= 0).
func NewPrefetching(seed *seedindex.Index, pf *page.File, cacheCapacity, width int) *Prefetching {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultCacheCapacity
	}
	if width <= 0 {
		width = DefaultPrefetchWidth
	}
	return &Prefetching{seed: seed, pf: pf, cache: newPageCache(cacheCapacity), predictor: newPredictor(), width: width}
}

// Query runs the BFS crawl for q, identical in result to Exact.Query,
// issuing speculative prefetches along the way.
func (c *Prefetching) Query(q spatial.Box) (results []Result, stats PrefetchStats, err error) {
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
	predecessor := make(map[uint64]uint64)
	wasPrefetched := make(map[uint64]bool)
	queue := []uint64{seedPage}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		pg, hitCache, err := c.readThroughCache(p)
		if err != nil {
			return nil, stats, err
		}
		if hitCache {
			if wasPrefetched[p] {
				stats.PrefetchHits++
			}
		} else {
			stats.PayloadIOs++
		}

		pageUseful := false
		for _, r := range pg.Records {
			if spatial.ContainsPoint(q, r.Coords) {
				results = append(results, Result{ID: r.ID, Coords: r.Coords})
				stats.ResultPoints++
				pageUseful = true
			} else {
				stats.UselessPoints++
			}
		}
		if pred, ok := predecessor[p]; ok {
			c.predictor.record(pred, p, pageUseful)
		}

		meta, err := c.seed.MetadataForPage(p)
		stats.MetadataIOs++
		if err != nil {
			return nil, stats, fmt.Errorf("crawler: %w: %v", errs.ErrCorruption, err)
		}

		type candidate struct {
			page  uint64
			score float64
		}
		var candidates []candidate
		for _, n := range meta.PageLinks {
			stats.PrefetchEdgesConsidered++
			if visited[n] {
				continue
			}
			nmeta, err := c.seed.MetadataForPage(n)
			stats.MetadataIOs++
			if err != nil {
				return nil, stats, fmt.Errorf("crawler: %w: %v", errs.ErrCorruption, err)
			}
			if !spatial.Overlap(q, nmeta.PartitionMBR) {
				continue
			}
			visited[n] = true
			predecessor[n] = p
			queue = append(queue, n)
			candidates = append(candidates, candidate{page: n, score: c.predictor.score(p, n)})
			stats.EntryCandidates++
		}

		sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		for i, cand := range candidates {
			if i >= c.width {
				break
			}
			stats.PredictionComparisons++
			if _, cached := c.cache.get(cand.page); cached {
				continue
			}
			npg, err := readPage(c.pf, cand.page)
			if err != nil {
				return nil, stats, err
			}
			c.cache.put(cand.page, npg)
			wasPrefetched[cand.page] = true
		}
	}

	return results, stats, nil
}

func (c *Prefetching) readThroughCache(id uint64) (graphpage.Page, bool, error) {
	if pg, ok := c.cache.get(id); ok {
		return pg, true, nil
	}
	pg, err := readPage(c.pf, id)
	if err != nil {
		return graphpage.Page{}, false, err
	}
	c.cache.put(id, pg)
	return pg, false, nil
}
