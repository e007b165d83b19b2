package touchgraph

import (
	"fmt"
	"time"

	"github.com/xDarkicex/touchgraph/internal/crawler"
	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/logging"
	"github.com/xDarkicex/touchgraph/internal/obs"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/seedindex"
	"github.com/xDarkicex/touchgraph/internal/spatial"
	"github.com/xDarkicex/touchgraph/internal/workload"
	"go.uber.org/zap"
)

// Graph is a read-only opened index: a graph-page file plus its seed
// index, ready to answer range/point/moving queries (spec §4.8/§4.9).
// Mirrors the role of libravdb's Database, minus the mutable
// collection-management surface this read-only query engine has no
// use for.
type Graph struct {
	pf      *page.File
	seed    *seedindex.Index
	exact   *crawler.Exact
	pre     *crawler.Prefetching
	logger  *zap.Logger
	metrics *obs.Metrics
}

// Open reads back the files a prior Build wrote at outputStem and
// readies them for querying. The graph-page file is opened read-only:
// the query engine never mutates state (spec §7).
func Open(outputStem string, opts ...OpenOption) (*Graph, error) {
	cfg := defaultOpenConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	var metrics *obs.Metrics
	if cfg.MetricsEnabled {
		metrics = obs.NewMetrics()
	}

	names := stemFilenames(outputStem)

	metas, err := seedindex.Load(names.seed)
	if err != nil {
		return nil, err
	}
	pf, err := page.OpenReadOnly(names.graph, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("touchgraph: %w: %v", errs.ErrIO, err)
	}

	idx, err := seedindex.Build(metas, cfg.RTreeLeafCapacity)
	if err != nil {
		pf.Close()
		return nil, err
	}

	g := &Graph{pf: pf, seed: idx, logger: logger, metrics: metrics}
	if cfg.Prefetching {
		g.pre = crawler.NewPrefetching(idx, pf, cfg.CacheCapacity, cfg.PrefetchWidth)
	} else {
		g.exact = crawler.NewExact(idx, pf)
	}
	return g, nil
}

// Query answers a single range query box using whichever crawler Open
// configured (spec §4.8/§4.9). Correctness is identical between the
// exact and prefetching crawlers; only I/O telemetry differs.
func (g *Graph) Query(box spatial.Box) ([]crawler.Result, crawler.Stats, error) {
	start := time.Now()
	var (
		results      []crawler.Result
		stats        crawler.Stats
		prefetchHits int
		err          error
	)
	if g.pre != nil {
		var ps crawler.PrefetchStats
		results, ps, err = g.pre.Query(box)
		stats = ps.Stats
		prefetchHits = ps.PrefetchHits
	} else {
		results, stats, err = g.exact.Query(box)
	}
	g.logger.Debug("query: crawl complete", zap.String("phase", errs.PhaseCrawl), zap.Int("results", len(results)), zap.Error(err))
	if g.metrics != nil {
		g.metrics.ObserveQuery(stats.SeedIOs, stats.MetadataIOs, stats.PayloadIOs, prefetchHits, stats.ResultPoints, time.Since(start).Seconds(), err)
	}
	return results, stats, err
}

// RunWorkload executes every box in q sequentially against Query,
// returning one Outcome per query (spec §4.10).
func (g *Graph) RunWorkload(q workload.Query) (workload.Outcome, error) {
	return workload.Run(q, g.Query)
}

// Close releases the graph-page file. Open does not keep the seed
// index on disk reopened separately, so there is nothing else to
// release.
func (g *Graph) Close() error {
	if err := g.pf.Close(); err != nil {
		return fmt.Errorf("touchgraph: %w: %v", errs.ErrIO, err)
	}
	return nil
}
