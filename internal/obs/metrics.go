package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all touchgraph metrics. Each instance owns a private
// Registry rather than registering against prometheus's package-level
// DefaultRegisterer: Build and Open each construct their own Metrics,
// and a shared global registry would panic on the second construction
// within one process (duplicate collector registration).
type Metrics struct {
	Registry *prometheus.Registry

	VerticesPacked prometheus.Counter
	PagesWritten   prometheus.Counter
	BuildDuration  prometheus.Histogram
	QueriesTotal   prometheus.Counter
	QueryErrors    prometheus.Counter
	QueryLatency   prometheus.Histogram
	SeedIOs        prometheus.Counter
	MetadataIOs    prometheus.Counter
	PayloadIOs     prometheus.Counter
	PrefetchHits   prometheus.Counter
	ResultPoints   prometheus.Counter
}

// NewMetrics creates a fresh Metrics instance backed by its own private
// Registry, so that repeated calls within one process (one per Build
// or Open) never collide over collector names.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	fac := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		VerticesPacked: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_vertices_packed_total",
			Help: "Total vertices written into graph pages during a build",
		}),
		PagesWritten: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_pages_written_total",
			Help: "Total graph pages written during a build",
		}),
		BuildDuration: fac.NewHistogram(prometheus.HistogramOpts{
			Name: "touchgraph_build_duration_seconds",
			Help: "Wall-clock duration of a full build pass",
		}),
		QueriesTotal: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_queries_total",
			Help: "Total queries executed",
		}),
		QueryErrors: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_query_errors_total",
			Help: "Total query executions that returned an error",
		}),
		QueryLatency: fac.NewHistogram(prometheus.HistogramOpts{
			Name: "touchgraph_query_latency_seconds",
			Help: "End-to-end query latency (seed + crawl)",
		}),
		SeedIOs: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_seed_ios_total",
			Help: "Total R-tree seed lookups performed",
		}),
		MetadataIOs: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_metadata_ios_total",
			Help: "Total page-metadata lookups performed during crawls",
		}),
		PayloadIOs: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_payload_ios_total",
			Help: "Total graph page reads performed during crawls",
		}),
		PrefetchHits: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_prefetch_hits_total",
			Help: "Total crawl steps served from a speculative prefetch",
		}),
		ResultPoints: fac.NewCounter(prometheus.CounterOpts{
			Name: "touchgraph_result_points_total",
			Help: "Total points returned across all queries",
		}),
	}
}

// ObserveQuery folds one completed query's stats into the query
// counters and histograms.
func (m *Metrics) ObserveQuery(seedIOs, metadataIOs, payloadIOs, prefetchHits, resultPoints int, latencySeconds float64, err error) {
	m.QueriesTotal.Inc()
	if err != nil {
		m.QueryErrors.Inc()
		return
	}
	m.SeedIOs.Add(float64(seedIOs))
	m.MetadataIOs.Add(float64(metadataIOs))
	m.PayloadIOs.Add(float64(payloadIOs))
	m.PrefetchHits.Add(float64(prefetchHits))
	m.ResultPoints.Add(float64(resultPoints))
	m.QueryLatency.Observe(latencySeconds)
}
