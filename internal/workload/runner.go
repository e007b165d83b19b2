package workload

import (
	"github.com/xDarkicex/touchgraph/internal/crawler"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// QueryFunc runs a single query box against some crawler and returns
// its results and stats. Exact.Query already satisfies this signature;
// Prefetching.Query must be wrapped down to its embedded Stats, since
// its richer PrefetchStats return type would otherwise force a second
// QueryFunc shape for no benefit to the aggregator below.
type QueryFunc func(box spatial.Box) ([]crawler.Result, crawler.Stats, error)

// StepResult is one executed box within a Query (a Range or Point
// query has exactly one; a Moving query has one per trajectory box).
type StepResult struct {
	Points []crawler.Result
	Stats  crawler.Stats
}

// Outcome is the full result of running a Query: one StepResult per
// box, in trajectory order.
type Outcome struct {
	Query Query
	Steps []StepResult
}

// Run executes q's boxes in order against run, one step per box
// (spec §4.10: a Moving query is "executed as sequential range
// queries"). BFS-frontier reuse across consecutive overlapping Moving
// steps is left unimplemented, as the spec marks it optional.
func Run(q Query, run QueryFunc) (Outcome, error) {
	out := Outcome{Query: q, Steps: make([]StepResult, 0, len(q.Boxes))}
	for _, box := range q.Boxes {
		points, stats, err := run(box)
		if err != nil {
			return out, err
		}
		out.Steps = append(out.Steps, StepResult{Points: points, Stats: stats})
	}
	return out, nil
}

// TotalStats sums every step's Stats into one summary row, the shape
// spec §4.10's per-query aggregation needs for a Moving trajectory.
func (o Outcome) TotalStats() crawler.Stats {
	var total crawler.Stats
	for _, s := range o.Steps {
		total.SeedIOs += s.Stats.SeedIOs
		total.MetadataIOs += s.Stats.MetadataIOs
		total.PayloadIOs += s.Stats.PayloadIOs
		total.ResultPoints += s.Stats.ResultPoints
		total.UselessPoints += s.Stats.UselessPoints
		total.SeedTime += s.Stats.SeedTime
		total.CrawlTime += s.Stats.CrawlTime
	}
	return total
}

// Points flattens every step's results into one slice, in step order.
func (o Outcome) Points() []crawler.Result {
	var all []crawler.Result
	for _, s := range o.Steps {
		all = append(all, s.Points...)
	}
	return all
}
