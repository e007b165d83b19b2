package touchgraph

import (
	"fmt"
	"os"
	"time"

	"github.com/xDarkicex/touchgraph/internal/delaunay"
	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/extsort"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/hilbert"
	"github.com/xDarkicex/touchgraph/internal/idmap"
	"github.com/xDarkicex/touchgraph/internal/logging"
	"github.com/xDarkicex/touchgraph/internal/obs"
	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/seedindex"
	"go.uber.org/zap"
)

// filenames computes the three output paths Build produces and Open
// reads back, following spec §6.3's "<stem>_graph, <stem>_seed ...
// <stem>_btree" naming.
type filenames struct {
	graph string
	seed  string
	btree string
}

func stemFilenames(stem string) filenames {
	return filenames{graph: stem + "_graph", seed: stem + "_seed", btree: stem + "_btree"}
}

// BuildStats summarizes one completed build pass.
type BuildStats struct {
	VerticesPacked int
	PagesWritten   int
	Duration       time.Duration
}

// rotatingPacker is the shared shape of Flat and Halt: buffer, write
// on threshold, flush the remainder on Finish.
type rotatingPacker interface {
	Add(graphpage.Record) error
	Finish() error
}

// Build runs the full pipeline (spec §4.11): parse the Delaunay stream
// at streamPath, external-sort its vertices into Hilbert order, pack
// them into graph pages, rewrite neighbour ids to page ids, and build
// the seed index — writing outputStem's three files.
func Build(streamPath, outputStem string, opts ...BuildOption) (*BuildStats, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.worldBoundsSet {
		return nil, fmt.Errorf("touchgraph: WithWorldBounds is required for Build")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	var metrics *obs.Metrics
	if cfg.MetricsEnabled {
		metrics = obs.NewMetrics()
	}

	start := time.Now()
	names := stemFilenames(outputStem)

	in, err := os.Open(streamPath)
	if err != nil {
		return nil, fmt.Errorf("touchgraph: %w: %v", errs.ErrIO, err)
	}
	defer in.Close()

	pf, err := page.Create(names.graph, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("touchgraph: %w: %v", errs.ErrIO, err)
	}
	defer pf.Close()

	ids, err := idmap.Create(names.btree, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("touchgraph: %w: %v", errs.ErrIO, err)
	}
	defer ids.Close()

	logger.Info("build: parsing stream", zap.String("phase", errs.PhaseParse), zap.String("stream", streamPath))

	enc := hilbert.NewEncoder(cfg.HilbertBits,
		[3]float64{float64(cfg.WorldLow[0]), float64(cfg.WorldLow[1]), float64(cfg.WorldLow[2])},
		[3]float64{float64(cfg.WorldHigh[0]), float64(cfg.WorldHigh[1]), float64(cfg.WorldHigh[2])},
	)
	codec := extsort.Codec[graphpage.Record]{
		Encode: func(r graphpage.Record) []byte { return r.Encode(nil) },
		Decode: func(b []byte) (graphpage.Record, error) {
			r, _, err := graphpage.DecodeRecord(b)
			return r, err
		},
		KeyOf: func(r graphpage.Record) hilbert.Key {
			return enc.Encode(r.Coords[0], r.Coords[1], r.Coords[2])
		},
	}
	sorter := extsort.New(codec, cfg.SortBudgetBytes, cfg.SortTempDir)

	sink := func(v delaunay.Vertex) error {
		return sorter.Insert(graphpage.Record{ID: v.ID, Coords: v.Coords, VMBR: v.VMBR, Neighbours: v.Neighbours})
	}
	if err := delaunay.Parse(in, sink); err != nil {
		return nil, fmt.Errorf("touchgraph: %w: %v", errs.ErrParse, err)
	}

	logger.Info("build: packing pages", zap.String("phase", errs.PhasePack))

	w := packer.NewWriter(pf, ids)
	var rp rotatingPacker
	switch cfg.Packer {
	case PackerHalt:
		rp = packer.NewHalt(w, cfg.ChunkSize)
	default:
		rp = packer.NewFlat(w)
	}

	var vertexCount int
	finishErr := sorter.Finish(func(r graphpage.Record) error {
		vertexCount++
		return rp.Add(r)
	})
	if finishErr != nil {
		logger.Error("build: sort/pack failed", zap.Error(finishErr))
		return nil, finishErr
	}
	if err := rp.Finish(); err != nil {
		logger.Error("build: pack flush failed", zap.Error(err))
		return nil, err
	}

	logger.Info("build: rewriting neighbour links", zap.String("phase", errs.PhaseRewrite))
	metas, err := packer.Rewrite(pf, ids)
	if err != nil {
		logger.Error("build: rewrite failed", zap.Error(err))
		return nil, err
	}

	logger.Info("build: writing seed index", zap.String("phase", errs.PhaseSeedBuild), zap.Int("pages", len(metas)))
	if err := seedindex.Save(names.seed, metas); err != nil {
		logger.Error("build: seed index save failed", zap.Error(err))
		return nil, err
	}

	stats := &BuildStats{VerticesPacked: vertexCount, PagesWritten: len(metas), Duration: time.Since(start)}
	if metrics != nil {
		metrics.VerticesPacked.Add(float64(stats.VerticesPacked))
		metrics.PagesWritten.Add(float64(stats.PagesWritten))
		metrics.BuildDuration.Observe(stats.Duration.Seconds())
	}
	return stats, nil
}
