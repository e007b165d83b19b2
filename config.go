package touchgraph

import (
	"fmt"

	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/spatial"
	"go.uber.org/zap"
)

// PackerKind selects which page-packing strategy Build uses (spec
// §4.5.1/§4.5.2).
type PackerKind int

const (
	// PackerFlat is the simple arrival-order packer.
	PackerFlat PackerKind = iota
	// PackerHalt is the locality-aware chunk-partitioning packer.
	PackerHalt
)

// BuildConfig controls Build. Construct it only through BuildOption
// values passed to Build; the zero value is not meaningful on its own
// since WorldLow/WorldHigh have no safe default (spec §4.2's Hilbert
// mapping needs real bounds up front, the build pipeline being a
// single pass over the stream per spec §4.11).
type BuildConfig struct {
	PageSize          int
	Packer            PackerKind
	ChunkSize         int
	SortBudgetBytes   int
	SortTempDir       string
	HilbertBits       uint
	WorldLow          spatial.Vertex
	WorldHigh         spatial.Vertex
	RTreeLeafCapacity int
	Logger            *zap.Logger
	MetricsEnabled    bool

	worldBoundsSet bool
}

// BuildOption configures a BuildConfig, following libravdb/options.go's
// functional-options pattern.
type BuildOption func(*BuildConfig) error

func defaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		PageSize:          4096,
		Packer:            PackerFlat,
		ChunkSize:         packer.DefaultChunkSize,
		SortBudgetBytes:   64 << 20, // 64MiB
		HilbertBits:       21,
		RTreeLeafCapacity: 32,
		MetricsEnabled:    true,
	}
}

// WithPageSize sets the on-disk graph-page size in bytes (default
// 4096, per spec §6.2).
func WithPageSize(bytes int) BuildOption {
	return func(c *BuildConfig) error {
		if bytes <= 0 {
			return fmt.Errorf("touchgraph: page size must be positive")
		}
		c.PageSize = bytes
		return nil
	}
}

// WithPacker selects the FLAT or HALT packing strategy.
func WithPacker(kind PackerKind) BuildOption {
	return func(c *BuildConfig) error {
		c.Packer = kind
		return nil
	}
}

// WithChunkSize sets the HALT packer's chunk size (spec §4.5.2);
// ignored by the FLAT packer.
func WithChunkSize(n int) BuildOption {
	return func(c *BuildConfig) error {
		if n <= 0 {
			return fmt.Errorf("touchgraph: chunk size must be positive")
		}
		c.ChunkSize = n
		return nil
	}
}

// WithSortBudget sets the external sort's in-memory run budget in
// bytes (spec §4.3).
func WithSortBudget(bytes int) BuildOption {
	return func(c *BuildConfig) error {
		if bytes <= 0 {
			return fmt.Errorf("touchgraph: sort budget must be positive")
		}
		c.SortBudgetBytes = bytes
		return nil
	}
}

// WithSortTempDir sets the directory external-sort spill runs are
// written to (os.TempDir if unset).
func WithSortTempDir(dir string) BuildOption {
	return func(c *BuildConfig) error {
		c.SortTempDir = dir
		return nil
	}
}

// WithHilbertBits sets the Hilbert encoder's bits per dimension
// (default 21, fitting 3*21=63 bits in a Key; spec §4.2).
func WithHilbertBits(bits uint) BuildOption {
	return func(c *BuildConfig) error {
		if bits == 0 || bits*3 > 64 {
			return fmt.Errorf("touchgraph: hilbert bits must be in (0, 21]")
		}
		c.HilbertBits = bits
		return nil
	}
}

// WithWorldBounds sets the coordinate bounds the Hilbert encoder scales
// into. Required: Build fails without it, since the build pipeline is
// a single pass over the stream and cannot discover bounds as it goes
// (spec §4.11).
func WithWorldBounds(lo, hi spatial.Vertex) BuildOption {
	return func(c *BuildConfig) error {
		for i := 0; i < spatial.Dims; i++ {
			if hi[i] < lo[i] {
				return fmt.Errorf("touchgraph: world bounds low must be <= high on every axis")
			}
		}
		c.WorldLow, c.WorldHigh = lo, hi
		c.worldBoundsSet = true
		return nil
	}
}

// WithRTreeLeafCapacity records a seed-index STR bulk-load leaf
// capacity in BuildConfig (spec §4.7). Build does not read it: the
// seed file stores only page metadata, and Open rebuilds the R-tree
// with the capacity set by WithOpenRTreeLeafCapacity.
func WithRTreeLeafCapacity(n int) BuildOption {
	return func(c *BuildConfig) error {
		if n <= 0 {
			return fmt.Errorf("touchgraph: rtree leaf capacity must be positive")
		}
		c.RTreeLeafCapacity = n
		return nil
	}
}

// WithLogger sets the logger Build reports its phase transitions and
// its sort/pack, rewrite and seed-save failures to (spec §7, §9);
// Graph.Query uses the logger set by WithOpenLogger instead. A nil
// logger defaults to zap's no-op logger.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *BuildConfig) error {
		c.Logger = l
		return nil
	}
}

// WithMetrics enables or disables Prometheus metrics collection
// (enabled by default).
func WithMetrics(enabled bool) BuildOption {
	return func(c *BuildConfig) error {
		c.MetricsEnabled = enabled
		return nil
	}
}

// OpenConfig controls Open and the crawler it builds.
type OpenConfig struct {
	PageSize          int
	RTreeLeafCapacity int
	Prefetching       bool
	CacheCapacity     int
	PrefetchWidth     int
	Logger            *zap.Logger
	MetricsEnabled    bool
}

// OpenOption configures an OpenConfig.
type OpenOption func(*OpenConfig) error

func defaultOpenConfig() *OpenConfig {
	return &OpenConfig{PageSize: 4096, RTreeLeafCapacity: 32, MetricsEnabled: true}
}

// WithOpenPageSize sets the graph-page size to expect when opening the
// graph file (must match the page size Build used).
func WithOpenPageSize(bytes int) OpenOption {
	return func(c *OpenConfig) error {
		if bytes <= 0 {
			return fmt.Errorf("touchgraph: page size must be positive")
		}
		c.PageSize = bytes
		return nil
	}
}

// WithOpenRTreeLeafCapacity sets the seed index's bulk-load leaf
// capacity used when rebuilding the in-memory R-tree at Open time.
func WithOpenRTreeLeafCapacity(n int) OpenOption {
	return func(c *OpenConfig) error {
		if n <= 0 {
			return fmt.Errorf("touchgraph: rtree leaf capacity must be positive")
		}
		c.RTreeLeafCapacity = n
		return nil
	}
}

// WithPrefetching switches Graph.Query to the speculative-prefetch
// crawler (spec §4.9, C10) instead of the plain exact crawler (C9).
func WithPrefetching(cacheCapacity, width int) OpenOption {
	return func(c *OpenConfig) error {
		c.Prefetching = true
		c.CacheCapacity = cacheCapacity
		c.PrefetchWidth = width
		return nil
	}
}

// WithOpenLogger sets Open's logger.
func WithOpenLogger(l *zap.Logger) OpenOption {
	return func(c *OpenConfig) error {
		c.Logger = l
		return nil
	}
}

// WithOpenMetrics enables or disables Prometheus metrics for the
// opened Graph.
func WithOpenMetrics(enabled bool) OpenOption {
	return func(c *OpenConfig) error {
		c.MetricsEnabled = enabled
		return nil
	}
}
