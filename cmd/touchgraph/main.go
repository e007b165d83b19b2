// Command touchgraph is the CLI surface spec §6.3 describes: build an
// index from a Delaunay stream, run a query file against it, or
// generate a synthetic query file. Grounded on the teacher's
// examples/*.go top-level main programs, restructured as a
// conventional cmd/ binary and on t-kawata-mycute/src/main.go's
// os.Args[1]-switch-plus-flag.NewFlagSet subcommand style.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xDarkicex/touchgraph"
	"github.com/xDarkicex/touchgraph/internal/spatial"
	"github.com/xDarkicex/touchgraph/internal/workload"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "genqueries":
		err = runGenQueries(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Printf("touchgraph: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: touchgraph <command> [arguments]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  build -lo x,y,z -hi x,y,z [-page-size N] [-packer flat|halt] <stream.sva> <output-stem>")
	fmt.Fprintln(os.Stderr, "  query [-page-size N] [-prefetch] <input-stem> <queries-file>")
	fmt.Fprintln(os.Stderr, "  genqueries -lo x,y,z -hi x,y,z -count N -volume-fraction F [-seed N] <output-file>")
	fmt.Fprintln(os.Stderr, "flags go before the positional arguments")
}

func runBuild(args []string) error {
	fs := newFlagSet("build")
	lo := fs.String("lo", "", "world bounds low corner, \"x,y,z\" (required)")
	hi := fs.String("hi", "", "world bounds high corner, \"x,y,z\" (required)")
	pageSize := fs.Int("page-size", 4096, "graph page size in bytes")
	packerName := fs.String("packer", "flat", "packing strategy: flat or halt")
	chunkSize := fs.Int("chunk-size", 0, "HALT packer chunk size (0 = default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("build: expected <stream.sva> <output-stem>, got %d arguments", fs.NArg())
	}
	streamPath, outputStem := fs.Arg(0), fs.Arg(1)

	loVertex, err := parseVertex(*lo)
	if err != nil {
		return fmt.Errorf("build: -lo: %w", err)
	}
	hiVertex, err := parseVertex(*hi)
	if err != nil {
		return fmt.Errorf("build: -hi: %w", err)
	}

	opts := []touchgraph.BuildOption{
		touchgraph.WithPageSize(*pageSize),
		touchgraph.WithWorldBounds(loVertex, hiVertex),
	}
	switch strings.ToLower(*packerName) {
	case "flat":
		opts = append(opts, touchgraph.WithPacker(touchgraph.PackerFlat))
	case "halt":
		opts = append(opts, touchgraph.WithPacker(touchgraph.PackerHalt))
		if *chunkSize > 0 {
			opts = append(opts, touchgraph.WithChunkSize(*chunkSize))
		}
	default:
		return fmt.Errorf("build: unknown -packer %q (want flat or halt)", *packerName)
	}

	start := time.Now()
	stats, err := touchgraph.Build(streamPath, outputStem, opts...)
	if err != nil {
		return err
	}
	fmt.Printf("vertices packed: %d\n", stats.VerticesPacked)
	fmt.Printf("pages written:   %d\n", stats.PagesWritten)
	fmt.Printf("build duration:  %s\n", time.Since(start))
	return nil
}

func runQuery(args []string) error {
	fs := newFlagSet("query")
	pageSize := fs.Int("page-size", 4096, "graph page size in bytes, must match the build")
	prefetch := fs.Bool("prefetch", false, "use the speculative-prefetch crawler")
	cacheCap := fs.Int("cache-capacity", 64, "prefetch crawler LRU cache capacity, in pages")
	prefetchWidth := fs.Int("prefetch-width", 4, "prefetch crawler speculative fan-out width")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("query: expected <input-stem> <queries-file>, got %d arguments", fs.NArg())
	}
	inputStem, queriesPath := fs.Arg(0), fs.Arg(1)

	openOpts := []touchgraph.OpenOption{touchgraph.WithOpenPageSize(*pageSize)}
	if *prefetch {
		openOpts = append(openOpts, touchgraph.WithPrefetching(*cacheCap, *prefetchWidth))
	}
	g, err := touchgraph.Open(inputStem, openOpts...)
	if err != nil {
		return err
	}
	defer g.Close()

	f, err := os.Open(queriesPath)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer f.Close()

	queries, err := workload.ParseFile(f)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	var total workload.Outcome
	for i, q := range queries {
		outcome, err := g.RunWorkload(q)
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		stats := outcome.TotalStats()
		fmt.Printf("query %d (%s): results=%d useless=%d seed_ios=%d metadata_ios=%d payload_ios=%d crawl_time=%s\n",
			i, q.Kind, stats.ResultPoints, stats.UselessPoints, stats.SeedIOs, stats.MetadataIOs, stats.PayloadIOs, stats.CrawlTime)
		total.Steps = append(total.Steps, outcome.Steps...)
	}
	grand := total.TotalStats()
	fmt.Printf("total: queries=%d results=%d seed_ios=%d metadata_ios=%d payload_ios=%d\n",
		len(queries), grand.ResultPoints, grand.SeedIOs, grand.MetadataIOs, grand.PayloadIOs)
	return nil
}

func runGenQueries(args []string) error {
	fs := newFlagSet("genqueries")
	lo := fs.String("lo", "", "world bounds low corner, \"x,y,z\" (required)")
	hi := fs.String("hi", "", "world bounds high corner, \"x,y,z\" (required)")
	count := fs.Int("count", 100, "number of queries to generate")
	volumeFraction := fs.Float64("volume-fraction", 0.01, "fraction of world volume each query box covers")
	seed := fs.Int64("seed", 1, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("genqueries: expected <output-file>, got %d arguments", fs.NArg())
	}
	outputPath := fs.Arg(0)

	loVertex, err := parseVertex(*lo)
	if err != nil {
		return fmt.Errorf("genqueries: -lo: %w", err)
	}
	hiVertex, err := parseVertex(*hi)
	if err != nil {
		return fmt.Errorf("genqueries: -hi: %w", err)
	}
	world := spatial.Box{Low: loVertex, High: hiVertex}

	queries := workload.GenerateRandom(world, *count, *volumeFraction, rand.New(rand.NewSource(*seed)))

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("genqueries: %w", err)
	}
	defer out.Close()
	if err := workload.WriteFile(out, queries); err != nil {
		return fmt.Errorf("genqueries: %w", err)
	}
	fmt.Printf("wrote %d queries to %s\n", len(queries), outputPath)
	return nil
}

func parseVertex(s string) (spatial.Vertex, error) {
	if s == "" {
		return spatial.Vertex{}, fmt.Errorf("required, want \"x,y,z\"")
	}
	parts := strings.Split(s, ",")
	if len(parts) != spatial.Dims {
		return spatial.Vertex{}, fmt.Errorf("want %d comma-separated components, got %d in %q", spatial.Dims, len(parts), s)
	}
	var v spatial.Vertex
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return spatial.Vertex{}, fmt.Errorf("bad component %q in %q: %w", p, s, err)
		}
		v[i] = float32(n)
	}
	return v, nil
}
