// Package touchgraph is the public entry point to the external-memory
// spatial range-query system (spec §0): Build turns a Delaunay stream
// into the on-disk graph/seed/id-map files, Open re-opens them
// read-only, and Graph.Query answers range/point/moving queries
// against the result. Everything else lives under internal/.
//
// Grounded on xDarkicex-libravdb/libravdb's Database/Config/Option
// shape, rewritten for a build+query pipeline over external-memory
// files instead of an in-process vector store.
package touchgraph

import "github.com/xDarkicex/touchgraph/internal/errs"

// Re-exported error sentinels (spec §7): every I/O, parse, corruption
// or lookup failure from Build, Open, or Query wraps exactly one of
// these; an invalid option, or a Build without WithWorldBounds, returns
// a plain error instead. Follows the teacher's package-level var-block
// style in libravdb/errors.go.
var (
	ErrIO         = errs.ErrIO
	ErrParse      = errs.ErrParse
	ErrCorruption = errs.ErrCorruption
	ErrNotFound   = errs.ErrNotFound
)
