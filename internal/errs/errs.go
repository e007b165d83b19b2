// Package errs defines the error kinds shared across the core (spec
// §7). Every I/O, parse, corruption or lookup failure returned by a
// build or query operation wraps exactly one of these sentinels, so
// callers can classify failures with errors.Is regardless of which
// component raised them. Invalid options are reported as plain errors.
package errs

import "errors"

var (
	// ErrIO covers failure to open, read, or write any file.
	ErrIO = errors.New("io error")
	// ErrParse covers a malformed stream or query file.
	ErrParse = errors.New("parse error")
	// ErrCorruption covers a structural invariant violated at runtime:
	// page size mismatch, unresolvable neighbour id, duplicate id-map
	// insert, metadata count mismatch.
	ErrCorruption = errors.New("corruption")
	// ErrNotFound covers an expected lookup that returned nothing where
	// the algorithm requires a hit.
	ErrNotFound = errors.New("not found")
)

// Phase names used in diagnostic lines (spec §7 "the source phase").
const (
	PhaseParse      = "parse"
	PhasePack       = "pack"
	PhaseRewrite    = "rewrite"
	PhaseSeedBuild  = "seed-build"
	PhaseSeedQuery  = "seed-query"
	PhaseCrawl      = "crawl"
)
