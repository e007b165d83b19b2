// Package packer turns Hilbert-sorted vertices into graph pages
// (spec §4.5, C6): two interchangeable packing strategies producing
// the same guarantees (every vertex lands on exactly one page, every
// page fits the page budget, every vertex gains an id-map entry), a
// link-rewrite pass turning intra-buffer vertex references into
// cross-page page references, and the per-page metadata those
// references feed into the seed index. Grounded on
// original_source/lib/bbpdias/FLATGenerator.cpp and
// HALTGenerator.cpp's two-pass "pack, then rewrite" build shape,
// expressed in Go over internal/page and internal/idmap rather than
// libspatialindex's storage manager.
package packer

import (
	"fmt"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/idmap"
	"github.com/xDarkicex/touchgraph/internal/page"
)

// Writer appends graph pages to the backing file and records each
// written vertex's page id in the id-map. Both packing strategies
// share it so page-writing and id-map bookkeeping stay in one place.
type Writer struct {
	pf       *page.File
	ids      *idmap.Tree
	pageSize int
}

// NewWriter builds a Writer over an already-open graph-page file and
// id-map.
func NewWriter(pf *page.File, ids *idmap.Tree) *Writer {
	return &Writer{pf: pf, ids: ids, pageSize: pf.PageSize()}
}

// WritePage shrinks records against their own page membership,
// encodes and appends the page, and inserts a (vertex_id -> page_id)
// entry for every record (spec §4.5.1/§4.5.2's shared guarantee).
func (w *Writer) WritePage(records []graphpage.Record) (uint64, error) {
	shrunk := graphpage.Shrink(records, ownedSet(records))
	buf, err := graphpage.Encode(shrunk, w.pageSize)
	if err != nil {
		return 0, fmt.Errorf("packer: %w: %v", errs.ErrCorruption, err)
	}
	pageID, err := w.pf.Append(buf)
	if err != nil {
		return 0, fmt.Errorf("packer: %w: %v", errs.ErrIO, err)
	}
	for _, r := range records {
		if err := w.ids.Insert(r.ID, pageID); err != nil {
			return 0, err
		}
	}
	return pageID, nil
}

func ownedSet(records []graphpage.Record) map[uint32]bool {
	owned := make(map[uint32]bool, len(records))
	for _, r := range records {
		owned[r.ID] = true
	}
	return owned
}

// peelUntilFits peels records off the tail of buf until its shrunk
// size fits pageSize, returning what fits and the peeled remainder in
// original order (spec §4.5.1's peel-and-retry rule, shared by both
// packers' overflow handling).
func peelUntilFits(buf []graphpage.Record, pageSize int) (fit, overflow []graphpage.Record, err error) {
	fit = buf
	for graphpage.ShrunkSize(fit, ownedSet(fit)) > pageSize {
		if len(fit) == 1 {
			return nil, nil, fmt.Errorf("packer: %w: vertex %d alone exceeds page size %d", errs.ErrCorruption, fit[0].ID, pageSize)
		}
		overflow = append([]graphpage.Record{fit[len(fit)-1]}, overflow...)
		fit = fit[:len(fit)-1]
	}
	return fit, overflow, nil
}
