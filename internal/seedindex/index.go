// Package seedindex is the R-tree-over-page-metadata oracle (spec
// §4.7, C7/C8 composition): it bulk-loads or incrementally builds an
// internal/rtree.Tree keyed on partition MBR, and is the only
// component that touches the R-tree library directly — the crawler
// depends on it only through Seed and MetadataForPage.
package seedindex

import (
	"fmt"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/rtree"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// Index is a read-only seed index once built. Alongside the spatial
// R-tree it keeps a page-id-keyed side table so the crawler can fetch
// a specific page's metadata directly ("or a metadata-page read",
// spec §4.8) without a spatial descent.
type Index struct {
	tree       rtree.Tree
	metaByPage map[uint64]packer.Metadata
}

// Build bulk-loads an Index from the complete stream of page metadata
// produced by the rewrite pass (spec §4.5.4).
func Build(metas []packer.Metadata, leafCap int) (*Index, error) {
	entries := make([]rtree.Entry, len(metas))
	byPage := make(map[uint64]packer.Metadata, len(metas))
	for i, m := range metas {
		payload, err := encodeMetadata(m)
		if err != nil {
			return nil, err
		}
		entries[i] = rtree.Entry{MBR: m.PartitionMBR, PageID: m.PageID, Payload: payload}
		byPage[m.PageID] = m
	}
	return &Index{tree: rtree.BulkLoad(entries, leafCap), metaByPage: byPage}, nil
}

// BuildDynamic returns an Index growing one page's metadata at a time
// via the insertion-based tree, for callers without the full metadata
// set up front.
func BuildDynamic(maxEntries int) *Index {
	return &Index{tree: rtree.NewDynamic(maxEntries), metaByPage: make(map[uint64]packer.Metadata)}
}

// Insert adds one page's metadata. Only valid on a BuildDynamic index.
func (idx *Index) Insert(m packer.Metadata) error {
	dyn, ok := idx.tree.(*rtree.Dynamic)
	if !ok {
		return fmt.Errorf("seedindex: Insert requires an index built with BuildDynamic")
	}
	payload, err := encodeMetadata(m)
	if err != nil {
		return err
	}
	if err := dyn.Insert(rtree.Entry{MBR: m.PartitionMBR, PageID: m.PageID, Payload: payload}); err != nil {
		return err
	}
	idx.metaByPage[m.PageID] = m
	return nil
}

// MetadataForPage returns the metadata for a specific page id without
// a spatial descent (spec §4.8 "look up n's metadata via the seed
// index (or a metadata-page read)").
func (idx *Index) MetadataForPage(pageID uint64) (packer.Metadata, error) {
	m, ok := idx.metaByPage[pageID]
	if !ok {
		return packer.Metadata{}, fmt.Errorf("seedindex: %w: no metadata for page %d", errs.ErrNotFound, pageID)
	}
	return m, nil
}

// Len returns the number of pages indexed.
func (idx *Index) Len() int { return idx.tree.Len() }

// Intersects visits every page whose partition MBR intersects query
// (spec §4.7 "intersects(query_box, visitor)").
func (idx *Index) Intersects(query spatial.Box, visit func(packer.Metadata) bool) error {
	var decodeErr error
	err := idx.tree.Intersects(query, func(e rtree.Entry) bool {
		m, err := decodeMetadata(e.Payload, e.MBR)
		if err != nil {
			decodeErr = err
			return false
		}
		return visit(m)
	})
	if err != nil {
		return err
	}
	return decodeErr
}

// Seed descends by overlap and, at each candidate page, reads the
// referenced graph page and tests every vertex against query,
// returning the first page holding a vertex inside it (spec §4.7
// "seed(query_box, visitor)"). found is false, with a nil error, when
// no page in the index holds a matching vertex.
func (idx *Index) Seed(query spatial.Box, pf *page.File) (pageID uint64, found bool, err error) {
	var opErr error
	walkErr := idx.Intersects(query, func(m packer.Metadata) bool {
		buf, rerr := pf.ReadPage(m.PageID)
		if rerr != nil {
			opErr = fmt.Errorf("seedindex: %w: %v", errs.ErrIO, rerr)
			return false
		}
		pg, derr := graphpage.Decode(buf)
		if derr != nil {
			opErr = fmt.Errorf("seedindex: %w: %v", errs.ErrCorruption, derr)
			return false
		}
		for _, r := range pg.Records {
			if spatial.ContainsPoint(query, r.Coords) {
				pageID, found = m.PageID, true
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return 0, false, walkErr
	}
	if opErr != nil {
		return 0, false, opErr
	}
	return pageID, found, nil
}
