package packer

import (
	"fmt"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/graphpage"
	"github.com/xDarkicex/touchgraph/internal/idmap"
	"github.com/xDarkicex/touchgraph/internal/page"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// Metadata is one page's summary, produced by Rewrite and consumed by
// the seed-index bulk-loader (spec §4.5.3/§4.5.4, C7).
type Metadata struct {
	PageID       uint64
	PageMBR      spatial.Box
	PartitionMBR spatial.Box
	PageLinks    []uint64
}

// Rewrite makes the second sequential pass over every page written by
// a packer (spec §4.5.3): each vertex's remaining neighbour ids are
// looked up in the id-map and overwritten in place with the
// neighbour's page id, the page is rewritten to the same page id, and
// a Metadata record is computed. Pages are visited and rewritten in
// ascending page id order.
func Rewrite(pf *page.File, ids *idmap.Tree) ([]Metadata, error) {
	n := pf.NumPages()
	metas := make([]Metadata, 0, n)

	for pageID := uint64(0); pageID < uint64(n); pageID++ {
		buf, err := pf.ReadPage(pageID)
		if err != nil {
			return nil, fmt.Errorf("packer: %w: %v", errs.ErrIO, err)
		}
		pg, err := graphpage.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("packer: %w: %v", errs.ErrCorruption, err)
		}
		if len(pg.Records) == 0 {
			continue
		}

		owned := ownedSet(pg.Records)
		pageMBR := spatial.EmptyBox()
		partitionMBR := spatial.EmptyBox()
		linkSet := make(map[uint64]bool)

		rewritten := make([]graphpage.Record, len(pg.Records))
		for i, r := range pg.Records {
			pageMBR = spatial.Union(pageMBR, spatial.BoxFromPoint(r.Coords))
			partitionMBR = spatial.Union(partitionMBR, r.VMBR)

			links := make([]uint32, 0, len(r.Neighbours))
			for _, nbID := range r.Neighbours {
				if owned[nbID] {
					// Invariant (spec §4.5.3): no neighbour id may
					// equal a vertex id stored on the same page.
					continue
				}
				nbPage, err := ids.PointQuery(nbID)
				if err != nil {
					return nil, fmt.Errorf("packer: rewriting neighbour %d of vertex %d on page %d: %w", nbID, r.ID, pageID, err)
				}
				if nbPage == pageID {
					continue
				}
				if nbPage > uint64(^uint32(0)) {
					return nil, fmt.Errorf("packer: %w: page id %d does not fit the 32-bit neighbour field", errs.ErrCorruption, nbPage)
				}
				links = append(links, uint32(nbPage))
				linkSet[nbPage] = true
			}
			rewritten[i] = graphpage.Record{ID: r.ID, Coords: r.Coords, VMBR: r.VMBR, Neighbours: links}
		}

		out, err := graphpage.Encode(rewritten, pf.PageSize())
		if err != nil {
			return nil, fmt.Errorf("packer: %w: %v", errs.ErrCorruption, err)
		}
		if err := pf.WritePage(pageID, out); err != nil {
			return nil, fmt.Errorf("packer: %w: %v", errs.ErrIO, err)
		}

		links := make([]uint64, 0, len(linkSet))
		for p := range linkSet {
			links = append(links, p)
		}
		metas = append(metas, Metadata{
			PageID:       pageID,
			PageMBR:      pageMBR,
			PartitionMBR: partitionMBR,
			PageLinks:    links,
		})
	}
	return metas, nil
}
