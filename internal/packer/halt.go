package packer

import "github.com/xDarkicex/touchgraph/internal/graphpage"

// DefaultChunkSize is the number of vertices HALT partitions at once
// (spec §4.5.2 "fixed-size chunks, e.g. 500 000 vertices").
const DefaultChunkSize = 500_000

// Halt is the "HALT"-style locality-aware packer (spec §4.5.2): it
// accumulates a chunk of vertices, graph-partitions the chunk to keep
// Delaunay neighbours on the same page, and writes one page per
// partition (splitting further on overflow).
type Halt struct {
	w         *Writer
	chunkSize int
	buf       []graphpage.Record
}

// NewHalt returns a Halt packer writing through w, partitioning in
// chunks of chunkSize vertices (DefaultChunkSize if <= 0).
func NewHalt(w *Writer, chunkSize int) *Halt {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Halt{w: w, chunkSize: chunkSize}
}

// Add buffers v, partitioning and flushing the chunk once it reaches
// the configured chunk size.
func (h *Halt) Add(v graphpage.Record) error {
	h.buf = append(h.buf, v)
	if len(h.buf) >= h.chunkSize {
		return h.flushChunk()
	}
	return nil
}

// Finish partitions and flushes whatever remains buffered.
func (h *Halt) Finish() error {
	if len(h.buf) == 0 {
		return nil
	}
	return h.flushChunk()
}

func (h *Halt) flushChunk() error {
	chunk := h.buf
	h.buf = nil

	g := buildChunkGraph(chunk)
	parts := partitionChunk(g, chunk, h.w.pageSize)

	var overflow []graphpage.Record
	for _, part := range parts {
		fit, spill, err := peelUntilFits(part, h.w.pageSize)
		if err != nil {
			return err
		}
		if _, err := h.w.WritePage(fit); err != nil {
			return err
		}
		overflow = append(overflow, spill...)
	}

	// Overflow remainders from every partition are concatenated and
	// written as sequential pages, peeling further as needed (spec
	// §4.5.2 step 3).
	for len(overflow) > 0 {
		fit, spill, err := peelUntilFits(overflow, h.w.pageSize)
		if err != nil {
			return err
		}
		if _, err := h.w.WritePage(fit); err != nil {
			return err
		}
		overflow = spill
	}
	return nil
}
