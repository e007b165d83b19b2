package graphpage

import (
	"encoding/binary"
	"fmt"

	"github.com/xDarkicex/touchgraph/internal/errs"
)

// Page is the decoded form of one graph page (spec §3): a fixed-size
// on-disk unit holding a header and a sequence of vertex records.
type Page struct {
	Records []Record
}

// ShrunkSize computes the serialized size of records assuming every
// neighbour id present in owned (a vertex id on the same page/buffer)
// is elided (spec §4.5 "shrinking"). It does not mutate records.
func ShrunkSize(records []Record, owned map[uint32]bool) int {
	size := headerBytes
	for _, r := range records {
		size += fixedRecordBytes
		for _, n := range r.Neighbours {
			if !owned[n] {
				size += 4
			}
		}
	}
	return size
}

// Shrink returns a copy of records with every neighbour id in owned
// elided. Used once a packer has committed to a final page
// membership (spec §4.5/§4.5.3).
func Shrink(records []Record, owned map[uint32]bool) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		kept := r.Neighbours[:0:0]
		for _, n := range r.Neighbours {
			if !owned[n] {
				kept = append(kept, n)
			}
		}
		out[i] = Record{ID: r.ID, Coords: r.Coords, VMBR: r.VMBR, Neighbours: kept}
	}
	return out
}

// Encode serializes records into exactly pageSize bytes, zero-padded.
// Returns a corruption error (spec §7) if the records do not fit —
// callers must shrink/peel before calling Encode, per spec §4.5's
// packer contract; Encode itself never truncates silently.
func Encode(records []Record, pageSize int) ([]byte, error) {
	total := headerBytes
	for _, r := range records {
		total += r.SerializedSize()
	}
	if total > pageSize {
		return nil, fmt.Errorf("graphpage: %w: %d records need %d bytes, exceeds page size %d", errs.ErrCorruption, len(records), total, pageSize)
	}

	buf := make([]byte, 0, pageSize)
	buf = append(buf, make([]byte, headerBytes)...)
	binary.LittleEndian.PutUint32(buf, uint32(len(records)))
	for _, r := range records {
		buf = r.Encode(buf)
	}
	if len(buf) < pageSize {
		buf = append(buf, make([]byte, pageSize-len(buf))...)
	}
	return buf, nil
}

// Decode parses a page buffer (exactly pageSize bytes) back into its
// records.
func Decode(data []byte) (Page, error) {
	if len(data) < headerBytes {
		return Page{}, fmt.Errorf("graphpage: page too small to hold a header (%d bytes)", len(data))
	}
	numVertices := binary.LittleEndian.Uint32(data)
	records := make([]Record, 0, numVertices)
	off := headerBytes
	for i := uint32(0); i < numVertices; i++ {
		if off >= len(data) {
			return Page{}, fmt.Errorf("graphpage: truncated page, expected %d records, decoded %d", numVertices, i)
		}
		r, n, err := DecodeRecord(data[off:])
		if err != nil {
			return Page{}, fmt.Errorf("graphpage: record %d: %w", i, err)
		}
		records = append(records, r)
		off += n
	}
	return Page{Records: records}, nil
}
