package seedindex

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// metadataFixedBytes: page_mbr f32x6(24) + page_id u32(4) + num_links u32(4)
// (spec §6.2 "Metadata entry").
const metadataFixedBytes = 24 + 4 + 4

func encodeMetadata(m packer.Metadata) ([]byte, error) {
	if m.PageID > uint64(^uint32(0)) {
		return nil, fmt.Errorf("seedindex: %w: page id %d does not fit the metadata entry's 32-bit field", errs.ErrCorruption, m.PageID)
	}
	buf := make([]byte, metadataFixedBytes+4*len(m.PageLinks))
	off := 0
	for _, f := range []float32{
		m.PageMBR.Low[0], m.PageMBR.Low[1], m.PageMBR.Low[2],
		m.PageMBR.High[0], m.PageMBR.High[1], m.PageMBR.High[2],
	} {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(m.PageID))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(m.PageLinks)))
	off += 4
	for _, link := range m.PageLinks {
		if link > uint64(^uint32(0)) {
			return nil, fmt.Errorf("seedindex: %w: link page id %d does not fit the metadata entry's 32-bit field", errs.ErrCorruption, link)
		}
		binary.LittleEndian.PutUint32(buf[off:], uint32(link))
		off += 4
	}
	return buf, nil
}

// decodeMetadata reverses encodeMetadata, re-attaching partitionMBR
// (the R-tree leaf's own MBR, not re-embedded in the payload).
func decodeMetadata(buf []byte, partitionMBR spatial.Box) (packer.Metadata, error) {
	if len(buf) < metadataFixedBytes {
		return packer.Metadata{}, fmt.Errorf("seedindex: %w: truncated metadata entry (%d bytes)", errs.ErrCorruption, len(buf))
	}
	getF32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }

	m := packer.Metadata{
		PageMBR: spatial.Box{
			Low:  spatial.Vertex{getF32(0), getF32(4), getF32(8)},
			High: spatial.Vertex{getF32(12), getF32(16), getF32(20)},
		},
		PartitionMBR: partitionMBR,
		PageID:       uint64(binary.LittleEndian.Uint32(buf[24:])),
	}
	numLinks := int(binary.LittleEndian.Uint32(buf[28:]))
	if metadataFixedBytes+4*numLinks != len(buf) {
		return packer.Metadata{}, fmt.Errorf("seedindex: %w: metadata entry declares %d links but has %d bytes", errs.ErrCorruption, numLinks, len(buf))
	}
	if numLinks > 0 {
		m.PageLinks = make([]uint64, numLinks)
		off := metadataFixedBytes
		for i := 0; i < numLinks; i++ {
			m.PageLinks[i] = uint64(binary.LittleEndian.Uint32(buf[off:]))
			off += 4
		}
	}
	return m, nil
}
