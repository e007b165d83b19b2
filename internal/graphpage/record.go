// Package graphpage implements the on-disk graph page format (spec
// §3, §6.2): the persistent unit holding a batch of finalized
// vertices, their coordinates, Voronoi MBRs, and neighbour references
// (vertex ids before the rewrite pass, page ids after it).
package graphpage

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// fixed per-record byte cost before the variable neighbour list:
// record_size(4) + vertex_id(4) + coords(12) + vmbr(24)
const fixedRecordBytes = 4 + 4 + 12 + 24

// headerBytes is the page header: u32 num_vertices.
const headerBytes = 4

// Record is one vertex's entry within a page.
type Record struct {
	ID         uint32
	Coords     spatial.Vertex
	VMBR       spatial.Box
	Neighbours []uint32 // vertex ids pre-rewrite, page ids post-rewrite
}

// SerializedSize returns the byte size of this record as encoded,
// including its own record_size field.
func (r Record) SerializedSize() int {
	return fixedRecordBytes + 4*len(r.Neighbours)
}

// Encode appends r's binary encoding to buf and returns the result.
func (r Record) Encode(buf []byte) []byte {
	size := r.SerializedSize()
	start := len(buf)
	buf = append(buf, make([]byte, size)...)

	binary.LittleEndian.PutUint32(buf[start:], uint32(size))
	binary.LittleEndian.PutUint32(buf[start+4:], r.ID)
	putFloat32(buf[start+8:], r.Coords[0])
	putFloat32(buf[start+12:], r.Coords[1])
	putFloat32(buf[start+16:], r.Coords[2])
	putFloat32(buf[start+20:], r.VMBR.Low[0])
	putFloat32(buf[start+24:], r.VMBR.Low[1])
	putFloat32(buf[start+28:], r.VMBR.Low[2])
	putFloat32(buf[start+32:], r.VMBR.High[0])
	putFloat32(buf[start+36:], r.VMBR.High[1])
	putFloat32(buf[start+40:], r.VMBR.High[2])

	off := start + fixedRecordBytes
	for _, n := range r.Neighbours {
		binary.LittleEndian.PutUint32(buf[off:], n)
		off += 4
	}
	return buf
}

// DecodeRecord decodes one record starting at buf[0:], returning the
// record and the number of bytes consumed.
func DecodeRecord(buf []byte) (Record, int, error) {
	if len(buf) < fixedRecordBytes {
		return Record{}, 0, fmt.Errorf("graphpage: truncated record header (%d bytes available)", len(buf))
	}
	size := binary.LittleEndian.Uint32(buf)
	if int(size) < fixedRecordBytes || int(size) > len(buf) {
		return Record{}, 0, fmt.Errorf("graphpage: corrupt record_size %d", size)
	}
	if (int(size)-fixedRecordBytes)%4 != 0 {
		return Record{}, 0, fmt.Errorf("graphpage: record_size %d leaves a partial neighbour id", size)
	}

	r := Record{
		ID: binary.LittleEndian.Uint32(buf[4:]),
		Coords: spatial.Vertex{
			getFloat32(buf[8:]),
			getFloat32(buf[12:]),
			getFloat32(buf[16:]),
		},
		VMBR: spatial.Box{
			Low:  spatial.Vertex{getFloat32(buf[20:]), getFloat32(buf[24:]), getFloat32(buf[28:])},
			High: spatial.Vertex{getFloat32(buf[32:]), getFloat32(buf[36:]), getFloat32(buf[40:])},
		},
	}

	numNeighbours := (int(size) - fixedRecordBytes) / 4
	if numNeighbours > 0 {
		r.Neighbours = make([]uint32, numNeighbours)
		off := fixedRecordBytes
		for i := 0; i < numNeighbours; i++ {
			r.Neighbours[i] = binary.LittleEndian.Uint32(buf[off:])
			off += 4
		}
	}
	return r, int(size), nil
}

func putFloat32(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
}

func getFloat32(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}
