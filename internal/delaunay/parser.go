// Package delaunay consumes a Delaunay tetrahedralization stream
// (spec §4.4, §6.1, C3) and derives each vertex's neighbour set and
// Voronoi MBR, handing off each vertex to a consumer exactly once as
// soon as it is finalized.
package delaunay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// Vertex is a finalized vertex as handed off to the consumer: its id,
// coordinates, accumulated Voronoi MBR, and the duplicate-free set of
// Delaunay 1-ring neighbour ids (spec §3).
type Vertex struct {
	ID         uint32
	Coords     spatial.Vertex
	VMBR       spatial.Box
	Neighbours []uint32
}

// Sink receives each vertex exactly once as it is finalized, in the
// order tetrahedra finalize it (not necessarily id order).
type Sink func(Vertex) error

// liveVertex is the RAM-resident entry for a vertex not yet finalized
// (spec §9 "the live-vertex table must support O(1) lookup, insertion,
// and deletion by id").
type liveVertex struct {
	coords        spatial.Vertex
	vmbr          spatial.Box
	neighbours    []uint32
	neighbourSeen map[uint32]bool
}

// Parse reads a Delaunay stream from r and calls sink for each vertex
// as it is finalized, including any still-live vertices at
// end-of-stream (spec §4.4). A malformed line, a missing vertex
// reference, or a sink error aborts parsing and returns a wrapped
// error.
func Parse(r io.Reader, sink Sink) error {
	live := make(map[uint32]*liveVertex)
	var order []uint32 // insertion order, for a deterministic EOF finalize pass
	var nextID uint32 = 1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "v":
			coords, err := parseVertexLine(fields)
			if err != nil {
				return fmt.Errorf("delaunay: line %d: %w: %v", lineNo, errs.ErrParse, err)
			}
			id := nextID
			nextID++
			live[id] = &liveVertex{coords: coords, neighbourSeen: make(map[uint32]bool)}
			order = append(order, id)

		case "c":
			if err := handleTetra(fields, nextID-1, live, sink); err != nil {
				return fmt.Errorf("delaunay: line %d: %w", lineNo, err)
			}

		default:
			return fmt.Errorf("delaunay: line %d: %w: unrecognized record %q", lineNo, errs.ErrParse, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("delaunay: %w: %v", errs.ErrIO, err)
	}

	// End of stream: finalize everything still live, in the order it
	// was introduced.
	for _, id := range order {
		lv, ok := live[id]
		if !ok {
			continue // already finalized mid-stream
		}
		if err := finalize(id, lv, sink); err != nil {
			return fmt.Errorf("delaunay: finalizing remaining vertices: %w", err)
		}
		delete(live, id)
	}
	return nil
}

func parseVertexLine(fields []string) (spatial.Vertex, error) {
	if len(fields) != 4 {
		return spatial.Vertex{}, fmt.Errorf("want 'v x y z', got %d fields", len(fields))
	}
	var v spatial.Vertex
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return spatial.Vertex{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// handleTetra resolves a "c a b c d" record's four ids, computes the
// circumcenter, unions it into each vertex's VMBR, adds the duplicate-
// free neighbour pairs, and finalizes any vertex a non-positive id
// referenced.
func handleTetra(fields []string, currentID uint32, live map[uint32]*liveVertex, sink Sink) error {
	if len(fields) != 5 {
		return fmt.Errorf("%w: want 'c a b c d', got %d fields", errs.ErrParse, len(fields))
	}

	ids := make([]uint32, 4)
	finalizes := make([]bool, 4)
	for i := 0; i < 4; i++ {
		raw, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return fmt.Errorf("%w: vertex reference %q: %v", errs.ErrParse, fields[i+1], err)
		}
		if raw <= 0 {
			resolved := int64(currentID) + int64(raw)
			if resolved <= 0 {
				return fmt.Errorf("%w: relative reference %d resolves to non-positive id", errs.ErrParse, raw)
			}
			ids[i] = uint32(resolved)
			finalizes[i] = true
		} else {
			ids[i] = uint32(raw)
		}
	}

	verts := make([]*liveVertex, 4)
	for i, id := range ids {
		lv, ok := live[id]
		if !ok {
			return fmt.Errorf("%w: tetrahedron references unknown or already-finalized vertex %d", errs.ErrNotFound, id)
		}
		verts[i] = lv
	}

	coords := [4]spatial.Vertex{verts[0].coords, verts[1].coords, verts[2].coords, verts[3].coords}
	center := spatial.Circumcenter(coords[0], coords[1], coords[2], coords[3])

	for i := range verts {
		verts[i].vmbr = verts[i].vmbr.ExpandPoint(center)
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j || ids[i] == ids[j] {
				continue
			}
			other := ids[j]
			if !verts[i].neighbourSeen[other] {
				verts[i].neighbourSeen[other] = true
				verts[i].neighbours = append(verts[i].neighbours, other)
			}
		}
	}

	for i, id := range ids {
		if !finalizes[i] {
			continue
		}
		lv, ok := live[id]
		if !ok {
			continue // already finalized by an earlier id in this same record
		}
		if err := finalize(id, lv, sink); err != nil {
			return err
		}
		delete(live, id)
	}
	return nil
}

func finalize(id uint32, lv *liveVertex, sink Sink) error {
	v := Vertex{ID: id, Coords: lv.coords, VMBR: lv.vmbr, Neighbours: lv.neighbours}
	if err := sink(v); err != nil {
		return fmt.Errorf("sink rejected vertex %d: %w", id, err)
	}
	return nil
}
