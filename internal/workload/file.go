package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// ParseFile reads a query file (spec §6.4): a first line giving the
// query-type (0 range, 1 point, 2 moving), then one query per
// remaining line — six floats for range, three for point, or
// "count" followed by count six-float lines for a moving trajectory.
// Grounded on QueryGenerator.cpp's Load (whitespace-tokenized float
// lines), generalized to the three query kinds spec §6.4 adds.
func ParseFile(r io.Reader) ([]Query, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	kindLine, ok := nextNonEmptyLine(sc)
	if !ok {
		return nil, fmt.Errorf("workload: empty query file")
	}
	kindInt, err := strconv.Atoi(strings.TrimSpace(kindLine))
	if err != nil {
		return nil, fmt.Errorf("workload: bad query-type line %q: %w", kindLine, err)
	}

	var queries []Query
	for {
		switch Kind(kindInt) {
		case Range:
			line, ok := nextNonEmptyLine(sc)
			if !ok {
				return queries, sc.Err()
			}
			box, err := parseBoxLine(line)
			if err != nil {
				return nil, err
			}
			queries = append(queries, NewRange(box))
		case Point:
			line, ok := nextNonEmptyLine(sc)
			if !ok {
				return queries, sc.Err()
			}
			p, err := parsePointLine(line)
			if err != nil {
				return nil, err
			}
			queries = append(queries, NewPoint(p))
		case Moving:
			countLine, ok := nextNonEmptyLine(sc)
			if !ok {
				return queries, sc.Err()
			}
			count, err := strconv.Atoi(strings.TrimSpace(countLine))
			if err != nil {
				return nil, fmt.Errorf("workload: bad trajectory count %q: %w", countLine, err)
			}
			boxes := make([]spatial.Box, 0, count)
			for i := 0; i < count; i++ {
				line, ok := nextNonEmptyLine(sc)
				if !ok {
					return nil, fmt.Errorf("workload: trajectory truncated, wanted %d boxes, got %d", count, i)
				}
				box, err := parseBoxLine(line)
				if err != nil {
					return nil, err
				}
				boxes = append(boxes, box)
			}
			queries = append(queries, NewMoving(boxes))
		default:
			return nil, fmt.Errorf("workload: unknown query kind %d", kindInt)
		}
	}
}

// WriteFile writes queries back out in the §6.4 format. Every query in
// the slice must share the same Kind; mixed-kind slices are not
// representable in one file's single-header format. Grounded on
// QueryGenerator.cpp's Save (one whitespace-separated float line per
// query).
func WriteFile(w io.Writer, queries []Query) error {
	if len(queries) == 0 {
		return nil
	}
	kind := queries[0].Kind
	if _, err := fmt.Fprintln(w, int(kind)); err != nil {
		return err
	}
	for _, q := range queries {
		if q.Kind != kind {
			return fmt.Errorf("workload: mixed query kinds in one file (%s and %s)", kind, q.Kind)
		}
		switch kind {
		case Range:
			if err := writeBoxLine(w, q.Boxes[0]); err != nil {
				return err
			}
		case Point:
			p := q.Boxes[0].Low
			if _, err := fmt.Fprintf(w, "%g %g %g\n", p[0], p[1], p[2]); err != nil {
				return err
			}
		case Moving:
			if _, err := fmt.Fprintln(w, len(q.Boxes)); err != nil {
				return err
			}
			for _, b := range q.Boxes {
				if err := writeBoxLine(w, b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func nextNonEmptyLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

func parseBoxLine(line string) (spatial.Box, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return spatial.Box{}, fmt.Errorf("workload: expected 6 floats in box line, got %d: %q", len(fields), line)
	}
	var v [6]float32
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return spatial.Box{}, fmt.Errorf("workload: bad float %q in line %q: %w", f, line, err)
		}
		v[i] = float32(n)
	}
	return spatial.Box{
		Low:  spatial.Vertex{v[0], v[1], v[2]},
		High: spatial.Vertex{v[3], v[4], v[5]},
	}, nil
}

func parsePointLine(line string) (spatial.Vertex, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return spatial.Vertex{}, fmt.Errorf("workload: expected 3 floats in point line, got %d: %q", len(fields), line)
	}
	var v spatial.Vertex
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return spatial.Vertex{}, fmt.Errorf("workload: bad float %q in line %q: %w", f, line, err)
		}
		v[i] = float32(n)
	}
	return v, nil
}

func writeBoxLine(w io.Writer, b spatial.Box) error {
	_, err := fmt.Fprintf(w, "%g %g %g %g %g %g\n", b.Low[0], b.Low[1], b.Low[2], b.High[0], b.High[1], b.High[2])
	return err
}
