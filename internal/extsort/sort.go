// Package extsort sorts an effectively unbounded stream of items by
// Hilbert key under a fixed RAM budget (spec §4.3, C2): run generation
// in memory, spilled to temporary files once the budget is exceeded,
// then a k-way merge on Finish. Grounded on internal/util's
// container/heap candidate-ordering pattern (adapted here from
// distance-ordered search candidates to key-ordered run heads) and on
// page.SpillFile for the temporary run files themselves.
package extsort

import (
	"container/heap"
	"fmt"
	"io"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/hilbert"
	"github.com/xDarkicex/touchgraph/internal/page"
)

// Codec tells the sorter how to turn items into bytes (for spilling)
// and back, and how to extract each item's sort key.
type Codec[T any] struct {
	Encode func(T) []byte
	Decode func([]byte) (T, error)
	KeyOf  func(T) hilbert.Key
}

type entry struct {
	key  hilbert.Key
	data []byte
}

// Sorter accumulates items, flushing sorted runs to temporary files
// once the in-memory buffer exceeds budgetBytes.
type Sorter[T any] struct {
	codec      Codec[T]
	budget     int
	bufferSize int
	buffer     []entry
	runs       []*page.SpillFile
	tmpDir     string
}

// New returns a Sorter that spills to dir (os.TempDir if empty) once
// more than budgetBytes of encoded records are buffered.
func New[T any](codec Codec[T], budgetBytes int, dir string) *Sorter[T] {
	return &Sorter[T]{codec: codec, budget: budgetBytes, tmpDir: dir}
}

// Insert adds an item to the sorter, flushing a run to disk if the
// buffer has grown past budget.
func (s *Sorter[T]) Insert(item T) error {
	data := s.codec.Encode(item)
	s.buffer = append(s.buffer, entry{key: s.codec.KeyOf(item), data: data})
	s.bufferSize += len(data)

	if s.bufferSize > s.budget {
		return s.flush()
	}
	return nil
}

func (s *Sorter[T]) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}
	sortEntries(s.buffer)

	run, err := page.NewSpillFile(s.tmpDir)
	if err != nil {
		return fmt.Errorf("extsort: %w: %v", errs.ErrIO, err)
	}
	for _, e := range s.buffer {
		if err := run.WriteRecord(rawFromEntry(e)); err != nil {
			run.Release()
			return fmt.Errorf("extsort: %w: %v", errs.ErrIO, err)
		}
	}
	if err := run.Flush(); err != nil {
		run.Release()
		return fmt.Errorf("extsort: %w: %v", errs.ErrIO, err)
	}

	s.runs = append(s.runs, run)
	s.buffer = nil
	s.bufferSize = 0
	return nil
}

// Finish merges every run (and any still-buffered items) via a k-way
// heap merge and invokes callback with each item exactly once, in
// ascending key order. All temporary run files are released before
// Finish returns, whether it succeeds or fails.
func (s *Sorter[T]) Finish(callback func(T) error) (err error) {
	defer func() {
		for _, r := range s.runs {
			if relErr := r.Release(); relErr != nil && err == nil {
				err = relErr
			}
		}
		s.runs = nil
	}()

	if len(s.runs) == 0 {
		// Everything fits in RAM: sort once and stream directly.
		sortEntries(s.buffer)
		for _, e := range s.buffer {
			item, decErr := s.codec.Decode(e.data)
			if decErr != nil {
				return fmt.Errorf("extsort: %w: %v", errs.ErrCorruption, decErr)
			}
			if cbErr := callback(item); cbErr != nil {
				return cbErr
			}
		}
		s.buffer = nil
		return nil
	}

	// Buffered remainder becomes one more logical run, merged in RAM
	// (no need to spill it to disk just to read it straight back).
	sortEntries(s.buffer)

	h := &mergeHeap{}
	heap.Init(h)

	readers := make([]*page.SpillReader, len(s.runs))
	for i, run := range s.runs {
		readers[i] = run.Reader()
		if e, ok, rerr := nextFromReader(readers[i]); rerr != nil {
			return fmt.Errorf("extsort: %w: %v", errs.ErrIO, rerr)
		} else if ok {
			heap.Push(h, &mergeNode{entry: e, source: i})
		}
	}

	bufIdx := 0
	if bufIdx < len(s.buffer) {
		heap.Push(h, &mergeNode{entry: s.buffer[bufIdx], source: -1})
		bufIdx++
	}

	for h.Len() > 0 {
		node := heap.Pop(h).(*mergeNode)
		item, decErr := s.codec.Decode(node.entry.data)
		if decErr != nil {
			return fmt.Errorf("extsort: %w: %v", errs.ErrCorruption, decErr)
		}
		if cbErr := callback(item); cbErr != nil {
			return cbErr
		}

		if node.source == -1 {
			if bufIdx < len(s.buffer) {
				heap.Push(h, &mergeNode{entry: s.buffer[bufIdx], source: -1})
				bufIdx++
			}
			continue
		}
		if e, ok, rerr := nextFromReader(readers[node.source]); rerr != nil {
			return fmt.Errorf("extsort: %w: %v", errs.ErrIO, rerr)
		} else if ok {
			heap.Push(h, &mergeNode{entry: e, source: node.source})
		}
	}

	s.buffer = nil
	return nil
}

func nextFromReader(r *page.SpillReader) (entry, bool, error) {
	data, err := r.ReadRecord()
	if err != nil {
		if err == io.EOF {
			return entry{}, false, nil
		}
		return entry{}, false, err
	}
	// Runs store key-prefixed records (see rawFromEntry), so the key
	// comes back without a full Decode. See entryFromRaw.
	return entryFromRaw(data), true, nil
}
