package page

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// SpillFile is a temporary, length-prefixed-record file used by the
// external sort to hold one run (spec §4.3). It owns its file on
// disk and removes it on Release, including on error paths, so
// that a build that fails partway through never leaves a pile of run
// files behind (spec §5 "owned by the external sort and deleted on
// its destruction, including abnormal termination").
type SpillFile struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// NewSpillFile creates a new temporary run file under dir (os.TempDir
// if dir is empty).
func NewSpillFile(dir string) (*SpillFile, error) {
	name := fmt.Sprintf("touchgraph-run-%s.tmp", uuid.NewString())
	if dir == "" {
		dir = os.TempDir()
	}
	path := dir + string(os.PathSeparator) + name
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("page: create spill file: %w", err)
	}
	return &SpillFile{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// WriteRecord appends a length-prefixed record.
func (s *SpillFile) WriteRecord(data []byte) error {
	if err := binary.Write(s.w, binary.LittleEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("page: spill write length: %w", err)
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("page: spill write record: %w", err)
	}
	return nil
}

// Flush flushes buffered writes and seeks the file back to the start
// so the run can be read back with Reader.
func (s *SpillFile) Flush() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("page: spill flush: %w", err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("page: spill seek: %w", err)
	}
	return nil
}

// Reader returns a SpillReader over this run's file; call Flush first.
func (s *SpillFile) Reader() *SpillReader {
	return &SpillReader{r: bufio.NewReader(s.f)}
}

// Release closes and deletes the run file. Safe to call multiple
// times.
func (s *SpillFile) Release() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	if err := s.f.Close(); err != nil {
		firstErr = fmt.Errorf("page: close spill file: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) && firstErr == nil {
		firstErr = fmt.Errorf("page: remove spill file: %w", err)
	}
	return firstErr
}

// SpillReader sequentially reads records written by a SpillFile.
type SpillReader struct {
	r *bufio.Reader
}

// ReadRecord returns the next record, or io.EOF when the run is
// exhausted.
func (r *SpillReader) ReadRecord() ([]byte, error) {
	var length uint32
	if err := binary.Read(r.r, binary.LittleEndian, &length); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("page: spill read length: %w", err)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, fmt.Errorf("page: spill read record: %w", err)
	}
	return data, nil
}
