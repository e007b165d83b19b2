// Package page implements the page-buffered file I/O layer shared by
// every on-disk structure in the core (spec §2 C1): fixed-size page
// read/write against a backing *os.File, and a separate append-only
// spill-file primitive used by the external sort's temporary runs.
//
// Pages are addressed by a zero-based page id; PageSize bytes each.
// The query engine counts every call to ReadPage as one logical I/O
// (spec §9 "page-cache coupling") regardless of what the OS page
// cache does underneath.
package page

import (
	"fmt"
	"io"
	"os"
)

// DefaultSize is the default page size in bytes (spec §3, §6.2).
const DefaultSize = 4096

// File is a single read buffer and a single write buffer over one
// open page-structured file, per spec §5's "the page-buffered I/O
// layer owns a single read buffer and a single write buffer per open
// file". It performs no caching beyond those two buffers: every
// ReadPage is a real positioned read.
type File struct {
	f        *os.File
	pageSize int
	numPages int64
	readBuf  []byte
	writeBuf []byte
}

// Create opens path for read/write, truncating any existing content,
// and prepares it to hold pages of the given size.
func Create(path string, pageSize int) (*File, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page: invalid page size %d", pageSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("page: create %s: %w", path, err)
	}
	return &File{
		f:        f,
		pageSize: pageSize,
		readBuf:  make([]byte, pageSize),
		writeBuf: make([]byte, pageSize),
	}, nil
}

// Open opens an existing page file for read/write.
func Open(path string, pageSize int) (*File, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page: invalid page size %d", pageSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("page: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("page: stat %s: %w", path, err)
	}
	if fi.Size()%int64(pageSize) != 0 {
		f.Close()
		return nil, fmt.Errorf("page: %s size %d is not a multiple of page size %d", path, fi.Size(), pageSize)
	}
	return &File{
		f:        f,
		pageSize: pageSize,
		numPages: fi.Size() / int64(pageSize),
		readBuf:  make([]byte, pageSize),
		writeBuf: make([]byte, pageSize),
	}, nil
}

// OpenReadOnly opens an existing page file in read-only mode, used by
// the query engine so that a second process can query an index while
// build owns exclusive write access (spec §5).
func OpenReadOnly(path string, pageSize int) (*File, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page: invalid page size %d", pageSize)
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("page: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("page: stat %s: %w", path, err)
	}
	if fi.Size()%int64(pageSize) != 0 {
		f.Close()
		return nil, fmt.Errorf("page: %s size %d is not a multiple of page size %d", path, fi.Size(), pageSize)
	}
	return &File{
		f:        f,
		pageSize: pageSize,
		numPages: fi.Size() / int64(pageSize),
		readBuf:  make([]byte, pageSize),
	}, nil
}

// PageSize returns the fixed page size in bytes.
func (pf *File) PageSize() int { return pf.pageSize }

// NumPages returns the number of whole pages currently in the file.
func (pf *File) NumPages() int64 { return pf.numPages }

// ReadPage reads page id into a freshly allocated PageSize-byte slice.
// One logical I/O per call.
func (pf *File) ReadPage(id uint64) ([]byte, error) {
	if int64(id) >= pf.numPages {
		return nil, fmt.Errorf("page: read page %d: out of range (%d pages)", id, pf.numPages)
	}
	off := int64(id) * int64(pf.pageSize)
	if _, err := pf.f.ReadAt(pf.readBuf, off); err != nil {
		return nil, fmt.Errorf("page: read page %d: %w", id, err)
	}
	out := make([]byte, pf.pageSize)
	copy(out, pf.readBuf)
	return out, nil
}

// WritePage writes data (must be exactly PageSize bytes) to page id,
// extending the file if id is the next sequential page. Overwriting
// an existing page (used by the link-rewrite pass, spec §4.5.3) is
// also supported.
func (pf *File) WritePage(id uint64, data []byte) error {
	if len(data) != pf.pageSize {
		return fmt.Errorf("page: write page %d: data is %d bytes, want %d", id, len(data), pf.pageSize)
	}
	if int64(id) > pf.numPages {
		return fmt.Errorf("page: write page %d: would leave a hole (%d pages written so far)", id, pf.numPages)
	}
	copy(pf.writeBuf, data)
	off := int64(id) * int64(pf.pageSize)
	if _, err := pf.f.WriteAt(pf.writeBuf, off); err != nil {
		return fmt.Errorf("page: write page %d: %w", id, err)
	}
	if int64(id) == pf.numPages {
		pf.numPages++
	}
	return nil
}

// Append writes data as a new page at the end of the file and returns
// its page id.
func (pf *File) Append(data []byte) (uint64, error) {
	id := uint64(pf.numPages)
	if err := pf.WritePage(id, data); err != nil {
		return 0, err
	}
	return id, nil
}

// Sync flushes the underlying file to stable storage.
func (pf *File) Sync() error {
	if err := pf.f.Sync(); err != nil {
		return fmt.Errorf("page: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file. Calls after the first are no-ops
// that return nil.
func (pf *File) Close() error {
	if pf.f == nil {
		return nil
	}
	err := pf.f.Close()
	pf.f = nil
	if err != nil {
		return fmt.Errorf("page: close: %w", err)
	}
	return nil
}

var _ io.Closer = (*File)(nil)
