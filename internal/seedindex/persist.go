package seedindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/packer"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

// Save writes every metadata entry to path as a flat sequential
// stream: each record is the entry's partition MBR (24 bytes, the
// R-tree leaf key that decodeMetadata needs back but that
// encodeMetadata does not itself carry) followed by a length-prefixed
// metadata payload. This is the on-disk "<stem>_seed" file (spec
// §6.2): the R-tree over it is always rebuilt in memory at Open time
// via Build, since C8's two Tree implementations are both RAM-resident
// by design.
func Save(path string, metas []packer.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, m := range metas {
		payload, err := encodeMetadata(m)
		if err != nil {
			return err
		}
		if err := writeBox(w, m.PartitionMBR); err != nil {
			return fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
		}
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
	}
	return nil
}

// Load reads back every metadata entry Save wrote, in the same order.
func Load(path string) ([]packer.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var metas []packer.Metadata
	for {
		partitionMBR, err := readBox(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("seedindex: %w: %v", errs.ErrIO, err)
		}
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("seedindex: %w: %v", errs.ErrCorruption, err)
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("seedindex: %w: %v", errs.ErrCorruption, err)
		}
		m, err := decodeMetadata(payload, partitionMBR)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, nil
}

func writeBox(w io.Writer, b spatial.Box) error {
	var buf [24]byte
	floats := [6]float32{b.Low[0], b.Low[1], b.Low[2], b.High[0], b.High[1], b.High[2]}
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	_, err := w.Write(buf[:])
	return err
}

func readBox(r io.Reader) (spatial.Box, error) {
	var buf [24]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return spatial.Box{}, err
	}
	get := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])) }
	return spatial.Box{
		Low:  spatial.Vertex{get(0), get(1), get(2)},
		High: spatial.Vertex{get(3), get(4), get(5)},
	}, nil
}
