package graphpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/errs"
	"github.com/xDarkicex/touchgraph/internal/spatial"
)

func sampleRecords() []Record {
	return []Record{
		{
			ID:         1,
			Coords:     spatial.Vertex{0, 0, 0},
			VMBR:       spatial.Box{Low: spatial.Vertex{-1, -1, -1}, High: spatial.Vertex{1, 1, 1}},
			Neighbours: []uint32{2, 3},
		},
		{
			ID:         2,
			Coords:     spatial.Vertex{1, 1, 1},
			VMBR:       spatial.Box{Low: spatial.Vertex{0, 0, 0}, High: spatial.Vertex{2, 2, 2}},
			Neighbours: []uint32{1},
		},
	}
}

func TestPageRoundTrip(t *testing.T) {
	recs := sampleRecords()
	encoded, err := Encode(recs, 4096)
	require.NoError(t, err)
	assert.Len(t, encoded, 4096)

	page, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, recs[0].ID, page.Records[0].ID)
	assert.Equal(t, recs[0].Coords, page.Records[0].Coords)
	assert.Equal(t, recs[0].VMBR, page.Records[0].VMBR)
	assert.Equal(t, recs[0].Neighbours, page.Records[0].Neighbours)
}

func TestRoundTripByteIdentical(t *testing.T) {
	recs := sampleRecords()
	encoded1, err := Encode(recs, 512)
	require.NoError(t, err)

	decoded, err := Decode(encoded1)
	require.NoError(t, err)

	encoded2, err := Encode(decoded.Records, 512)
	require.NoError(t, err)

	assert.Equal(t, encoded1, encoded2)
}

func TestEncodeTooLargeIsCorruption(t *testing.T) {
	recs := sampleRecords()
	_, err := Encode(recs, 10)
	assert.ErrorIs(t, err, errs.ErrCorruption)
}

func TestShrinkElidesOwnedNeighbours(t *testing.T) {
	recs := sampleRecords()
	owned := map[uint32]bool{1: true, 2: true}
	shrunk := Shrink(recs, owned)

	assert.Empty(t, shrunk[0].Neighbours)
	assert.Empty(t, shrunk[1].Neighbours)
}

func TestShrunkSizeMatchesShrinkOutput(t *testing.T) {
	recs := sampleRecords()
	owned := map[uint32]bool{2: true}

	want := ShrunkSize(recs, owned)
	shrunk := Shrink(recs, owned)
	got := headerBytes
	for _, r := range shrunk {
		got += r.SerializedSize()
	}
	assert.Equal(t, want, got)
}

func TestDecodeTruncatedPage(t *testing.T) {
	_, err := Decode([]byte{1, 2})
	assert.Error(t, err)
}

func TestDecodeCorruptRecordSize(t *testing.T) {
	recs := sampleRecords()
	encoded, err := Encode(recs, 256)
	require.NoError(t, err)
	// Corrupt the first record's record_size field (right after the
	// 4-byte page header) to something absurd.
	encoded[4] = 0xFF
	encoded[5] = 0xFF
	_, err = Decode(encoded)
	assert.Error(t, err)
}
