package extsort

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xDarkicex/touchgraph/internal/hilbert"
)

func intCodec() Codec[uint64] {
	return Codec[uint64]{
		Encode: func(v uint64) []byte {
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, v)
			return b
		},
		Decode: func(b []byte) (uint64, error) {
			return binary.LittleEndian.Uint64(b), nil
		},
		KeyOf: func(v uint64) hilbert.Key { return hilbert.Key(v) },
	}
}

func TestSorterInMemoryOnly(t *testing.T) {
	s := New(intCodec(), 1<<20, t.TempDir())
	values := []uint64{5, 1, 4, 2, 3}
	for _, v := range values {
		require.NoError(t, s.Insert(v))
	}

	var got []uint64
	require.NoError(t, s.Finish(func(v uint64) error {
		got = append(got, v)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, got)
}

func TestSorterSpillsAndMerges(t *testing.T) {
	// Budget small enough that every few inserts forces a flush.
	s := New(intCodec(), 40, t.TempDir())
	r := rand.New(rand.NewSource(42))
	n := 500
	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(r.Intn(100000))
	}
	for _, v := range values {
		require.NoError(t, s.Insert(v))
	}

	var got []uint64
	require.NoError(t, s.Finish(func(v uint64) error {
		got = append(got, v)
		return nil
	}))

	require.Len(t, got, n)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1], got[i])
	}
}

func TestSorterEmpty(t *testing.T) {
	s := New(intCodec(), 1024, t.TempDir())
	var got []uint64
	require.NoError(t, s.Finish(func(v uint64) error {
		got = append(got, v)
		return nil
	}))
	assert.Empty(t, got)
}

func TestSorterCallbackErrorPropagates(t *testing.T) {
	s := New(intCodec(), 16, t.TempDir())
	for i := uint64(0); i < 20; i++ {
		require.NoError(t, s.Insert(i))
	}
	called := 0
	err := s.Finish(func(v uint64) error {
		called++
		if called == 3 {
			return assert.AnError
		}
		return nil
	})
	require.Error(t, err)
}
