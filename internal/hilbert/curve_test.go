package hilbert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode3DDeterministic(t *testing.T) {
	k1 := Encode3D(8, 10, 20, 30)
	k2 := Encode3D(8, 10, 20, 30)
	assert.Equal(t, k1, k2)
}

func TestEncode3DInjectiveOnSmallGrid(t *testing.T) {
	const bits = 4
	const n = 1 << bits
	seen := make(map[Key]bool)
	for x := uint32(0); x < n; x++ {
		for y := uint32(0); y < n; y++ {
			for z := uint32(0); z < n; z++ {
				k := Encode3D(bits, x, y, z)
				require.False(t, seen[k], "collision at (%d,%d,%d) key=%d", x, y, z, k)
				seen[k] = true
			}
		}
	}
	assert.Equal(t, n*n*n, len(seen))
}

func TestEncoderScalesIntoRange(t *testing.T) {
	lo := [3]float64{0, 0, 0}
	hi := [3]float64{100, 100, 100}
	enc := NewEncoder(10, lo, hi)

	a := enc.Encode(0, 0, 0)
	b := enc.Encode(100, 100, 100)
	assert.NotEqual(t, a, b)

	// Points outside the configured range clamp rather than wrapping.
	c := enc.Encode(1000, 1000, 1000)
	assert.Equal(t, b, c)
}

func TestLessIsTotalOrder(t *testing.T) {
	assert.True(t, Less(Key(1), Key(2)))
	assert.False(t, Less(Key(2), Key(1)))
	assert.False(t, Less(Key(2), Key(2)))
}
