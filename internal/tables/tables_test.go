package tables

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombination(t *testing.T) {
	for n := uint64(0); n <= BlockWidth; n++ {
		for k := uint64(0); k <= BlockWidth; k++ {
			want := uint64(0)
			if k <= n {
				want = new(big.Int).Binomial(int64(n), int64(k)).Uint64()
			}
			if !assert.Equal(t, want, Combination(n, k), "C(%d, %d)", n, k) {
				return
			}
		}
	}
}

func TestCodeWidth(t *testing.T) {
	assert.Equal(t, uint64(0), CodeWidth(0))
	assert.Equal(t, uint64(0), CodeWidth(BlockWidth))
	assert.Equal(t, uint64(6), CodeWidth(1))
	assert.Equal(t, uint64(6), CodeWidth(BlockWidth-1))

	for k := uint64(0); k <= BlockWidth; k++ {
		c := Combination(BlockWidth, k)
		w := CodeWidth(k)

		assert.LessOrEqual(t, w, uint64(BlockWidth))
		assert.Equal(t, CodeWidth(BlockWidth-k), w, "symmetric class %d", k)
		if w < BlockWidth {
			// Every code of the class fits, and one bit less would not do.
			assert.Less(t, c-1, uint64(1)<<w, "class %d", k)
			if w > 0 {
				assert.GreaterOrEqual(t, c-1, uint64(1)<<(w-1), "class %d", k)
			}
		}
	}
}

func TestAvgCodeWidth(t *testing.T) {
	assert.Equal(t, uint64(0), AvgCodeWidth(0))
	assert.Equal(t, uint64(0), AvgCodeWidth(1))

	half := AvgCodeWidth(0.5)
	assert.Greater(t, half, AvgCodeWidth(0.1))
	assert.Greater(t, half, AvgCodeWidth(0.9))
	assert.LessOrEqual(t, half, uint64(BlockWidth))

	// Interpolated values sit between their neighbours.
	lo := AvgCodeWidth(8.0 / BlockWidth)
	mid := AvgCodeWidth(8.5 / BlockWidth)
	hi := AvgCodeWidth(9.0 / BlockWidth)
	assert.LessOrEqual(t, lo, mid)
	assert.LessOrEqual(t, mid, hi)

	assert.False(t, math.IsNaN(avgCodeWidth[BlockWidth/2]))
}
