// Package tables holds the constant lookup tables used by the enumerative
// block codec: binomial coefficients, per-class code widths and the expected
// code width for a given bit density.
//
// The tables are built once during package initialization and never
// modified afterwards, so they are safe for concurrent use.
package tables

import (
	"math"
	"math/bits"
)

// BlockWidth is the number of bits in an encoded block.
const BlockWidth = 64

var (
	// combination[n][k] = C(n, k), and 0 when k > n.
	combination = buildCombination()

	// codeWidth[k] is the number of bits needed to store the enumerative
	// code of a block with k ones.
	codeWidth = buildCodeWidth()

	// avgCodeWidth[j] is the expected code width of a block whose bits
	// are set independently with probability j/BlockWidth.
	avgCodeWidth = buildAvgCodeWidth()
)

// Combination returns the binomial coefficient C(n, k) for n, k in
// [0, BlockWidth]. It returns 0 when k > n.
func Combination(n, k uint64) uint64 {
	return combination[n][k]
}

// CodeWidth returns the width in bits of the code of a block with k ones.
// A width of BlockWidth means the block is stored verbatim.
func CodeWidth(k uint64) uint64 {
	return uint64(codeWidth[k])
}

// AvgCodeWidth estimates the average code width of a block when each bit is
// set with probability odds. The estimate linearly interpolates between the
// two nearest tabulated densities and rounds up.
func AvgCodeWidth(odds float64) uint64 {
	pivot := BlockWidth * odds
	idx := int(pivot)
	a := avgAt(idx)
	b := avgAt(idx + 1)
	t := pivot - math.Floor(pivot)
	return uint64(math.Ceil(a*(1-t) + b*t))
}

func avgAt(i int) float64 {
	if i < 0 || i >= len(avgCodeWidth) {
		return 0
	}
	return avgCodeWidth[i]
}

func buildCombination() (c [BlockWidth + 1][BlockWidth + 1]uint64) {
	for n := 0; n <= BlockWidth; n++ {
		c[n][0] = 1
		for k := 1; k <= n; k++ {
			c[n][k] = c[n-1][k-1]
			if k < n {
				c[n][k] += c[n-1][k]
			}
		}
	}
	return c
}

func buildCodeWidth() (w [BlockWidth + 1]uint8) {
	for k := range w {
		// ceil(log2(C(64, k))); C is never zero here.
		size := bits.Len64(combination[BlockWidth][k] - 1)
		w[k] = uint8(min(size, BlockWidth))
	}
	return w
}

func buildAvgCodeWidth() (avg [BlockWidth + 1]float64) {
	for j := range avg {
		p := float64(j) / BlockWidth
		for k := 0; k <= BlockWidth; k++ {
			prob := float64(combination[BlockWidth][k]) *
				math.Pow(p, float64(k)) *
				math.Pow(1-p, float64(BlockWidth-k))
			avg[j] += prob * float64(codeWidth[k])
		}
	}
	return avg
}
