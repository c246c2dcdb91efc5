package fid

import (
	"iter"
	"math"
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"

	"github.com/TechPizzaDev/fid/internal/tables"
)

// Positions returns the ascending indices of the b bits in v.
// Each small block is decoded once.
func (v *BitVector) Positions(b bool) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		pointer := uint64(0)
		for j := uint64(0); j < v.length/sblockWidth; j++ {
			k := v.sblocks.GetWord(j, sblockSize)
			block := decode(v.code(k, pointer), k)
			pointer += tables.CodeWidth(k)

			if !yieldBlock(yield, j*sblockWidth, block, b, sblockWidth) {
				return
			}
		}
		yieldBlock(yield, v.tailStart(), v.lastSblockBits, b, v.length%sblockWidth)
	}
}

// yieldBlock yields the positions of the b bits among
// the low width bits of block, offset by start.
func yieldBlock(yield func(uint64) bool, start, block uint64, b bool, width uint64) bool {
	if !b {
		block = ^block
	}
	if width < sblockWidth {
		block &= (uint64(1) << width) - 1
	}
	for ; block != 0; block &= block - 1 {
		if !yield(start + uint64(bits.TrailingZeros64(block))) {
			return false
		}
	}
	return true
}

// FromRoaring creates a vector of n bits with the members of bm set.
// Members at or past n are ignored.
func FromRoaring(bm *roaring.Bitmap, n uint64) *BitVector {
	odds := 0.0
	if n > 0 {
		odds = float64(min(bm.GetCardinality(), n)) / float64(n)
	}

	v := New(WithCapacity(n), WithOdds(odds))
	it := bm.Iterator()
	for it.HasNext() {
		x := uint64(it.Next())
		if x >= n {
			break
		}
		for v.length < x {
			v.Push(false)
		}
		v.Push(true)
	}
	for v.length < n {
		v.Push(false)
	}
	return v
}

// ToRoaring returns a bitmap holding the indices of the 1s of v.
// It fails with ErrTooLarge if a 1 is past the 32-bit range of roaring.
func (v *BitVector) ToRoaring() (*roaring.Bitmap, error) {
	if v.ones > 0 && v.Select1(v.ones-1) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrTooLarge, "last 1 at %d", v.Select1(v.ones-1))
	}

	bm := roaring.New()
	for i := range v.Positions(true) {
		bm.Add(uint32(i))
	}
	bm.RunOptimize()
	return bm, nil
}

// FromBitSet creates a vector from the first bs.Len() bits of bs.
func FromBitSet(bs *bitset.BitSet) *BitVector {
	n := uint64(bs.Len())
	odds := 0.0
	if n > 0 {
		odds = float64(bs.Count()) / float64(n)
	}

	v := New(WithCapacity(n), WithOdds(odds))
	for i, ok := bs.NextSet(0); ok && uint64(i) < n; i, ok = bs.NextSet(i + 1) {
		for v.length < uint64(i) {
			v.Push(false)
		}
		v.Push(true)
	}
	for v.length < n {
		v.Push(false)
	}
	return v
}

// ToBitSet returns an uncompressed copy of v.
func (v *BitVector) ToBitSet() *bitset.BitSet {
	bs := bitset.New(uint(v.length))
	for i := range v.Positions(true) {
		bs.Set(uint(i))
	}
	return bs
}
