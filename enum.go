package fid

import (
	"math/bits"

	"github.com/cockroachdb/errors"

	"github.com/TechPizzaDev/fid/internal/invariants"
	"github.com/TechPizzaDev/fid/internal/tables"
)

// Small blocks are stored as enumerative codes. A block of 64 bits with k
// ones is identified by its class k and by its rank among all the C(64, k)
// blocks of that class, ordered so that a clear bit at position i comes
// before a set one. Scanning from bit 0 upwards with l ones already seen, a
// set bit at position i skips the C(63-i, k-l) blocks that have the same
// prefix but a clear bit i. The rank fits in ceil(log2(C(64, k))) bits.
//
// Classes whose code would be as wide as the block itself store the raw
// bits instead.

// combination returns the number of ways to place the k-l ones that remain,
// after l of the k ones have been seen, in the bits above position i.
func combination(i, k, l uint64) uint64 {
	if invariants.Enabled && (i >= sblockWidth || k > sblockWidth || l > k) {
		panic(errors.AssertionFailedf("fid: combination(%d, %d, %d) out of range", i, k, l))
	}
	return tables.Combination(sblockWidth-1-i, k-l)
}

// encode returns the code of a small block and its width in bits.
// k must be the number of ones in block.
func encode(block, k uint64) (code, width uint64) {
	if invariants.Enabled && uint64(bits.OnesCount64(block)) != k {
		panic(errors.AssertionFailedf("fid: encode: class %d does not match block %#x", k, block))
	}

	width = tables.CodeWidth(k)
	if width == sblockWidth {
		return block, width
	}

	l := uint64(0)
	for block != 0 {
		i := uint64(bits.TrailingZeros64(block))
		code += combination(i, k, l)
		l++
		block &= block - 1
	}
	return code, width
}

// decodeBit reports whether bit p of the block with the given code is set.
func decodeBit(code, k, p uint64) bool {
	checkClass(k, p)

	if tables.CodeWidth(k) == sblockWidth {
		return (code>>p)&1 == 1
	}

	l := uint64(0)
	for i := uint64(0); i < p; i++ {
		base := combination(i, k, l)
		if code >= base {
			code -= base
			l++
			if l == k {
				return false
			}
		}
	}
	return code >= combination(p, k, l)
}

// decodeRank1 counts the ones in bits [0, p) of the block.
func decodeRank1(code, k, p uint64) uint64 {
	checkClass(k, p)

	if tables.CodeWidth(k) == sblockWidth {
		return rank1Raw(code, p)
	}

	l := uint64(0)
	for i := uint64(0); i < p && l < k; i++ {
		base := combination(i, k, l)
		if code >= base {
			code -= base
			l++
		}
	}
	return l
}

// decodeSelect1 returns the position of the (r+1)-th one in the block, or
// 64 if the block has r ones or fewer.
func decodeSelect1(code, k, r uint64) uint64 {
	checkClass(k, 0)

	if tables.CodeWidth(k) == sblockWidth {
		return select1Raw(code, r)
	}

	l := uint64(0)
	for i := uint64(0); i < sblockWidth && l < k; i++ {
		base := combination(i, k, l)
		if code >= base {
			if l == r {
				return i
			}
			code -= base
			l++
		}
	}
	return sblockWidth
}

// decodeSelect0 returns the position of the (r+1)-th zero in the block, or
// 64 if the block has r zeros or fewer.
func decodeSelect0(code, k, r uint64) uint64 {
	checkClass(k, 0)

	if tables.CodeWidth(k) == sblockWidth {
		return select0Raw(code, r)
	}

	l := uint64(0)
	for i := uint64(0); i < sblockWidth; i++ {
		base := combination(i, k, l)
		if code >= base {
			code -= base
			l++
		} else if i-l == r {
			return i
		}
	}
	return sblockWidth
}

// decode returns the block with the given code.
func decode(code, k uint64) uint64 {
	checkClass(k, 0)

	if tables.CodeWidth(k) == sblockWidth {
		return code
	}

	var block uint64
	l := uint64(0)
	for i := uint64(0); i < sblockWidth && l < k; i++ {
		base := combination(i, k, l)
		if code >= base {
			block |= 1 << i
			code -= base
			l++
		}
	}
	return block
}

func checkClass(k, p uint64) {
	if invariants.Enabled && (k > sblockWidth || p > sblockWidth) {
		panic(errors.AssertionFailedf("fid: class %d or position %d exceeds block width", k, p))
	}
}

// rank1Raw counts the ones in bits [0, p) of w.
func rank1Raw(w, p uint64) uint64 {
	if p < sblockWidth {
		w &= (uint64(1) << p) - 1
	}
	return uint64(bits.OnesCount64(w))
}

// select1Raw returns the position of the (r+1)-th one in w, or 64.
func select1Raw(w, r uint64) uint64 {
	for ; w != 0; w &= w - 1 {
		if r == 0 {
			return uint64(bits.TrailingZeros64(w))
		}
		r--
	}
	return sblockWidth
}

// select0Raw returns the position of the (r+1)-th zero in w, or 64.
func select0Raw(w, r uint64) uint64 {
	return select1Raw(^w, r)
}
