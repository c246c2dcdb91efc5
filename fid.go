package fid

// Ranker is a sequence of bits that can count its 1s.
// It is all that is needed to answer every other
// query, although not efficiently.
type Ranker interface {
	// Len returns the number of bits.
	Len() uint64

	// Rank1 counts the 1s in [0, i).
	// Indices past Len count as Len.
	Rank1(i uint64) uint64
}

// FID is a fully indexable dictionary: a bit
// sequence supporting access, rank and select.
type FID interface {
	Ranker

	// Get returns the bit at index i.
	Get(i uint64) bool

	// Rank0 counts the 0s in [0, i).
	Rank0(i uint64) uint64

	// Rank counts the b bits in [0, i).
	Rank(b bool, i uint64) uint64

	// Select0 locates the (r+1)th 0, or
	// returns Len if there is none.
	Select0(r uint64) uint64

	// Select1 locates the (r+1)th 1, or
	// returns Len if there is none.
	Select1(r uint64) uint64

	// Select locates the (r+1)th b bit, or
	// returns Len if there is none.
	Select(b bool, r uint64) uint64
}

var (
	_ FID = (*BitVector)(nil)
	_ FID = Naive{}
)

// Rank0 counts the 0s of x in [0, i).
func Rank0(x Ranker, i uint64) uint64 {
	i = min(i, x.Len())
	return i - x.Rank1(i)
}

// Rank counts the b bits of x in [0, i).
func Rank(x Ranker, b bool, i uint64) uint64 {
	if b {
		return x.Rank1(i)
	}
	return Rank0(x, i)
}

// Select locates the (r+1)th b bit of x with a binary
// search over Rank, or returns x.Len() if there is none.
// It takes O(log n) rank queries.
func Select(x Ranker, b bool, r uint64) uint64 {
	n := x.Len()
	if Rank(x, b, n) <= r {
		return n
	}

	// Rank(lo) <= r < Rank(hi)
	lo, hi := uint64(0), n
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if Rank(x, b, mid) > r {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// Naive turns any Ranker into a FID by deriving
// every query from Rank1. It is a fallback for
// structures without faster queries, and the
// reference the faster queries must agree with.
type Naive struct {
	Ranker
}

// Get returns the bit at index i.
// Panics if i is out of range.
func (n Naive) Get(i uint64) bool {
	if i >= n.Len() {
		panic("fid: index out of range")
	}
	return n.Rank1(i+1) != n.Rank1(i)
}

// Rank0 counts the 0s in [0, i).
func (n Naive) Rank0(i uint64) uint64 {
	return Rank0(n.Ranker, i)
}

// Rank counts the b bits in [0, i).
func (n Naive) Rank(b bool, i uint64) uint64 {
	return Rank(n.Ranker, b, i)
}

// Select0 locates the (r+1)th 0.
func (n Naive) Select0(r uint64) uint64 {
	return Select(n.Ranker, false, r)
}

// Select1 locates the (r+1)th 1.
func (n Naive) Select1(r uint64) uint64 {
	return Select(n.Ranker, true, r)
}

// Select locates the (r+1)th b bit.
func (n Naive) Select(b bool, r uint64) uint64 {
	return Select(n.Ranker, b, r)
}
