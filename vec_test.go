package fid

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOdds  = []float64{0.01, 0.5, 0.99}
	testSizes = []int{
		1, 32, 63, 64, 65, 960, 992, 1023, 1024, 1025,
		3072, 4095, 4096, 4097, 5120, 5152, 5184, 8192,
		40960 + 1024 + 64 + 32,
	}
)

func randomBools(rng *rand.Rand, n int, odds float64) []bool {
	bs := make([]bool, n)
	for i := range bs {
		bs[i] = rng.Float64() < odds
	}
	return bs
}

// checkVector compares every query of vec against bs.
func checkVector(t *testing.T, bs []bool, vec *BitVector) {
	t.Helper()

	n := uint64(len(bs))
	require.Equal(t, n, vec.Len())

	var sel1, sel0 []uint64
	rank1 := uint64(0)
	for i, b := range bs {
		idx := uint64(i)
		if !assert.Equal(t, b, vec.Get(idx), "get %d", i) ||
			!assert.Equal(t, rank1, vec.Rank1(idx), "rank1 %d", i) ||
			!assert.Equal(t, idx-rank1, vec.Rank0(idx), "rank0 %d", i) {
			return
		}

		bit, rank := vec.BitAndRank(idx)
		if !assert.Equal(t, b, bit) || !assert.Equal(t, vec.Rank(b, idx), rank, "bit and rank %d", i) {
			return
		}

		if b {
			sel1 = append(sel1, idx)
			rank1++
		} else {
			sel0 = append(sel0, idx)
		}
	}

	assert.Equal(t, rank1, vec.Ones())
	assert.Equal(t, n-rank1, vec.Zeros())
	assert.Equal(t, rank1, vec.Rank1(n))
	assert.Equal(t, n-rank1, vec.Rank0(n))

	for r, idx := range sel1 {
		if !assert.Equal(t, idx, vec.Select1(uint64(r)), "select1 %d", r) {
			break
		}
	}
	for r, idx := range sel0 {
		if !assert.Equal(t, idx, vec.Select0(uint64(r)), "select0 %d", r) {
			break
		}
	}
	assert.Equal(t, n, vec.Select1(uint64(len(sel1))))
	assert.Equal(t, n, vec.Select0(uint64(len(sel0))))
}

func TestVector(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, odds := range testOdds {
		for _, size := range testSizes {
			t.Run(fmt.Sprintf("odds=%v/size=%d", odds, size), func(t *testing.T) {
				bs := randomBools(rng, size, odds)

				vec := New()
				for _, b := range bs {
					vec.Push(b)
				}
				checkVector(t, bs, vec)

				// Pre-sizing must not change the result.
				presized := New(WithCapacity(uint64(size)), WithOdds(odds))
				for _, b := range bs {
					presized.Push(b)
				}
				assert.Equal(t, vec.String(), presized.String())
				checkVector(t, bs, presized)
			})
		}
	}
}

func TestExample(t *testing.T) {
	vec := FromBools([]bool{false, true, true, false, true, true, false, true})

	assert.EqualValues(t, 2, vec.Rank0(5))
	assert.EqualValues(t, 3, vec.Rank1(5))
	assert.EqualValues(t, 6, vec.Select0(2))
	assert.EqualValues(t, 4, vec.Select1(2))
}

func TestEmpty(t *testing.T) {
	var vec BitVector

	assert.EqualValues(t, 0, vec.Len())
	assert.EqualValues(t, 0, vec.Rank1(0))
	assert.EqualValues(t, 0, vec.Rank0(10))
	assert.EqualValues(t, 0, vec.Select1(0))
	assert.EqualValues(t, 0, vec.Select0(0))
	assert.Panics(t, func() { vec.Get(0) })
	assert.Panics(t, func() { vec.BitAndRank(0) })

	vec.ShrinkToFit()
	assert.EqualValues(t, 0, vec.Len())
}

func TestOutOfRange(t *testing.T) {
	vec := FromBools(randomBools(rand.New(rand.NewSource(1)), 3000, 0.3))

	assert.Equal(t, vec.Ones(), vec.Rank1(vec.Len()+100))
	assert.Equal(t, vec.Zeros(), vec.Rank0(vec.Len()+100))
	assert.Equal(t, vec.Len(), vec.Select1(vec.Ones()+100))
	assert.Equal(t, vec.Len(), vec.Select0(vec.Zeros()+100))
	assert.Panics(t, func() { vec.Get(vec.Len()) })
}

// TestRank1Sparse tests rank queries on a sparse
// vector, where many large blocks share a rank.
func TestRank1Sparse(t *testing.T) {
	const sr = 1024

	rng := rand.New(rand.NewSource(7))
	vec := New()
	ranks := make([]uint64, 1e6)

	popcount := uint64(0)
	for i := range ranks {
		ranks[i] = popcount
		b := rng.Intn(sr) == 1
		if b {
			popcount++
		}
		vec.Push(b)
	}

	for i, r := range ranks {
		if !assert.Equal(t, r, vec.Rank1(uint64(i))) {
			break
		}
	}
}

func TestSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	vec := New()
	sel1 := []uint64{}
	sel0 := []uint64{}

	for i := uint64(0); i < 1e6; i++ {
		b := rng.Intn(2) == 1
		vec.Push(b)

		if b {
			sel1 = append(sel1, i)
		} else {
			sel0 = append(sel0, i)
		}
	}

	for i, idx := range sel1 {
		if !assert.Equal(t, idx, vec.Select1(uint64(i))) {
			break
		}
	}

	for i, idx := range sel0 {
		if !assert.Equal(t, idx, vec.Select0(uint64(i))) {
			break
		}
	}
}

func TestSelect0Sparse(t *testing.T) {
	const sr = 1024

	rng := rand.New(rand.NewSource(9))
	vec := New()
	sel0 := []uint64{}

	for i := uint64(0); i < 1e6; i++ {
		if rng.Intn(sr) == 0 {
			vec.Push(false)
			sel0 = append(sel0, i)
		} else {
			vec.Push(true)
		}
	}

	for i, idx := range sel0 {
		if !assert.Equal(t, idx, vec.Select0(uint64(i))) {
			break
		}
	}
}

func TestFromBit(t *testing.T) {
	for _, size := range []uint64{0, 1, 64, 1024, 4096, 10000} {
		ones := FromBit(true, size)
		assert.Equal(t, size, ones.Ones())
		if size > 0 {
			assert.Equal(t, size-1, ones.Select1(size-1))
			assert.True(t, ones.Get(size-1))
		}
		assert.Equal(t, size, ones.Select0(0))

		zeros := FromBit(false, size)
		assert.Equal(t, uint64(0), zeros.Ones())
		assert.Equal(t, size/2, zeros.Rank0(size/2))
		assert.Equal(t, size, zeros.Select1(0))
	}
}

func TestShrinkToFit(t *testing.T) {
	bs := randomBools(rand.New(rand.NewSource(3)), 20000, 0.2)
	vec := New(WithCapacity(1 << 20))
	for _, b := range bs {
		vec.Push(b)
	}
	before := vec.Size()

	vec.ShrinkToFit()
	shrunk := vec.Size()
	assert.Less(t, shrunk, before)
	checkVector(t, bs, vec)

	vec.ShrinkToFit()
	assert.Equal(t, shrunk, vec.Size())

	// Pushing after shrinking keeps working.
	vec.Push(true)
	bs = append(bs, true)
	checkVector(t, bs, vec)
}

func TestCompression(t *testing.T) {
	sparse := FromBools(randomBools(rand.New(rand.NewSource(4)), 1<<16, 0.01))
	dense := FromBools(randomBools(rand.New(rand.NewSource(4)), 1<<16, 0.5))
	sparse.ShrinkToFit()
	dense.ShrinkToFit()

	assert.Less(t, sparse.Size(), dense.Size()/2)
	assert.Less(t, dense.Size(), (1<<16)/8*2)
}

func TestString(t *testing.T) {
	vec := New()
	for i := 0; i < 1024+70; i++ {
		vec.Push(i%2 == 0)
	}

	s := vec.String()
	assert.Contains(t, s, "len:    1094\n")
	assert.Contains(t, s, "ones:   547\n")
	assert.Contains(t, s, "sblock: 32 32 ")
	assert.Contains(t, s, " 3\n")
	assert.Contains(t, s, "lblock: 512")
}

var bigVector *BitVector

func initBigVector() {
	if bigVector == nil {
		size := 1 << 26
		rng := rand.New(rand.NewSource(0))
		bigVector = New(WithCapacity(uint64(size)))
		for i := 0; i < size; i++ {
			bigVector.Push(rng.Intn(2) == 1)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	initBigVector()

	idx := make([]uint64, b.N)
	for i := range idx {
		idx[i] = uint64(rand.Int63n(int64(bigVector.Len())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bigVector.Get(idx[i])
	}
}

func BenchmarkRank1(b *testing.B) {
	initBigVector()

	idx := make([]uint64, b.N)
	for i := range idx {
		idx[i] = uint64(rand.Int63n(int64(bigVector.Len())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bigVector.Rank1(idx[i])
	}
}

func BenchmarkSelect1(b *testing.B) {
	initBigVector()

	in := make([]uint64, b.N)
	for i := range in {
		in[i] = uint64(rand.Int63n(int64(bigVector.Ones())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bigVector.Select1(in[i])
	}
}

func BenchmarkSelect0(b *testing.B) {
	initBigVector()

	in := make([]uint64, b.N)
	for i := range in {
		in[i] = uint64(rand.Int63n(int64(bigVector.Zeros())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bigVector.Select0(in[i])
	}
}

func BenchmarkSelect1D1(b *testing.B) {
	// Create vector with 1% bit density
	rng := rand.New(rand.NewSource(0))
	vec := New(WithCapacity(1e7), WithOdds(0.01))
	for i := 0; i < 1e7; i++ {
		vec.Push(rng.Intn(100) == 1)
	}

	in := make([]uint64, b.N)
	for i := range in {
		in[i] = uint64(rand.Int63n(int64(vec.Ones())))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vec.Select1(in[i])
	}
}
