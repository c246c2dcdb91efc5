package bitarray

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWord(t *testing.T) {
	const width = 7

	a := New(0)
	for i := uint64(0); i < 1000; i++ {
		a.SetWord(i, width, i%(1<<width))
	}

	for i := uint64(0); i < 1000; i++ {
		if !assert.Equal(t, i%(1<<width), a.GetWord(i, width)) {
			break
		}
	}
}

func TestSlice(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	type entry struct {
		off, width, value uint64
	}

	a := New(1 << 10)
	entries := []entry{}
	off := uint64(0)
	for i := 0; i < 10000; i++ {
		width := uint64(rng.Intn(65))
		value := rng.Uint64() & mask(width)

		a.SetSlice(off, width, value)
		entries = append(entries, entry{off, width, value})
		off += width
	}

	for _, e := range entries {
		if !assert.Equal(t, e.value, a.GetSlice(e.off, e.width), "offset %d width %d", e.off, e.width) {
			break
		}
	}
}

func TestSliceOverwrite(t *testing.T) {
	a := New(128)
	a.SetSlice(60, 8, 0xff)
	a.SetSlice(60, 8, 0x0f)

	assert.Equal(t, uint64(0x0f), a.GetSlice(60, 8))
	assert.Equal(t, uint64(0), a.GetSlice(64, 4))
	assert.Equal(t, uint64(0x0f), a.GetSlice(60, 4))
}

func TestSliceIgnoresHighBits(t *testing.T) {
	a := New(0)
	a.SetSlice(3, 4, ^uint64(0))

	assert.Equal(t, uint64(0xf), a.GetSlice(3, 4))
	assert.Equal(t, uint64(0), a.GetSlice(7, 57))
	assert.Equal(t, uint64(0), a.GetSlice(0, 3))
}

func TestZeroWidth(t *testing.T) {
	a := New(0)
	a.SetSlice(100, 0, 1)

	assert.Empty(t, a.Words())
	assert.Equal(t, uint64(0), a.GetSlice(100, 0))
}

func TestUnwrittenReadsZero(t *testing.T) {
	a := New(0)
	a.SetSlice(0, 64, ^uint64(0))

	assert.Equal(t, uint64(0), a.GetSlice(64, 64))
	assert.Equal(t, uint64(0xffffffff), a.GetSlice(32, 64))
}

func TestShrinkToFit(t *testing.T) {
	a := New(1 << 16)
	a.SetSlice(10, 64, 0xdeadbeef)
	require.Greater(t, a.SizeBytes(), 16)

	a.ShrinkToFit()
	assert.Equal(t, 16, a.SizeBytes())
	assert.Equal(t, uint64(0xdeadbeef), a.GetSlice(10, 64))
}

func TestFromWords(t *testing.T) {
	a := FromWords([]uint64{0x1, 0x2})
	assert.Equal(t, uint64(1), a.GetSlice(0, 1))
	assert.Equal(t, uint64(1), a.GetSlice(65, 1))
	assert.Equal(t, []uint64{0x1, 0x2}, a.Words())
}

func TestWidthTooLarge(t *testing.T) {
	a := New(0)
	assert.Panics(t, func() { a.SetSlice(0, 65, 0) })
	assert.Panics(t, func() { a.GetSlice(0, 65) })
}
