// Package bitarray provides a growable array of bits addressed by bit
// offset, with fixed-width word access and arbitrary-width slice access.
//
// Values are stored LSB first: bit i of the array is bit i%64 of word i/64.
// A value of width w written at offset o occupies bits [o, o+w) and may
// straddle two words. Widths range over [0, 64]; a zero-width read returns 0
// and a zero-width write is a no-op.
package bitarray

import "fmt"

const wordBits = 64

// Array is a packed bit array backed by a slice of uint64 words.
type Array struct {
	words []uint64
}

// New creates an empty Array with room for at least capacity bits.
func New(capacity uint64) *Array {
	return &Array{
		words: make([]uint64, 0, wordsFor(capacity)),
	}
}

// FromWords creates an Array that takes ownership of words.
func FromWords(words []uint64) *Array {
	return &Array{words: words}
}

// Words returns the backing words. The slice must not be modified.
func (a *Array) Words() []uint64 {
	return a.words
}

// GetWord reads the i-th value of a sequence of fixed width values.
func (a *Array) GetWord(i, width uint64) uint64 {
	return a.GetSlice(i*width, width)
}

// SetWord writes the i-th value of a sequence of fixed width values.
func (a *Array) SetWord(i, width, value uint64) {
	a.SetSlice(i*width, width, value)
}

// GetSlice reads width bits starting at bit offset off. Bits that were
// never written read as zero.
func (a *Array) GetSlice(off, width uint64) uint64 {
	if width == 0 {
		return 0
	}
	checkWidth(width)

	idx := off / wordBits
	shift := off % wordBits
	if idx >= uint64(len(a.words)) {
		return 0
	}

	v := a.words[idx] >> shift
	if shift+width > wordBits && idx+1 < uint64(len(a.words)) {
		v |= a.words[idx+1] << (wordBits - shift)
	}
	return v & mask(width)
}

// SetSlice writes the low width bits of value at bit offset off, growing
// the array as needed. Higher bits of value are ignored.
func (a *Array) SetSlice(off, width, value uint64) {
	if width == 0 {
		return
	}
	checkWidth(width)

	idx := off / wordBits
	shift := off % wordBits
	a.grow(wordsFor(off + width))

	m := mask(width)
	value &= m

	a.words[idx] &^= m << shift
	a.words[idx] |= value << shift

	// Spill the high part into the next word.
	if shift+width > wordBits {
		lo := wordBits - shift
		a.words[idx+1] &^= m >> lo
		a.words[idx+1] |= value >> lo
	}
}

// ShrinkToFit releases unused capacity.
func (a *Array) ShrinkToFit() {
	if cap(a.words) == len(a.words) {
		return
	}
	words := make([]uint64, len(a.words))
	copy(words, a.words)
	a.words = words
}

// SizeBytes returns the number of bytes held by the backing words.
func (a *Array) SizeBytes() int {
	return cap(a.words) * 8
}

func (a *Array) grow(n uint64) {
	if n <= uint64(len(a.words)) {
		return
	}
	if n <= uint64(cap(a.words)) {
		a.words = a.words[:n]
		return
	}
	a.words = append(a.words, make([]uint64, n-uint64(len(a.words)))...)
}

func wordsFor(bits uint64) uint64 {
	return (bits + wordBits - 1) / wordBits
}

func mask(width uint64) uint64 {
	if width >= wordBits {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func checkWidth(width uint64) {
	if width > wordBits {
		panic(fmt.Sprintf("bitarray: width %d exceeds %d bits", width, wordBits))
	}
}
