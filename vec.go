// Package fid provides a compressed bit vector
// that can answer rank and select queries.
package fid

import (
	"bytes"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/TechPizzaDev/fid/internal/bitarray"
	"github.com/TechPizzaDev/fid/internal/tables"
)

const (
	// sblockWidth is the number of bits
	// in each small block.
	sblockWidth = tables.BlockWidth

	// sblockSize is the number of bits needed
	// to store the class of a small block,
	// ceil(log2(sblockWidth + 1)).
	sblockSize = 7

	// lblockWidth is the number of bits
	// in each large block.
	lblockWidth = 1024
	lblockShift = 10

	sblocksPerLblock = lblockWidth / sblockWidth

	// selectUnitNum is the number of 1s (or 0s)
	// between select samples.
	selectUnitNum = 4096
)

// BitVector is an append-only bit vector compressed close to its zeroth
// order entropy, as described by G. Navarro and E. Providel in "Fast, Small,
// Simple Rank/Select on Bitmaps", following the layout of rsdic by
// D. Okanohara.
//
// Bits are grouped in small blocks of 64 bits. Each small block is stored
// as its class (number of 1s) and its enumerative code within the class,
// see enum.go. Every 16 small blocks form a large block, for which the
// number of 1s before it and the offset of its first code are sampled.
// Select is sped up by recording the large block of every 4096th 1 and 0.
//
// The zero value is an empty vector ready to use. A BitVector must not be
// modified concurrently, but once built any number of goroutines may query
// it at the same time.
type BitVector struct {
	length uint64
	ones   uint64

	// sblocks[j] is the class of
	// the jth completed small block.
	sblocks bitarray.Array

	// lblocks[m] is the number of 1s
	// from 0 to index ((m+1)*lblockWidth)-1
	lblocks []uint64

	// indices holds the codes of all completed
	// small blocks, back to back.
	indices bitarray.Array

	// pointers[m] is the offset in indices
	// of the first code after the mth
	// completed large block.
	pointers []uint64

	// select1Units[u] is the large block that
	// contains the ((u+1)*selectUnitNum)th 1.
	// select0Units is the same for 0s.
	select1Units []uint64
	select0Units []uint64

	// lastSblockBits buffers the small
	// block being filled.
	lastSblockBits uint64

	// pointer is the number of bits
	// written to indices.
	pointer uint64
}

// Push appends a bit to the vector.
func (v *BitVector) Push(b bool) {
	if b {
		v.lastSblockBits |= 1 << (v.length % sblockWidth)
		v.ones++
		if v.ones%selectUnitNum == 0 {
			v.select1Units = append(v.select1Units, v.length>>lblockShift)
		}
	} else {
		zeros := v.length - v.ones + 1
		if zeros%selectUnitNum == 0 {
			v.select0Units = append(v.select0Units, v.length>>lblockShift)
		}
	}
	v.length++

	if v.length%sblockWidth == 0 {
		v.flush()
	}
}

// flush encodes the buffered small block and
// updates the large block samples.
func (v *BitVector) flush() {
	k := uint64(bits.OnesCount64(v.lastSblockBits))
	v.sblocks.SetWord(v.length/sblockWidth-1, sblockSize, k)

	code, width := encode(v.lastSblockBits, k)
	v.indices.SetSlice(v.pointer, width, code)
	v.pointer += width

	v.lastSblockBits = 0

	if v.length%lblockWidth == 0 {
		v.lblocks = append(v.lblocks, v.ones)
		v.pointers = append(v.pointers, v.pointer)
	}
}

// ShrinkToFit releases the capacity reserved
// beyond what the pushed bits use.
func (v *BitVector) ShrinkToFit() {
	v.sblocks.ShrinkToFit()
	v.indices.ShrinkToFit()
	v.lblocks = shrink(v.lblocks)
	v.pointers = shrink(v.pointers)
	v.select1Units = shrink(v.select1Units)
	v.select0Units = shrink(v.select0Units)
}

func shrink(s []uint64) []uint64 {
	if cap(s) == len(s) {
		return s
	}
	if len(s) == 0 {
		return nil
	}
	out := make([]uint64, len(s))
	copy(out, s)
	return out
}

// Get returns the bit at index i.
// Panics if i is out of range.
func (v *BitVector) Get(i uint64) bool {
	if i >= v.length {
		panic("fid: index out of range")
	}

	if i >= v.tailStart() {
		return (v.lastSblockBits>>(i%sblockWidth))&1 == 1
	}

	k, pointer, _ := v.locate(i)
	return decodeBit(v.code(k, pointer), k, i%sblockWidth)
}

// Rank1 counts the number of 1s from the beginning
// up to but excluding the ith index. Returns the
// total number of 1s if i is out of range.
func (v *BitVector) Rank1(i uint64) uint64 {
	if i >= v.length {
		return v.ones
	}

	if i >= v.tailStart() {
		after := bits.OnesCount64(v.lastSblockBits >> (i % sblockWidth))
		return v.ones - uint64(after)
	}

	k, pointer, rank := v.locate(i)
	return rank + decodeRank1(v.code(k, pointer), k, i%sblockWidth)
}

// Rank0 counts the number of 0s from the beginning
// up to but excluding the ith index. Returns the
// total number of 0s if i is out of range.
func (v *BitVector) Rank0(i uint64) uint64 {
	i = min(i, v.length)
	return i - v.Rank1(i)
}

// Rank counts the number of b bits in [0, i).
func (v *BitVector) Rank(b bool, i uint64) uint64 {
	if b {
		return v.Rank1(i)
	}
	return v.Rank0(i)
}

// BitAndRank returns the bit at index i and the
// number of bits equal to it in [0, i). This is
// faster than calling Get and Rank separately.
// Panics if i is out of range.
func (v *BitVector) BitAndRank(i uint64) (bool, uint64) {
	if i >= v.length {
		panic("fid: index out of range")
	}

	var b bool
	var rank1 uint64
	if i >= v.tailStart() {
		offset := i % sblockWidth
		b = (v.lastSblockBits>>offset)&1 == 1
		rank1 = v.ones - uint64(bits.OnesCount64(v.lastSblockBits>>offset))
	} else {
		k, pointer, rank := v.locate(i)
		code := v.code(k, pointer)
		b = decodeBit(code, k, i%sblockWidth)
		rank1 = rank + decodeRank1(code, k, i%sblockWidth)
	}

	if b {
		return b, rank1
	}
	return b, i - rank1
}

// Select1 returns the index of the (r+1)th 1.
// Returns the length of the vector if there
// are r 1s or fewer.
func (v *BitVector) Select1(r uint64) uint64 {
	if r >= v.ones {
		return v.length
	}

	lastOnes := uint64(bits.OnesCount64(v.lastSblockBits))
	if v.ones-r <= lastOnes {
		rank := r - (v.ones - lastOnes)
		return v.tailStart() + select1Raw(v.lastSblockBits, rank)
	}

	// Skip the large blocks that end at or before the (r+1)th 1.
	lblock := unit(v.select1Units, r)
	for lblock < uint64(len(v.lblocks)) && v.lblocks[lblock] <= r {
		lblock++
	}

	sblock := lblock * sblocksPerLblock
	rank := v.lblockRank(lblock)
	pointer := v.lblockPointer(lblock)
	k := v.sblocks.GetWord(sblock, sblockSize)
	for rank+k <= r {
		rank += k
		pointer += tables.CodeWidth(k)
		sblock++
		k = v.sblocks.GetWord(sblock, sblockSize)
	}

	return sblock*sblockWidth + decodeSelect1(v.code(k, pointer), k, r-rank)
}

// Select0 returns the index of the (r+1)th 0.
// Returns the length of the vector if there
// are r 0s or fewer.
func (v *BitVector) Select0(r uint64) uint64 {
	zeros := v.length - v.ones
	if r >= zeros {
		return v.length
	}

	lastWidth := v.length % sblockWidth
	lastZeros := lastWidth - uint64(bits.OnesCount64(v.lastSblockBits))
	if zeros-r <= lastZeros {
		rank := r - (zeros - lastZeros)
		return v.tailStart() + select0Raw(v.lastSblockBits, rank)
	}

	lblock := unit(v.select0Units, r)
	for lblock < uint64(len(v.lblocks)) && (lblock+1)*lblockWidth-v.lblocks[lblock] <= r {
		lblock++
	}

	sblock := lblock * sblocksPerLblock
	rank := lblock*lblockWidth - v.lblockRank(lblock)
	pointer := v.lblockPointer(lblock)
	k := v.sblocks.GetWord(sblock, sblockSize)
	for rank+sblockWidth-k <= r {
		rank += sblockWidth - k
		pointer += tables.CodeWidth(k)
		sblock++
		k = v.sblocks.GetWord(sblock, sblockSize)
	}

	return sblock*sblockWidth + decodeSelect0(v.code(k, pointer), k, r-rank)
}

// Select returns the index of the (r+1)th b bit.
func (v *BitVector) Select(b bool, r uint64) uint64 {
	if b {
		return v.Select1(r)
	}
	return v.Select0(r)
}

// Len returns the number of bits stored.
func (v *BitVector) Len() uint64 {
	return v.length
}

// Ones returns the total number of 1s.
func (v *BitVector) Ones() uint64 {
	return v.ones
}

// Zeros returns the total number of 0s.
func (v *BitVector) Zeros() uint64 {
	return v.length - v.ones
}

// Size returns the vector size in bytes.
func (v *BitVector) Size() int {
	size := int(unsafe.Sizeof(*v))
	size += v.sblocks.SizeBytes()
	size += v.indices.SizeBytes()
	size += cap(v.lblocks) * 8
	size += cap(v.pointers) * 8
	size += cap(v.select1Units) * 8
	size += cap(v.select0Units) * 8

	return size
}

// String returns the classes of all small
// blocks and the rank of all large blocks.
func (v *BitVector) String() string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "len:    %d\n", v.length)
	fmt.Fprintf(buf, "ones:   %d\n", v.ones)

	buf.WriteString("sblock: ")
	for j := uint64(0); j < v.length/sblockWidth; j++ {
		fmt.Fprintf(buf, "%d ", v.sblocks.GetWord(j, sblockSize))
	}
	fmt.Fprintf(buf, "%d\n", bits.OnesCount64(v.lastSblockBits))

	buf.WriteString("lblock:")
	for _, r := range v.lblocks {
		fmt.Fprintf(buf, " %d", r)
	}

	return buf.String()
}

// tailStart returns the index of the first bit
// that is still buffered in lastSblockBits.
func (v *BitVector) tailStart() uint64 {
	return v.length - v.length%sblockWidth
}

// locate finds the small block containing index i, which must not be
// buffered. It returns the class of the block, the offset of its code and
// the number of 1s before it.
func (v *BitVector) locate(i uint64) (k, pointer, rank uint64) {
	lblock := i / lblockWidth
	pointer = v.lblockPointer(lblock)
	rank = v.lblockRank(lblock)

	sblock := i / sblockWidth
	for j := lblock * sblocksPerLblock; j < sblock; j++ {
		c := v.sblocks.GetWord(j, sblockSize)
		rank += c
		pointer += tables.CodeWidth(c)
	}

	k = v.sblocks.GetWord(sblock, sblockSize)
	return k, pointer, rank
}

func (v *BitVector) code(k, pointer uint64) uint64 {
	return v.indices.GetSlice(pointer, tables.CodeWidth(k))
}

// lblockRank returns the number of 1s before large block m.
func (v *BitVector) lblockRank(m uint64) uint64 {
	if m == 0 {
		return 0
	}
	return v.lblocks[m-1]
}

// lblockPointer returns the offset of the first code of large block m.
func (v *BitVector) lblockPointer(m uint64) uint64 {
	if m == 0 {
		return 0
	}
	return v.pointers[m-1]
}

// unit returns a large block at or before the
// one holding the (r+1)th sampled bit.
func unit(units []uint64, r uint64) uint64 {
	u := r / selectUnitNum
	if u == 0 || u > uint64(len(units)) {
		return 0
	}
	return units[u-1]
}
