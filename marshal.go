package fid

import (
	"math/bits"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/ugorji/go/codec"

	"github.com/TechPizzaDev/fid/internal/bitarray"
	"github.com/TechPizzaDev/fid/internal/tables"
)

var msgpackHandle codec.MsgpackHandle

// wireVector mirrors every field of BitVector for encoding.
type wireVector struct {
	Len            uint64   `codec:"len"`
	Ones           uint64   `codec:"ones"`
	Sblocks        []uint64 `codec:"sblocks"`
	Lblocks        []uint64 `codec:"lblocks"`
	Indices        []uint64 `codec:"indices"`
	Pointers       []uint64 `codec:"pointers"`
	Select1Units   []uint64 `codec:"select1_units"`
	Select0Units   []uint64 `codec:"select0_units"`
	LastSblockBits uint64   `codec:"last_sblock_bits"`
	Pointer        uint64   `codec:"pointer"`
}

// wire shares the backing arrays of v, so the
// result must be treated as read-only.
func (v *BitVector) wire() wireVector {
	return wireVector{
		Len:            v.length,
		Ones:           v.ones,
		Sblocks:        nonEmpty(v.sblocks.Words()),
		Lblocks:        nonEmpty(v.lblocks),
		Indices:        nonEmpty(v.indices.Words()),
		Pointers:       nonEmpty(v.pointers),
		Select1Units:   nonEmpty(v.select1Units),
		Select0Units:   nonEmpty(v.select0Units),
		LastSblockBits: v.lastSblockBits,
		Pointer:        v.pointer,
	}
}

func nonEmpty(s []uint64) []uint64 {
	if len(s) == 0 {
		return nil
	}
	return s
}

// MarshalBinary encodes the BitVector into a binary form and returns the result.
func (v *BitVector) MarshalBinary() ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, &msgpackHandle)
	if err := enc.Encode(v.wire()); err != nil {
		return nil, errors.Wrap(err, "fid: encode bit vector")
	}
	return out, nil
}

// UnmarshalBinary decodes the BitVector from a binary form generated by
// MarshalBinary. v is left unchanged on error.
func (v *BitVector) UnmarshalBinary(data []byte) error {
	var w wireVector
	dec := codec.NewDecoderBytes(data, &msgpackHandle)
	if err := dec.Decode(&w); err != nil {
		return errors.Wrap(errors.Mark(err, ErrCorrupt), "fid: decode bit vector")
	}
	if err := w.validate(); err != nil {
		return err
	}

	*v = BitVector{
		length:         w.Len,
		ones:           w.Ones,
		sblocks:        *bitarray.FromWords(w.Sblocks),
		lblocks:        w.Lblocks,
		indices:        *bitarray.FromWords(w.Indices),
		pointers:       w.Pointers,
		select1Units:   w.Select1Units,
		select0Units:   w.Select0Units,
		lastSblockBits: w.LastSblockBits,
		pointer:        w.Pointer,
	}
	return nil
}

// validate checks the shape of the decoded arrays, so that queries
// on the result stay within bounds.
func (w *wireVector) validate() error {
	nsblocks := w.Len / sblockWidth
	nlblocks := w.Len / lblockWidth

	switch {
	case w.Ones > w.Len:
		return errors.Wrapf(ErrCorrupt, "%d ones in %d bits", w.Ones, w.Len)
	case uint64(len(w.Sblocks))*64 < nsblocks*sblockSize:
		return errors.Wrapf(ErrCorrupt, "%d words too short for %d small blocks", len(w.Sblocks), nsblocks)
	case uint64(len(w.Lblocks)) != nlblocks || uint64(len(w.Pointers)) != nlblocks:
		return errors.Wrapf(ErrCorrupt, "%d large blocks, %d pointers, want %d",
			len(w.Lblocks), len(w.Pointers), nlblocks)
	case uint64(len(w.Indices))*64 < w.Pointer:
		return errors.Wrapf(ErrCorrupt, "code offset %d beyond %d words", w.Pointer, len(w.Indices))
	case uint64(len(w.Select1Units)) != w.Ones/selectUnitNum:
		return errors.Wrapf(ErrCorrupt, "%d select1 samples for %d ones", len(w.Select1Units), w.Ones)
	case uint64(len(w.Select0Units)) != (w.Len-w.Ones)/selectUnitNum:
		return errors.Wrapf(ErrCorrupt, "%d select0 samples for %d zeros", len(w.Select0Units), w.Len-w.Ones)
	case w.LastSblockBits>>(w.Len%sblockWidth) != 0:
		return errors.Wrapf(ErrCorrupt, "buffered bits %#x beyond length %d", w.LastSblockBits, w.Len)
	}

	// Replay the classes so that every sample agrees with the blocks it
	// summarizes; the select scans rely on it to terminate.
	classes := bitarray.FromWords(w.Sblocks)
	rank, pointer := uint64(0), uint64(0)
	for j := uint64(0); j < nsblocks; j++ {
		k := classes.GetWord(j, sblockSize)
		if k > sblockWidth {
			return errors.Wrapf(ErrCorrupt, "small block %d has class %d", j, k)
		}
		rank += k
		pointer += tables.CodeWidth(k)

		if (j+1)%sblocksPerLblock == 0 {
			m := j / sblocksPerLblock
			if w.Lblocks[m] != rank || w.Pointers[m] != pointer {
				return errors.Wrapf(ErrCorrupt, "large block %d does not match its small blocks", m)
			}
		}
	}
	if pointer != w.Pointer {
		return errors.Wrapf(ErrCorrupt, "codes end at %d, want %d", pointer, w.Pointer)
	}
	if rank+uint64(bits.OnesCount64(w.LastSblockBits)) != w.Ones {
		return errors.Wrapf(ErrCorrupt, "blocks hold %d ones, want %d",
			rank+uint64(bits.OnesCount64(w.LastSblockBits)), w.Ones)
	}

	// Each sample is the large block holding the ((u+1)*selectUnitNum)th
	// 1 or 0, or the incomplete large block past the sampled ones.
	for u, got := range w.Select1Units {
		c := uint64(u+1) * selectUnitNum
		want := sort.Search(len(w.Lblocks), func(m int) bool {
			return w.Lblocks[m] >= c
		})
		if got != uint64(want) {
			return errors.Wrapf(ErrCorrupt, "select1 sample %d is %d, want %d", u, got, want)
		}
	}
	for u, got := range w.Select0Units {
		c := uint64(u+1) * selectUnitNum
		want := sort.Search(len(w.Lblocks), func(m int) bool {
			return uint64(m+1)*lblockWidth-w.Lblocks[m] >= c
		})
		if got != uint64(want) {
			return errors.Wrapf(ErrCorrupt, "select0 sample %d is %d, want %d", u, got, want)
		}
	}
	return nil
}
