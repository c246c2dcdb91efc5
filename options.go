package fid

import (
	"math"

	"github.com/TechPizzaDev/fid/internal/bitarray"
	"github.com/TechPizzaDev/fid/internal/tables"
)

// Options control how much memory a new BitVector reserves up front.
// They never change the contents or the query results of the vector.
type Options struct {
	// Capacity is the expected number of bits.
	Capacity uint64

	// Odds is the expected probability that a pushed bit is set, in [0, 1].
	// It predicts how many select samples are needed.
	Odds float64

	// CodeWidth is the expected average number of code bits per small
	// block, in [0, 64]. Sparse or dense vectors compress well and need
	// much less than 64.
	CodeWidth uint64
}

// DefaultOptions assume an incompressible vector of unknown length.
var DefaultOptions = Options{
	Capacity:  0,
	Odds:      0.5,
	CodeWidth: sblockWidth,
}

// WithCapacity reserves room for capacity bits.
func WithCapacity(capacity uint64) func(o *Options) {
	return func(o *Options) {
		o.Capacity = capacity
	}
}

// WithOdds predicts the storage needed from the probability that a bit is
// set. Odds around 0.5 have the highest entropy and reserve the most; odds
// outside [0, 1] are clamped.
func WithOdds(odds float64) func(o *Options) {
	return func(o *Options) {
		if math.IsNaN(odds) {
			odds = 0.5
		}
		o.Odds = min(max(odds, 0), 1)
		o.CodeWidth = tables.AvgCodeWidth(o.Odds)
	}
}

// New creates an empty BitVector. Without options nothing is allocated
// until bits are pushed.
func New(optFns ...func(o *Options)) *BitVector {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	return newWithOptions(opts)
}

func newWithOptions(opts Options) *BitVector {
	n := opts.Capacity
	if n == 0 {
		return &BitVector{}
	}

	sblocks := divCeil(n, sblockWidth)
	lblocks := divCeil(n, lblockWidth)

	units := float64(divCeil(n, selectUnitNum))
	oneUnits := uint64(math.Ceil(units * opts.Odds))
	zeroUnits := uint64(math.Ceil(units * (1 - opts.Odds)))

	return &BitVector{
		sblocks:      *bitarray.New(sblocks * sblockSize),
		lblocks:      make([]uint64, 0, lblocks),
		indices:      *bitarray.New(sblocks * min(opts.CodeWidth, sblockWidth)),
		pointers:     make([]uint64, 0, lblocks),
		select1Units: make([]uint64, 0, oneUnits),
		select0Units: make([]uint64, 0, zeroUnits),
	}
}

// FromBit creates a vector of n copies of b.
func FromBit(b bool, n uint64) *BitVector {
	odds := 0.0
	if b {
		odds = 1
	}

	v := New(WithCapacity(n), WithOdds(odds))
	for i := uint64(0); i < n; i++ {
		v.Push(b)
	}
	return v
}

// FromBools creates a vector holding bs in order.
func FromBools(bs []bool) *BitVector {
	v := New(WithCapacity(uint64(len(bs))))
	for _, b := range bs {
		v.Push(b)
	}
	return v
}

func divCeil(a, b uint64) uint64 {
	return (a + b - 1) / b
}
