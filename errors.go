package fid

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidMagic is returned by Load when the input
	// does not start with a serialized bit vector.
	ErrInvalidMagic = errors.New("fid: invalid magic number")

	// ErrInvalidVersion is returned by Load for
	// files written by an unknown format version.
	ErrInvalidVersion = errors.New("fid: unsupported format version")

	// ErrChecksumMismatch is returned by Load when the
	// payload does not match its stored checksum.
	ErrChecksumMismatch = errors.New("fid: checksum mismatch")

	// ErrCorrupt is returned when decoded fields
	// do not describe a consistent bit vector.
	ErrCorrupt = errors.New("fid: corrupt bit vector")

	// ErrTooLarge is returned when a vector has positions
	// that do not fit the target representation.
	ErrTooLarge = errors.New("fid: bit vector too large")
)
