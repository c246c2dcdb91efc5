package fid

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/TechPizzaDev/fid/internal/compress"
)

const (
	// magicNumber identifies saved bit vectors (ASCII: "FIDV").
	magicNumber = 0x46494456
	// formatVersion is the current envelope version.
	formatVersion = 1
)

// fileHeader is the 32-byte header in front of every saved vector. The
// payload that follows is the MarshalBinary encoding, compressed as
// recorded in Compression.
type fileHeader struct {
	Magic       uint32 // 0x46494456 ("FIDV")
	Version     uint16
	Compression uint8
	Reserved    uint8
	RawSize     uint64 // Payload size before compression
	StoredSize  uint64 // Payload size on disk
	Checksum    uint32 // CRC32 of the header (with Checksum 0) and stored payload
	Padding     [4]byte
}

var headerSize = binary.Size(fileHeader{})

func (h fileHeader) checksum(payload []byte) uint32 {
	h.Checksum = 0
	hash := crc32.NewIEEE()
	// hash.Hash never returns an error
	_ = binary.Write(hash, binary.LittleEndian, &h)
	_, _ = hash.Write(payload)
	return hash.Sum32()
}

// SaveOptions configure Save.
type SaveOptions struct {
	// Compression is applied to the payload. Payloads that do not shrink
	// are stored uncompressed.
	Compression Compression

	// Logger receives the outcome of the save.
	Logger *Logger
}

// DefaultSaveOptions store the vector uncompressed without logging.
var DefaultSaveOptions = SaveOptions{
	Compression: CompressionNone,
}

// WithCompression sets the compression used by Save.
func WithCompression(c Compression) func(o *SaveOptions) {
	return func(o *SaveOptions) {
		o.Compression = c
	}
}

// WithSaveLogger sets the logger used by Save.
func WithSaveLogger(l *Logger) func(o *SaveOptions) {
	return func(o *SaveOptions) {
		o.Logger = l
	}
}

// LoadOptions configure Load.
type LoadOptions struct {
	// Logger receives the outcome of the load.
	Logger *Logger
}

// WithLoadLogger sets the logger used by Load.
func WithLoadLogger(l *Logger) func(o *LoadOptions) {
	return func(o *LoadOptions) {
		o.Logger = l
	}
}

// Save writes v to w and returns the number of bytes written.
func (v *BitVector) Save(w io.Writer, optFns ...func(o *SaveOptions)) (int64, error) {
	opts := DefaultSaveOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}

	n, err := v.save(w, opts.Compression)
	opts.Logger.WithVector(v).LogSave(n, opts.Compression, err)
	return n, err
}

func (v *BitVector) save(w io.Writer, c Compression) (int64, error) {
	raw, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}

	stored, used, err := compress.Compress(c, raw)
	if err != nil {
		return 0, errors.Wrap(err, "fid: compress")
	}

	header := fileHeader{
		Magic:       magicNumber,
		Version:     formatVersion,
		Compression: uint8(used),
		RawSize:     uint64(len(raw)),
		StoredSize:  uint64(len(stored)),
	}
	header.Checksum = header.checksum(stored)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return 0, errors.Wrap(err, "fid: write header")
	}
	n, err := w.Write(stored)
	written := int64(headerSize + n)
	if err != nil {
		return written, errors.Wrap(err, "fid: write payload")
	}
	return written, nil
}

// Load reads a vector written by Save.
func Load(r io.Reader, optFns ...func(o *LoadOptions)) (*BitVector, error) {
	var opts LoadOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}

	cr := &countingReader{r: r}
	v, err := load(cr)
	if err != nil {
		opts.Logger.LogLoad(cr.n, err)
		return nil, err
	}
	opts.Logger.WithVector(v).LogLoad(cr.n, nil)
	return v, nil
}

func load(r io.Reader) (*BitVector, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "fid: read header")
	}
	if header.Magic != magicNumber {
		return nil, errors.Wrapf(ErrInvalidMagic, "got 0x%08x", header.Magic)
	}
	if header.Version != formatVersion {
		return nil, errors.Wrapf(ErrInvalidVersion, "got %d", header.Version)
	}

	// Read through a limit so that a corrupt size
	// cannot force a huge allocation up front.
	stored, err := io.ReadAll(io.LimitReader(r, int64(min(header.StoredSize, 1<<62))))
	if err != nil {
		return nil, errors.Wrap(err, "fid: read payload")
	}
	if uint64(len(stored)) != header.StoredSize {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "fid: payload has %d bytes, want %d",
			len(stored), header.StoredSize)
	}
	if sum := header.checksum(stored); sum != header.Checksum {
		return nil, errors.Wrapf(ErrChecksumMismatch, "got 0x%08x, want 0x%08x", sum, header.Checksum)
	}

	if header.RawSize > math.MaxInt {
		return nil, errors.Wrapf(ErrCorrupt, "payload size %d", header.RawSize)
	}
	raw, err := compress.Decompress(compress.Type(header.Compression), stored, int(header.RawSize))
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrCorrupt), "fid: decompress")
	}

	v := new(BitVector)
	if err := v.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return v, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
