// Package compress compresses whole payloads with LZ4 or ZSTD block
// compression. A payload is stored uncompressed when compression does not
// make it smaller.
package compress

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a compression algorithm.
type Type uint8

const (
	// None stores payloads verbatim.
	None Type = 0
	// LZ4 uses LZ4 block compression (fast).
	LZ4 Type = 1
	// ZSTD uses ZSTD block compression (better ratio).
	ZSTD Type = 2
)

// String returns the stable name of t.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(t))
	}
}

// Parse returns the Type with the given name.
func Parse(name string) (Type, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, errors.Newf("compress: unknown compression %q", name)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress compresses data with t. It returns the type actually used, which
// is None when compression does not shrink the payload.
func Compress(t Type, data []byte) ([]byte, Type, error) {
	if len(data) == 0 {
		return data, None, nil
	}

	var out []byte
	switch t {
	case None:
		return data, None, nil
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, None, errors.Wrap(err, "compress: lz4")
		}
		out = buf[:n]
	case ZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, None, errors.Wrap(err, "compress: zstd encoder")
		}
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, None, errors.Newf("compress: unknown compression %d", uint8(t))
	}

	// lz4 reports incompressible input with n == 0
	if len(out) == 0 || len(out) >= len(data) {
		return data, None, nil
	}
	return out, t, nil
}

// maxLZ4Ratio bounds the output of an LZ4 block per input byte: a length
// byte of 255 extends a match by at most 255 bytes.
const maxLZ4Ratio = 255

// maxPrealloc caps the buffer reserved up front for a ZSTD payload. Larger
// payloads grow while decoding.
const maxPrealloc = 1 << 24

// Decompress reverses Compress. size is the length of the uncompressed
// payload; sizes the input cannot expand to are rejected before allocating.
func Decompress(t Type, data []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.Newf("compress: negative size %d", size)
	}

	switch t {
	case None:
		if len(data) != size {
			return nil, errors.Newf("compress: stored size %d, want %d", len(data), size)
		}
		return data, nil
	case LZ4:
		if uint64(size) > uint64(len(data))*maxLZ4Ratio+16 {
			return nil, errors.Newf("compress: %d lz4 bytes cannot expand to %d", len(data), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, errors.Wrap(err, "compress: lz4")
		}
		if n != size {
			return nil, errors.Newf("compress: decompressed size %d, want %d", n, size)
		}
		return out, nil
	case ZSTD:
		var h zstd.Header
		if err := h.Decode(data); err != nil {
			return nil, errors.Wrap(err, "compress: zstd header")
		}
		if h.HasFCS && h.FrameContentSize != uint64(size) {
			return nil, errors.Newf("compress: zstd frame holds %d bytes, want %d", h.FrameContentSize, size)
		}

		dec, err := getZstdDecoder()
		if err != nil {
			return nil, errors.Wrap(err, "compress: zstd decoder")
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(data, make([]byte, 0, min(size, maxPrealloc)))
		if err != nil {
			return nil, errors.Wrap(err, "compress: zstd")
		}
		if len(out) != size {
			return nil, errors.Newf("compress: decompressed size %d, want %d", len(out), size)
		}
		return out, nil
	default:
		return nil, errors.Newf("compress: unknown compression %d", uint8(t))
	}
}
