package fid

import "github.com/TechPizzaDev/fid/internal/compress"

// Compression selects how Save compresses the serialized vector.
type Compression = compress.Type

const (
	// CompressionNone stores the vector verbatim.
	CompressionNone = compress.None
	// CompressionLZ4 favors speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favors size.
	CompressionZSTD = compress.ZSTD
)

// ParseCompression returns the Compression named "none", "lz4" or "zstd".
// The empty name means CompressionNone.
func ParseCompression(name string) (Compression, error) {
	return compress.Parse(name)
}
