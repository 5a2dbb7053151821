package metastore

import (
	"fmt"
	"sort"

	"github.com/pierrec/lz4"
)

// Compressor compresses stored metadata blobs.
type Compressor interface {
	Name() string
	// Format is the entry tag written in front of compressed blobs.
	Format() byte
	// Compress returns nil when the data does not shrink.
	Compress(data []byte) ([]byte, error)
	// Decompress restores data of the given uncompressed size.
	Decompress(data []byte, size int) ([]byte, error)
}

var compressors = map[string]Compressor{
	"none": NoCompressor{},
	"lz4":  LZ4Compressor{},
}

// GetCompressor returns the compressor registered as name.
func GetCompressor(name string) (Compressor, error) {
	c, ok := compressors[name]
	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s (available: %v)", name, Available())
	}
	return c, nil
}

// Available lists the compressor names.
func Available() []string {
	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// byFormat finds the compressor that wrote an entry tag.
func byFormat(format byte) (Compressor, bool) {
	for _, c := range compressors {
		if c.Format() == format {
			return c, true
		}
	}
	return nil, false
}

// NoCompressor stores data as is.
type NoCompressor struct{}

func (NoCompressor) Name() string { return "none" }

func (NoCompressor) Format() byte { return formatRaw }

func (NoCompressor) Compress([]byte) ([]byte, error) { return nil, nil }

func (NoCompressor) Decompress(data []byte, _ int) ([]byte, error) { return data, nil }

// LZ4Compressor uses LZ4 block compression.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Format() byte { return formatLZ4 }

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	out := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, out, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, nil
	}
	return out[:n], nil
}

func (LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompression: got %d bytes, want %d", n, size)
	}
	return out, nil
}
