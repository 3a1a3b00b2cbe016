package attrcache

import (
	"bytes"
	"compress/zlib"
	"fmt"

	fastlz "github.com/dgryski/go-fastlz"
)

// Compressor handles compression and decompression of cache values.
//
// Implement this interface to add support for a different algorithm
// (e.g. zstd, lz4, snappy).
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// FastlzCompressor compresses and decompresses data using the FastLZ
// algorithm, the same default PHP's memcached extension uses.
type FastlzCompressor struct{}

// Compress compresses data using FastLZ, producing the framed format
// [FastlzCompressor.Decompress] and the go-fastlz package itself expect.
func (c *FastlzCompressor) Compress(data []byte) ([]byte, error) {
	return fastlz.Encode(nil, data), nil
}

// Decompress decompresses FastLZ-compressed data. Expects the go-fastlz
// framing format (4-byte uncompressed length prefix).
func (c *FastlzCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("attrcache: fastlz data too short: %d bytes", len(data))
	}
	result, err := fastlz.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("attrcache: fastlz decompress: %w", err)
	}
	return result, nil
}

// ZlibCompressor compresses and decompresses data using zlib, as an
// alternative to [FastlzCompressor] for environments where go-fastlz's
// cgo-free pure port misbehaves on unusual inputs. Build a [Codec] using
// it with [NewCodecBuilder] and [FlagZlib] instead of [NewCodec]'s
// FastLZ default.
type ZlibCompressor struct{}

// Compress compresses data using zlib.
func (c *ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("attrcache: zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("attrcache: zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses zlib-compressed data.
func (c *ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("attrcache: zlib reader: %w", err)
	}
	defer r.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("attrcache: zlib read: %w", err)
	}
	return buf.Bytes(), nil
}
