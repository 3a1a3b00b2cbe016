package attrcache

import (
	"fmt"

	"github.com/jsloan/typedstream"
)

// compressThreshold is the smallest serialized size worth spending a
// compression pass on; below this, the framing overhead usually loses to
// the savings.
const compressThreshold = 256

// Codec encodes decoded typedstream results into a cache value plus
// flags word, and decodes them back, by orchestrating a [Serializer] and
// a [Compressor]: serialize-then-compress going in, decompress-then-
// deserialize coming back out, so a value this process writes stays
// readable by any other PHP-memcached-compatible reader.
//
// Create one with [NewCodec] for the default flattened-framing+FastLZ
// pipeline, [NewZlibCodec] for flattened-framing+zlib, [NewYAMLCodec] for
// a human-readable YAML value, or use [NewCodecBuilder] for a custom
// pairing.
type Codec struct {
	serializer      Serializer
	serializerFlag  uint32
	compressor      Compressor
	compressionFlag uint32
}

// NewCodec creates a Codec using [FlattenedSerializer] and FastLZ
// compression.
func NewCodec() *Codec {
	return NewCodecBuilder().
		WithSerializer(&FlattenedSerializer{}, FlagFlattened).
		WithCompressor(&FastlzCompressor{}, FlagFastlz).
		Build()
}

// NewZlibCodec creates a Codec using [FlattenedSerializer] and zlib
// compression, for callers who want a stdlib-only compressor instead of
// the FastLZ default.
func NewZlibCodec() *Codec {
	return NewCodecBuilder().
		WithSerializer(&FlattenedSerializer{}, FlagFlattened).
		WithCompressor(&ZlibCompressor{}, FlagZlib).
		Build()
}

// NewYAMLCodec creates a Codec using [YAMLSerializer] and FastLZ
// compression, for callers who want to inspect cache values by hand.
func NewYAMLCodec() *Codec {
	return NewCodecBuilder().
		WithSerializer(&YAMLSerializer{}, FlagYAML).
		WithCompressor(&FastlzCompressor{}, FlagFastlz).
		Build()
}

// Encode serializes and, if the result is large enough to benefit,
// compresses records, returning the cache value and the flags word a
// [Codec.Decode] call (or a compatible PHP-style reader) needs to invert it.
func (c *Codec) Encode(records []typedstream.Archivable) (data []byte, flags uint32, err error) {
	raw, err := c.serializer.Serialize(records)
	if err != nil {
		return nil, 0, err
	}

	flags = c.serializerFlag
	if len(raw) < compressThreshold {
		return raw, flags, nil
	}

	compressed, err := c.compressor.Compress(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("attrcache: compress: %w", err)
	}
	return compressed, flags | FlagCompressed | c.compressionFlag, nil
}

// Decode reverses [Codec.Encode]: decompresses if the flags word says
// the value is compressed, then deserializes.
func (c *Codec) Decode(data []byte, flags uint32) ([]typedstream.Archivable, error) {
	if len(data) == 0 {
		return nil, nil
	}

	raw := data
	if IsCompressed(flags) {
		decompressed, err := c.compressor.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("attrcache: decompress: %w", err)
		}
		raw = decompressed
	}

	return c.serializer.Deserialize(raw)
}

// --- Builder ---

// CodecBuilder provides a fluent API for constructing a [Codec] with a
// custom [Serializer] and [Compressor].
type CodecBuilder struct {
	serializer      Serializer
	serializerFlag  uint32
	compressor      Compressor
	compressionFlag uint32
}

// NewCodecBuilder creates a new empty builder.
func NewCodecBuilder() *CodecBuilder {
	return &CodecBuilder{}
}

// WithSerializer sets the serializer, and the flag bit ([FlagFlattened],
// [FlagYAML], ...) a Codec built from it stamps into the low nibble of
// the flags word so a reader knows which encoding a value is in.
func (b *CodecBuilder) WithSerializer(s Serializer, flag uint32) *CodecBuilder {
	b.serializer = s
	b.serializerFlag = flag
	return b
}

// WithCompressor sets the compressor used once a value grows past the
// compression threshold, and the flag bit ([FlagFastlz], [FlagZlib], ...)
// a Codec built from it stamps onto compressed values so a reader knows
// which algorithm produced them.
func (b *CodecBuilder) WithCompressor(c Compressor, flag uint32) *CodecBuilder {
	b.compressor = c
	b.compressionFlag = flag
	return b
}

// Build creates the Codec from the builder configuration.
func (b *CodecBuilder) Build() *Codec {
	return &Codec{
		serializer:      b.serializer,
		serializerFlag:  b.serializerFlag,
		compressor:      b.compressor,
		compressionFlag: b.compressionFlag,
	}
}
