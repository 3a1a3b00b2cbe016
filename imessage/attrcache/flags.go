package attrcache

import "fmt"

// Cache flag constants, laid out the same way the PHP memcached
// extension lays out its flags word: low nibble selects the serializer,
// a single compressed bit plus an algorithm bit select the compressor.
// Keeping this layout means a cache entry this package writes decodes
// cleanly under the PHP extension's own flag parsing, and vice versa.
const (
	FlagFlattened uint32 = 0 // FlattenedSerializer's hand-rolled binary framing
	FlagYAML      uint32 = 1 // gopkg.in/yaml.v3 encoding of a []typedstream.Archivable
)

const (
	FlagCompressed uint32 = 1 << 4 // value is compressed
	FlagZlib       uint32 = 1 << 5 // zlib compression
	FlagFastlz     uint32 = 1 << 6 // FastLZ compression
)

const (
	SerializerMask  uint32 = 0x0F
	CompressionMask uint32 = FlagZlib | FlagFastlz
)

// SerializerType extracts the serializer type from a flags word.
func SerializerType(flags uint32) uint32 {
	return flags & SerializerMask
}

// IsCompressed reports whether the compressed bit is set.
func IsCompressed(flags uint32) bool {
	return flags&FlagCompressed != 0
}

// ExplainFlags returns a human-readable rendering of a flags word, useful
// when inspecting cache entries by hand.
func ExplainFlags(flags uint32) string {
	compression := "none"
	switch {
	case flags&FlagFastlz != 0:
		compression = "fastlz"
	case flags&FlagZlib != 0:
		compression = "zlib"
	}
	serializer := "flattened"
	if SerializerType(flags) == FlagYAML {
		serializer = "yaml"
	}
	return fmt.Sprintf("type=%s compressed=%v compression=%s (raw=0x%08x)",
		serializer, IsCompressed(flags), compression, flags)
}
