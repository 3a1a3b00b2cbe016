package typedstream

import (
	"fmt"
	"strings"
	"unicode"
)

// Decode decodes a typedstream-serialized byte buffer into a sequence of
// reconstructed values.
//
// The buffer must carry the version-4 "streamtyped" header with system
// version 1000, i.e. open with the bytes 04 0B "streamtyped" 81 E8 03. This is a
// convenience wrapper around [Decoder.Decode] using default options.
func Decode(data []byte) ([]Archivable, error) {
	return defaultDecoder.Decode(data)
}

// defaultDecoder is the package-level decoder with default options.
var defaultDecoder = NewDecoder()

// Option configures a [Decoder].
type Option func(*Decoder)

// WithStrict enables strict decoding mode. It changes one case only: an
// embedded_data field whose START marker is directly followed by END (no
// inner type encoding) contributes no value by default, and is reported as
// an ErrInvalidHeader error in strict mode. The rest of the grammar is the
// same in both modes.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// Decoder decodes typedstream-serialized binary data.
//
// A Decoder is safe for concurrent use: each call to [Decoder.Decode]
// creates its own internal reader and interning tables. The Decoder value
// itself only holds configuration.
type Decoder struct {
	strict bool
}

// NewDecoder creates a new Decoder with the given options.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// headerVersion, headerSignature, and headerSystemVersion are the fixed
// values every supported stream must open with.
const (
	headerVersion       = 4
	headerSignature     = "streamtyped"
	headerSystemVersion = 1000
)

// Decode decodes a typedstream-serialized byte buffer into a sequence of
// reconstructed values. The tables backing back-references live only for
// the duration of this call.
func (d *Decoder) Decode(data []byte) ([]Archivable, error) {
	r := newReader(data, d.strict)

	if err := r.validateHeader(); err != nil {
		return nil, err
	}

	var out []Archivable
	for r.pos < len(r.data) {
		b, err := r.current()
		if err != nil {
			return nil, err
		}
		if b == tagEnd {
			r.advance()
			continue
		}

		tl, _, ok, err := r.getType(false)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		result, hasResult, err := r.readTypes(tl)
		if err != nil {
			return nil, err
		}
		if hasResult {
			out = append(out, result)
		}
	}

	return out, nil
}

func (r *reader) validateHeader() error {
	version, err := r.readUnsignedInt()
	if err != nil {
		return err
	}
	if version != headerVersion {
		return newError(ErrInvalidHeader, 0, fmt.Sprintf("version: got %d, want %d", version, headerVersion))
	}

	nameLen, err := r.readUnsignedInt()
	if err != nil {
		return err
	}
	name, err := r.readUTF8(int(nameLen))
	if err != nil {
		return err
	}
	if name != headerSignature {
		return newError(ErrInvalidHeader, 0, fmt.Sprintf("signature: got %q, want %q", name, headerSignature))
	}

	sysVersion, err := r.readSignedInt()
	if err != nil {
		return err
	}
	if sysVersion != headerSystemVersion {
		return newError(ErrInvalidHeader, 0, fmt.Sprintf("system version: got %d, want %d", sysVersion, headerSystemVersion))
	}

	return nil
}

// --- Shape accessors (spec §6) ---

// StringValue returns the plain text of an NSString/NSMutableString
// instance, filtering out attribute-key metadata the same way the
// original archiver's consumers do: text beginning with "__k", containing
// "Attribute" or "NS", or containing no letter or digit is rejected. This
// heuristic is preserved exactly as specified, including its known false
// positives against legitimate text containing "NS".
func (a Archivable) StringValue() (string, bool) {
	if a.Kind != ArchivableObject {
		return "", false
	}
	if a.Class.Name != "NSString" && a.Class.Name != "NSMutableString" {
		return "", false
	}
	if len(a.Values) == 0 || a.Values[0].Kind != KindString {
		return "", false
	}
	text := a.Values[0].Text
	if strings.HasPrefix(text, "__k") {
		return "", false
	}
	if strings.Contains(text, "Attribute") {
		return "", false
	}
	if strings.Contains(text, "NS") {
		return "", false
	}
	if !containsLetterOrDigit(text) {
		return "", false
	}
	return text, true
}

// IntegerValue returns the signed integer payload of an NSNumber instance.
func (a Archivable) IntegerValue() (int64, bool) {
	if a.Kind != ArchivableObject || a.Class.Name != "NSNumber" {
		return 0, false
	}
	if len(a.Values) == 0 || a.Values[0].Kind != KindSignedInt {
		return 0, false
	}
	return a.Values[0].SignedInt, true
}

// DoubleValue returns the double payload of an NSNumber instance.
func (a Archivable) DoubleValue() (float64, bool) {
	if a.Kind != ArchivableObject || a.Class.Name != "NSNumber" {
		return 0, false
	}
	if len(a.Values) == 0 || a.Values[0].Kind != KindDouble {
		return 0, false
	}
	return a.Values[0].Float64, true
}

func containsLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
