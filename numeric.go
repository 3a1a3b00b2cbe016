package typedstream

import (
	"encoding/binary"
	"math"
)

// readSignedInt decodes a signed 64-bit integer per spec §4.2: an I_16 or
// I_32 tag selects a fixed-width little-endian field; otherwise a byte
// above ReferenceTag not immediately followed by END is a repeated type
// tag to skip over (a dictionary-context quirk, preserved as-is); failing
// that, the current byte is a bare signed 8-bit value.
func (r *reader) readSignedInt() (int64, error) {
	b, err := r.current()
	if err != nil {
		return 0, err
	}

	switch b {
	case tagI16:
		r.advance()
		raw, err := r.readExact(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.LittleEndian.Uint16(raw))), nil
	case tagI32:
		r.advance()
		raw, err := r.readExact(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.LittleEndian.Uint32(raw))), nil
	default:
		if b > ReferenceTag {
			nb, nerr := r.next()
			if nerr == nil && nb != tagEnd {
				r.advance()
				return r.readSignedInt()
			}
		}
		r.advance()
		return int64(int8(b)), nil
	}
}

// readUnsignedInt decodes an unsigned 64-bit integer: I_16/I_32 tags
// zero-extend a fixed-width little-endian field, otherwise the current
// byte is a bare unsigned 8-bit value.
func (r *reader) readUnsignedInt() (uint64, error) {
	b, err := r.current()
	if err != nil {
		return 0, err
	}

	switch b {
	case tagI16:
		r.advance()
		raw, err := r.readExact(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(raw)), nil
	case tagI32:
		r.advance()
		raw, err := r.readExact(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(raw)), nil
	default:
		r.advance()
		return uint64(b), nil
	}
}

// readFloat32 decodes a 32-bit float. A DECIMAL tag means a raw IEEE 754
// field follows; any other encoding (including I_16/I_32 or a bare byte)
// is read as a signed integer and converted, an interoperation quirk
// where small numeric fields may be integer-encoded even under a float
// type.
func (r *reader) readFloat32() (float32, error) {
	b, err := r.current()
	if err != nil {
		return 0, err
	}
	if b == tagDecimal {
		r.advance()
		raw, err := r.readExact(4)
		if err != nil {
			return 0, err
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(raw)), nil
	}
	n, err := r.readSignedInt()
	if err != nil {
		return 0, err
	}
	return float32(n), nil
}

// readFloat64 decodes a 64-bit double under the same rule as readFloat32.
func (r *reader) readFloat64() (float64, error) {
	b, err := r.current()
	if err != nil {
		return 0, err
	}
	if b == tagDecimal {
		r.advance()
		raw, err := r.readExact(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
	}
	n, err := r.readSignedInt()
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}
