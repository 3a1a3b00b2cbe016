package typedstream

import (
	"fmt"
	"strconv"
)

// getType resolves the next type list in the stream: a fresh START-opened
// encoding, an END marker (no type, cursor left in place for the caller),
// or a back-reference to an already-interned Types Table row. When
// embedded is true and this is the row's first visit through an embedded
// context, the row is also recorded into the Objects Table once
// (invariant 5).
//
// Returns the resolved type list, its Types Table index, and ok=false
// when the stream had no type here (END marker).
func (r *reader) getType(embedded bool) (TypeList, int, bool, error) {
	b, err := r.current()
	if err != nil {
		return nil, 0, false, err
	}

	switch b {
	case tagStart:
		r.advance()
		tl, err := r.readTypeEncoding()
		if err != nil {
			return nil, 0, false, err
		}
		idx := len(r.types)
		r.types = append(r.types, tl)
		r.markEmbedded(embedded, idx, tl)
		return tl, idx, true, nil

	case tagEnd:
		return nil, 0, false, nil

	default:
		// Collapse a run of repeated bytes before reading the pointer.
		for {
			c, err := r.current()
			if err != nil {
				return nil, 0, false, err
			}
			nb, nerr := r.next()
			if nerr != nil || c != nb {
				break
			}
			r.advance()
		}
		p, err := r.current()
		if err != nil {
			return nil, 0, false, err
		}
		r.advance()
		if p < ReferenceTag {
			return nil, 0, false, newError(ErrInvalidPointer, r.pos-1, fmt.Sprintf("0x%02x", p))
		}
		idx := int(p - ReferenceTag)
		if idx < 0 || idx >= len(r.types) {
			return nil, 0, false, newError(ErrInvalidPointer, r.pos-1,
				fmt.Sprintf("types table index %d out of range (size %d)", idx, len(r.types)))
		}
		tl := r.types[idx]
		r.markEmbedded(embedded, idx, tl)
		return tl, idx, true, nil
	}
}

func (r *reader) markEmbedded(embedded bool, idx int, tl TypeList) {
	if embedded && !r.embeddedSeen[idx] {
		r.objects = append(r.objects, Archivable{Kind: ArchivableType, TypeList: tl})
		r.embeddedSeen[idx] = true
	}
}

// readTypeEncoding reads a length-prefixed byte string and decodes it
// either as an "[N]" array form or as a sequence of single-byte type
// symbols via the type-byte table.
func (r *reader) readTypeEncoding() (TypeList, error) {
	length, err := r.readUnsignedInt()
	if err != nil {
		return nil, err
	}
	raw, err := r.readExact(int(length))
	if err != nil {
		return nil, err
	}

	if len(raw) > 0 && raw[0] == '[' {
		n, ok := parseArrayLen(raw[1:])
		if !ok {
			return nil, newError(ErrInvalidArray, r.pos-len(raw), fmt.Sprintf("%q", raw))
		}
		return TypeList{{Kind: TypeArray, ArrayLen: n}}, nil
	}

	tl := make(TypeList, 0, len(raw))
	for _, b := range raw {
		tl = append(tl, typeFromByte(b))
	}
	return tl, nil
}

// parseArrayLen parses the decimal digits following "[" in an "[N]" array
// type encoding. Fails when no digits are present or N is not positive.
func parseArrayLen(rest []byte) (int, bool) {
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(rest[:i]))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
