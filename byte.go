package typedstream

import (
	"fmt"
	"unicode/utf8"
)

// reader holds the mutable state for a single decode operation: the
// buffer, cursor, and the two interning tables. It is created fresh per
// call to Decoder.Decode and discarded on return.
type reader struct {
	data []byte
	pos  int

	types   []TypeList   // Types Table, indexed by reference
	objects []Archivable // Objects Table, indexed by reference

	// embeddedSeen marks Types Table rows that have already been recorded
	// into the Objects Table via an embedded context, so embedded_data
	// types are interned exactly once per invariant 5.
	embeddedSeen map[int]bool

	// placeholderIdx is the single currently-open placeholder slot in the
	// Objects Table, or -1 if none is open. Only one is ever active at a
	// time (invariant 3).
	placeholderIdx int

	strict bool
}

func newReader(data []byte, strict bool) *reader {
	return &reader{
		data:           data,
		embeddedSeen:   make(map[int]bool),
		placeholderIdx: -1,
		strict:         strict,
	}
}

// --- Low-level read primitives ---

// current peeks at the byte under the cursor without advancing.
func (r *reader) current() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, newError(ErrOutOfBounds, r.pos, boundsDetail(r.pos, len(r.data)))
	}
	return r.data[r.pos], nil
}

// next peeks one byte past the cursor without advancing.
func (r *reader) next() (byte, error) {
	if r.pos+1 >= len(r.data) {
		return 0, newError(ErrOutOfBounds, r.pos+1, boundsDetail(r.pos+1, len(r.data)))
	}
	return r.data[r.pos+1], nil
}

// at peeks at an arbitrary absolute index without moving the cursor.
func (r *reader) at(index int) (byte, error) {
	if index < 0 || index >= len(r.data) {
		return 0, newError(ErrOutOfBounds, index, boundsDetail(index, len(r.data)))
	}
	return r.data[index], nil
}

// readExact advances the cursor past n bytes and returns them. Guarded
// with a recover in case of an arithmetic slip past our own bounds check
// (e.g. an int overflow computing pos+n on a corrupt, attacker-controlled
// length) — the bounds check above should always catch this first, but a
// parser built over untrusted byte offsets earns its defensive recover.
func (r *reader) readExact(n int) (b []byte, err error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, newError(ErrOutOfBounds, r.pos, boundsDetail(r.pos+n, len(r.data)))
	}
	defer func() {
		if rec := recover(); rec != nil {
			b, err = nil, newError(ErrSliceError, r.pos, "recovered panic slicing buffer")
		}
	}()
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// readUTF8 reads n bytes and validates them as UTF-8 text.
func (r *reader) readUTF8(n int) (string, error) {
	b, err := r.readExact(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newError(ErrStringParse, r.pos-n, "invalid UTF-8 sequence")
	}
	return string(b), nil
}

// advance consumes the current byte without returning it.
func (r *reader) advance() {
	r.pos++
}

func boundsDetail(requested, length int) string {
	return fmt.Sprintf("requested=%d buffer_length=%d", requested, length)
}
