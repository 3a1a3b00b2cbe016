package typedstream

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the decoder.
var (
	// ErrOutOfBounds is returned when cursor arithmetic would read past the
	// end of the buffer.
	ErrOutOfBounds = errors.New("typedstream: out of bounds")

	// ErrInvalidHeader is returned when the version, signature, or system
	// version in the stream header does not match what this decoder
	// supports (version 4, "streamtyped", system version 1000).
	ErrInvalidHeader = errors.New("typedstream: invalid header")

	// ErrStringParse is returned when a length-prefixed byte slice is not
	// valid UTF-8.
	ErrStringParse = errors.New("typedstream: string parse failure")

	// ErrInvalidArray is returned when a "[N]" type-encoding form has no
	// digits, or N is not positive.
	ErrInvalidArray = errors.New("typedstream: invalid array type encoding")

	// ErrInvalidPointer is returned when a back-reference byte underflows
	// ReferenceTag, or addresses a table row that does not exist.
	ErrInvalidPointer = errors.New("typedstream: invalid back-reference pointer")

	// ErrSliceError wraps an unexpected failure from a lower-level byte
	// slice operation that our own bounds checks did not anticipate.
	ErrSliceError = errors.New("typedstream: slice operation failed")
)

// DecodeError wraps a sentinel error with positional context about where
// in the binary stream the error occurred.
type DecodeError struct {
	// Err is the underlying sentinel error.
	Err error
	// Pos is the byte offset in the input where the error was detected.
	Pos int
	// Detail provides additional context about the error.
	Detail string
}

// Error returns a human-readable description of the decode error.
func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at pos %d: %s", e.Err.Error(), e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at pos %d", e.Err.Error(), e.Pos)
}

// Unwrap returns the underlying sentinel error, enabling errors.Is() matching.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// newError creates a DecodeError with position and optional detail.
func newError(err error, pos int, detail string) *DecodeError {
	return &DecodeError{Err: err, Pos: pos, Detail: detail}
}
