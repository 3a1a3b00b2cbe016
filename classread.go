package typedstream

import "fmt"

// classResult is the outcome of reading one class-chain node: either a
// back-reference index into the Objects Table, or a freshly built
// hierarchy ordered leaf class first, ancestors following.
type classResult struct {
	isRef     bool
	refIndex  int
	hierarchy []Class
}

// readClass walks one node of a class inheritance chain per spec §4.4: a
// START marker opens a new class declaration (or, if the following
// integer already looks like a back-reference, resolves one directly); an
// EMPTY marker terminates the chain; anything else is itself a
// back-reference pointer.
func (r *reader) readClass() (classResult, error) {
	b, err := r.current()
	if err != nil {
		return classResult{}, err
	}

	switch b {
	case tagStart:
		for {
			c, err := r.current()
			if err != nil {
				return classResult{}, err
			}
			if c != tagStart {
				break
			}
			r.advance()
		}

		n, err := r.readUnsignedInt()
		if err != nil {
			return classResult{}, err
		}
		if n >= uint64(ReferenceTag) {
			return classResult{isRef: true, refIndex: int(n - uint64(ReferenceTag))}, nil
		}

		name, err := r.readUTF8(int(n))
		if err != nil {
			return classResult{}, err
		}
		version, err := r.readUnsignedInt()
		if err != nil {
			return classResult{}, err
		}
		r.types = append(r.types, TypeList{{Kind: TypeStringLiteral, Literal: name}})
		cls := Class{Name: name, Version: version}

		parent, err := r.readClass()
		if err != nil {
			return classResult{}, err
		}
		if parent.isRef {
			// The ancestor is already interned; nothing more to append.
			return classResult{hierarchy: []Class{cls}}, nil
		}
		hierarchy := append([]Class{cls}, parent.hierarchy...)
		return classResult{hierarchy: hierarchy}, nil

	case tagEmpty:
		r.advance()
		return classResult{}, nil

	default:
		p, err := r.current()
		if err != nil {
			return classResult{}, err
		}
		r.advance()
		if p < ReferenceTag {
			return classResult{}, newError(ErrInvalidPointer, r.pos-1, fmt.Sprintf("0x%02x", p))
		}
		return classResult{isRef: true, refIndex: int(p - ReferenceTag)}, nil
	}
}
