package typedstream

import "fmt"

// readObjectValue resolves one "object" type-list item: a START marker
// delegates to the class reader, interning any freshly-declared hierarchy
// into the Objects Table and returning its leaf class; anything else
// (including a back-reference surfaced by the class reader) resolves
// directly to an existing Objects Table row. ok is false when there was
// no object here at all (an EMPTY marker).
func (r *reader) readObjectValue() (Archivable, bool, error) {
	b, err := r.current()
	if err != nil {
		return Archivable{}, false, err
	}

	switch b {
	case tagStart:
		cr, err := r.readClass()
		if err != nil {
			return Archivable{}, false, err
		}
		if cr.isRef {
			return r.lookupObject(cr.refIndex)
		}
		for _, c := range cr.hierarchy {
			r.objects = append(r.objects, Archivable{Kind: ArchivableClass, Class: c})
		}
		if len(cr.hierarchy) == 0 {
			return Archivable{}, false, nil
		}
		return Archivable{Kind: ArchivableClass, Class: cr.hierarchy[0]}, true, nil

	case tagEmpty:
		r.advance()
		return Archivable{}, false, nil

	default:
		p, err := r.current()
		if err != nil {
			return Archivable{}, false, err
		}
		r.advance()
		if p < ReferenceTag {
			return Archivable{}, false, newError(ErrInvalidPointer, r.pos-1, fmt.Sprintf("0x%02x", p))
		}
		return r.lookupObject(int(p - ReferenceTag))
	}
}

func (r *reader) lookupObject(idx int) (Archivable, bool, error) {
	if idx < 0 || idx >= len(r.objects) {
		return Archivable{}, false, newError(ErrInvalidPointer, r.pos,
			fmt.Sprintf("objects table index %d out of range (size %d)", idx, len(r.objects)))
	}
	return r.objects[idx], true, nil
}

// readTypes drives one record: given a type list, it reads each field in
// order, manages the single open placeholder slot across this and
// subsequent top-level calls, and returns the Archivable this record
// produced, if any.
func (r *reader) readTypes(tl TypeList) (Archivable, bool, error) {
	var values []Object
	isObject := false

	for _, t := range tl {
		switch t.Kind {
		case TypeUTF8String:
			n, err := r.readUnsignedInt()
			if err != nil {
				return Archivable{}, false, err
			}
			s, err := r.readUTF8(int(n))
			if err != nil {
				return Archivable{}, false, err
			}
			values = append(values, stringObject(s))

		case TypeEmbeddedData:
			b, err := r.current()
			if err != nil {
				return Archivable{}, false, err
			}
			if b != tagStart {
				return Archivable{}, false, newError(ErrInvalidHeader, r.pos, "embedded_data without START marker")
			}
			r.advance()
			inner, _, ok, err := r.getType(true)
			if err != nil {
				return Archivable{}, false, err
			}
			if !ok {
				if r.strict {
					return Archivable{}, false, newError(ErrInvalidHeader, r.pos, "embedded_data has no inner type encoding")
				}
				break
			}
			result, hasResult, err := r.readTypes(inner)
			if err != nil {
				return Archivable{}, false, err
			}
			if hasResult {
				return result, true, nil
			}

		case TypeObject:
			isObject = true
			idx := len(r.objects)
			r.objects = append(r.objects, Archivable{Kind: ArchivablePlaceholder})
			r.placeholderIdx = idx

			result, hasResult, err := r.readObjectValue()
			if err != nil {
				return Archivable{}, false, err
			}
			if hasResult {
				switch result.Kind {
				case ArchivableObject:
					if len(result.Values) > 0 {
						r.objects = r.objects[:idx]
						r.placeholderIdx = -1
						return result, true, nil
					}
					values = append(values, classRefObject(result.Class))
				case ArchivableClass:
					values = append(values, classRefObject(result.Class))
				case ArchivableData:
					values = append(values, result.Values...)
				default:
					// none / placeholder / type: no-op
				}
			}

		case TypeSignedInt:
			n, err := r.readSignedInt()
			if err != nil {
				return Archivable{}, false, err
			}
			values = append(values, signedIntObject(n))

		case TypeUnsignedInt:
			n, err := r.readUnsignedInt()
			if err != nil {
				return Archivable{}, false, err
			}
			values = append(values, unsignedIntObject(n))

		case TypeFloat:
			f, err := r.readFloat32()
			if err != nil {
				return Archivable{}, false, err
			}
			values = append(values, floatObject(f))

		case TypeDouble:
			d, err := r.readFloat64()
			if err != nil {
				return Archivable{}, false, err
			}
			values = append(values, doubleObject(d))

		case TypeUnknown:
			values = append(values, byteObject(t.Unknown))

		case TypeStringLiteral:
			values = append(values, stringObject(t.Literal))

		case TypeArray:
			raw, err := r.readExact(t.ArrayLen)
			if err != nil {
				return Archivable{}, false, err
			}
			cp := make([]byte, len(raw))
			copy(cp, raw)
			values = append(values, byteArrayObject(cp))
		}
	}

	return r.resolvePlaceholder(values, isObject)
}

// resolvePlaceholder applies the post-loop placeholder rules of spec
// §4.5. The placeholder tracked here may have been reserved during this
// call, or carried over still-open from an earlier top-level record
// filling in the same object's trailing fields.
func (r *reader) resolvePlaceholder(values []Object, isObject bool) (Archivable, bool, error) {
	idx := r.placeholderIdx

	if idx != -1 && len(values) > 0 {
		last := values[len(values)-1]

		if last.Kind == KindClassRef {
			r.objects[idx] = Archivable{Kind: ArchivableObject, Class: last.Class}
			return Archivable{}, false, nil
		}

		if idx+1 < len(r.objects) && r.objects[idx+1].Kind == ArchivableClass {
			obj := Archivable{Kind: ArchivableObject, Class: r.objects[idx+1].Class, Values: values}
			r.objects[idx] = obj
			r.placeholderIdx = -1
			return obj, true, nil
		}

		if r.objects[idx].Kind == ArchivableObject {
			prior := r.objects[idx]
			prior.Values = append(prior.Values, values...)
			r.objects[idx] = prior
			r.placeholderIdx = -1
			return prior, true, nil
		}

		data := Archivable{Kind: ArchivableData, Values: values}
		r.objects[idx] = data
		r.placeholderIdx = -1
		return data, true, nil
	}

	if idx == -1 && len(values) > 0 && !isObject {
		return Archivable{Kind: ArchivableData, Values: values}, true, nil
	}

	return Archivable{}, false, nil
}
