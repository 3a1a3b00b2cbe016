package typedstream

// Tag bytes used throughout the typedstream grammar. Unlike a single
// per-value type-code byte, typedstream layers a handful of structural
// markers on top of a type-encoding string read separately.
const (
	tagI16     byte = 0x81 // little-endian 2-byte integer follows
	tagI32     byte = 0x82 // little-endian 4-byte integer follows
	tagDecimal byte = 0x83 // raw float/double follows
	tagStart   byte = 0x84 // object / class-chain / embedded-data opener
	tagEmpty   byte = 0x85 // empty / null marker
	tagEnd     byte = 0x86 // closing marker for a record

	// ReferenceTag is the boundary above which a byte is a back-reference.
	// A byte b >= ReferenceTag denotes index b - ReferenceTag into whichever
	// table the caller context selects (types vs objects).
	ReferenceTag byte = 0x92
)

// Kind identifies which variant of the Object sum type a value holds.
type Kind uint8

const (
	KindString Kind = iota
	KindSignedInt
	KindUnsignedInt
	KindFloat
	KindDouble
	KindByte
	KindByteArray
	KindClassRef
)

// Object is a decoded primitive value. Exactly one of its fields is
// meaningful, selected by Kind; use the matching constructor and the
// Kind switch rather than touching fields directly.
type Object struct {
	Kind        Kind
	Text        string
	SignedInt   int64
	UnsignedInt uint64
	Float32     float32
	Float64     float64
	Byte        byte
	Bytes       []byte
	Class       Class
}

func stringObject(s string) Object      { return Object{Kind: KindString, Text: s} }
func signedIntObject(n int64) Object    { return Object{Kind: KindSignedInt, SignedInt: n} }
func unsignedIntObject(n uint64) Object { return Object{Kind: KindUnsignedInt, UnsignedInt: n} }
func floatObject(f float32) Object      { return Object{Kind: KindFloat, Float32: f} }
func doubleObject(d float64) Object     { return Object{Kind: KindDouble, Float64: d} }
func byteObject(b byte) Object          { return Object{Kind: KindByte, Byte: b} }
func byteArrayObject(b []byte) Object   { return Object{Kind: KindByteArray, Bytes: b} }
func classRefObject(c Class) Object     { return Object{Kind: KindClassRef, Class: c} }

// Class is an immutable descriptor pairing an Objective-C class name with
// the archiver version the archive recorded for it.
type Class struct {
	Name    string
	Version uint64
}

// TypeKind identifies one symbol of a type-encoding string.
type TypeKind uint8

const (
	TypeUTF8String TypeKind = iota
	TypeEmbeddedData
	TypeObject
	TypeSignedInt
	TypeUnsignedInt
	TypeFloat
	TypeDouble
	TypeStringLiteral
	TypeArray
	TypeUnknown
)

// Type is one decoded symbol of a type-encoding string.
type Type struct {
	Kind     TypeKind
	Literal  string // meaningful when Kind == TypeStringLiteral
	ArrayLen int    // meaningful when Kind == TypeArray
	Unknown  byte   // meaningful when Kind == TypeUnknown
}

// TypeList is an ordered sequence of Types describing one record.
type TypeList []Type

// typeFromByte maps one raw type-encoding byte to its Type, per the
// typedstream type-byte table. Bytes with no known meaning decode to
// TypeUnknown rather than failing, matching the format's tolerance for
// unrecognized Objective-C type-encoding characters.
func typeFromByte(b byte) Type {
	switch b {
	case 0x40:
		return Type{Kind: TypeObject}
	case 0x2B:
		return Type{Kind: TypeUTF8String}
	case 0x2A:
		return Type{Kind: TypeEmbeddedData}
	case 0x66:
		return Type{Kind: TypeFloat}
	case 0x64:
		return Type{Kind: TypeDouble}
	case 0x63, 0x69, 0x6C, 0x71, 0x73:
		return Type{Kind: TypeSignedInt}
	case 0x43, 0x49, 0x4C, 0x51, 0x53:
		return Type{Kind: TypeUnsignedInt}
	default:
		return Type{Kind: TypeUnknown, Unknown: b}
	}
}

// ArchivableKind identifies which variant of the Archivable sum type a
// value holds.
type ArchivableKind uint8

const (
	// ArchivableObject is an instance with its ordered, anonymous
	// instance data.
	ArchivableObject ArchivableKind = iota
	// ArchivableData is a free-standing value list not attached to a class.
	ArchivableData
	// ArchivableClass is a bare class appearance.
	ArchivableClass
	// ArchivablePlaceholder is a reserved, temporarily-empty Objects
	// Table slot, later overwritten.
	ArchivablePlaceholder
	// ArchivableType is an embedded type list captured verbatim in the
	// Objects Table. Never emitted to callers of Decode.
	ArchivableType
)

// Archivable is one record the decoder reconstructs: an object instance,
// free data, a bare class marker, a table placeholder, or an embedded
// type list.
type Archivable struct {
	Kind     ArchivableKind
	Class    Class
	Values   []Object
	TypeList TypeList
}
