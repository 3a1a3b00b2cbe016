package attrcache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/jsloan/typedstream"
)

// Serializer handles serialization and deserialization of decoded
// typedstream results for storage as a cache value.
type Serializer interface {
	Serialize(records []typedstream.Archivable) ([]byte, error)
	Deserialize(data []byte) ([]typedstream.Archivable, error)
}

// flattened value-kind tags, written ahead of each Object's payload.
// Distinct from typedstream.Kind's own numbering so the wire format
// doesn't break if that internal enum is ever reordered.
const (
	valString byte = iota
	valSignedInt
	valUnsignedInt
	valFloat
	valDouble
	valByte
	valByteArray
	valClassRef
)

// record-kind tags, written ahead of each Archivable. Only the four cases
// an iMessage reader cares about — object, data, class, placeholder — are
// representable; Decode never returns the fifth (embedded type list) kind
// to callers, so FlattenedSerializer has no framing for it.
const (
	recObject byte = iota
	recData
	recClass
	recPlaceholder
)

// FlattenedSerializer encodes decoded records with a small hand-rolled
// binary framing purpose-built for the four Archivable shapes a cache
// reader needs (object/data/class/placeholder), instead of a general
// reflection-based encoding of the whole struct tree.
type FlattenedSerializer struct{}

// Serialize writes a length-prefixed record count followed by each
// record's kind tag and fields.
func (s *FlattenedSerializer) Serialize(records []typedstream.Archivable) ([]byte, error) {
	var buf bytes.Buffer
	writeUvarint(&buf, uint64(len(records)))
	for _, rec := range records {
		if err := writeRecord(&buf, rec); err != nil {
			return nil, fmt.Errorf("attrcache: flattened serialize: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Deserialize reverses [FlattenedSerializer.Serialize].
func (s *FlattenedSerializer) Deserialize(data []byte) ([]typedstream.Archivable, error) {
	r := bufio.NewReader(bytes.NewReader(data))
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("attrcache: flattened deserialize: record count: %w", err)
	}
	records := make([]typedstream.Archivable, 0, n)
	for i := uint64(0); i < n; i++ {
		rec, err := readRecord(r)
		if err != nil {
			return nil, fmt.Errorf("attrcache: flattened deserialize: record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeRecord(buf *bytes.Buffer, rec typedstream.Archivable) error {
	switch rec.Kind {
	case typedstream.ArchivableObject:
		buf.WriteByte(recObject)
		writeClass(buf, rec.Class)
		writeValues(buf, rec.Values)
	case typedstream.ArchivableData:
		buf.WriteByte(recData)
		writeValues(buf, rec.Values)
	case typedstream.ArchivableClass:
		buf.WriteByte(recClass)
		writeClass(buf, rec.Class)
	case typedstream.ArchivablePlaceholder:
		buf.WriteByte(recPlaceholder)
	default:
		return fmt.Errorf("unsupported archivable kind %d for a cache value", rec.Kind)
	}
	return nil
}

func readRecord(r *bufio.Reader) (typedstream.Archivable, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return typedstream.Archivable{}, err
	}
	switch tag {
	case recObject:
		cls, err := readClass(r)
		if err != nil {
			return typedstream.Archivable{}, err
		}
		vals, err := readValues(r)
		if err != nil {
			return typedstream.Archivable{}, err
		}
		return typedstream.Archivable{Kind: typedstream.ArchivableObject, Class: cls, Values: vals}, nil
	case recData:
		vals, err := readValues(r)
		if err != nil {
			return typedstream.Archivable{}, err
		}
		return typedstream.Archivable{Kind: typedstream.ArchivableData, Values: vals}, nil
	case recClass:
		cls, err := readClass(r)
		if err != nil {
			return typedstream.Archivable{}, err
		}
		return typedstream.Archivable{Kind: typedstream.ArchivableClass, Class: cls}, nil
	case recPlaceholder:
		return typedstream.Archivable{Kind: typedstream.ArchivablePlaceholder}, nil
	default:
		return typedstream.Archivable{}, fmt.Errorf("unknown record tag 0x%02x", tag)
	}
}

func writeClass(buf *bytes.Buffer, c typedstream.Class) {
	writeString(buf, c.Name)
	writeUvarint(buf, c.Version)
}

func readClass(r *bufio.Reader) (typedstream.Class, error) {
	name, err := readString(r)
	if err != nil {
		return typedstream.Class{}, err
	}
	version, err := binary.ReadUvarint(r)
	if err != nil {
		return typedstream.Class{}, err
	}
	return typedstream.Class{Name: name, Version: version}, nil
}

func writeValues(buf *bytes.Buffer, values []typedstream.Object) {
	writeUvarint(buf, uint64(len(values)))
	for _, v := range values {
		writeValue(buf, v)
	}
}

func readValues(r *bufio.Reader) ([]typedstream.Object, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	values := make([]typedstream.Object, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := readValue(r)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func writeValue(buf *bytes.Buffer, v typedstream.Object) {
	switch v.Kind {
	case typedstream.KindString:
		buf.WriteByte(valString)
		writeString(buf, v.Text)
	case typedstream.KindSignedInt:
		buf.WriteByte(valSignedInt)
		writeVarint(buf, v.SignedInt)
	case typedstream.KindUnsignedInt:
		buf.WriteByte(valUnsignedInt)
		writeUvarint(buf, v.UnsignedInt)
	case typedstream.KindFloat:
		buf.WriteByte(valFloat)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.Float32))
		buf.Write(tmp[:])
	case typedstream.KindDouble:
		buf.WriteByte(valDouble)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.Float64))
		buf.Write(tmp[:])
	case typedstream.KindByte:
		buf.WriteByte(valByte)
		buf.WriteByte(v.Byte)
	case typedstream.KindByteArray:
		buf.WriteByte(valByteArray)
		writeUvarint(buf, uint64(len(v.Bytes)))
		buf.Write(v.Bytes)
	case typedstream.KindClassRef:
		buf.WriteByte(valClassRef)
		writeClass(buf, v.Class)
	}
}

func readValue(r *bufio.Reader) (typedstream.Object, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return typedstream.Object{}, err
	}
	switch tag {
	case valString:
		s, err := readString(r)
		return typedstream.Object{Kind: typedstream.KindString, Text: s}, err
	case valSignedInt:
		n, err := binary.ReadVarint(r)
		return typedstream.Object{Kind: typedstream.KindSignedInt, SignedInt: n}, err
	case valUnsignedInt:
		n, err := binary.ReadUvarint(r)
		return typedstream.Object{Kind: typedstream.KindUnsignedInt, UnsignedInt: n}, err
	case valFloat:
		var tmp [4]byte
		if _, err := io.ReadFull(r, tmp[:]); err != nil {
			return typedstream.Object{}, err
		}
		return typedstream.Object{Kind: typedstream.KindFloat, Float32: math.Float32frombits(binary.LittleEndian.Uint32(tmp[:]))}, nil
	case valDouble:
		var tmp [8]byte
		if _, err := io.ReadFull(r, tmp[:]); err != nil {
			return typedstream.Object{}, err
		}
		return typedstream.Object{Kind: typedstream.KindDouble, Float64: math.Float64frombits(binary.LittleEndian.Uint64(tmp[:]))}, nil
	case valByte:
		b, err := r.ReadByte()
		return typedstream.Object{Kind: typedstream.KindByte, Byte: b}, err
	case valByteArray:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return typedstream.Object{}, err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return typedstream.Object{}, err
		}
		return typedstream.Object{Kind: typedstream.KindByteArray, Bytes: b}, nil
	case valClassRef:
		cls, err := readClass(r)
		return typedstream.Object{Kind: typedstream.KindClassRef, Class: cls}, err
	default:
		return typedstream.Object{}, fmt.Errorf("unknown value tag 0x%02x", tag)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeUvarint(buf *bytes.Buffer, n uint64) {
	var tmp [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(tmp[:], n)
	buf.Write(tmp[:l])
}

func writeVarint(buf *bytes.Buffer, n int64) {
	var tmp [binary.MaxVarintLen64]byte
	l := binary.PutVarint(tmp[:], n)
	buf.Write(tmp[:l])
}

// YAMLSerializer serializes decoded records with gopkg.in/yaml.v3, the
// same library the ambient config loader in this module uses. An
// alternative to [FlattenedSerializer] for callers who want a
// human-readable cache value over the compact default.
type YAMLSerializer struct{}

// Serialize encodes records as YAML.
func (s *YAMLSerializer) Serialize(records []typedstream.Archivable) ([]byte, error) {
	out, err := yaml.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("attrcache: yaml serialize: %w", err)
	}
	return out, nil
}

// Deserialize decodes a YAML cache value back into decoded records.
func (s *YAMLSerializer) Deserialize(data []byte) ([]typedstream.Archivable, error) {
	var records []typedstream.Archivable
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("attrcache: yaml deserialize: %w", err)
	}
	return records, nil
}
