package attrcache

import (
	"testing"

	"github.com/jsloan/typedstream"
)

func sampleRecords() []typedstream.Archivable {
	return []typedstream.Archivable{
		{
			Kind:  typedstream.ArchivableObject,
			Class: typedstream.Class{Name: "NSString", Version: 1},
		},
	}
}

func TestFlattenedSerializerRoundTrip(t *testing.T) {
	records := []typedstream.Archivable{
		{
			Kind:  typedstream.ArchivableObject,
			Class: typedstream.Class{Name: "NSString", Version: 1},
			Values: []typedstream.Object{
				{Kind: typedstream.KindString, Text: "Hello"},
				{Kind: typedstream.KindSignedInt, SignedInt: -7},
				{Kind: typedstream.KindUnsignedInt, UnsignedInt: 9},
				{Kind: typedstream.KindFloat, Float32: 1.5},
				{Kind: typedstream.KindDouble, Float64: 2.25},
				{Kind: typedstream.KindByte, Byte: 0xAB},
				{Kind: typedstream.KindByteArray, Bytes: []byte{1, 2, 3}},
				{Kind: typedstream.KindClassRef, Class: typedstream.Class{Name: "NSNumber", Version: 0}},
			},
		},
		{Kind: typedstream.ArchivableData, Values: []typedstream.Object{{Kind: typedstream.KindSignedInt, SignedInt: 1}}},
		{Kind: typedstream.ArchivableClass, Class: typedstream.Class{Name: "NSDictionary", Version: 0}},
		{Kind: typedstream.ArchivablePlaceholder},
	}

	s := &FlattenedSerializer{}
	raw, err := s.Serialize(records)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := s.Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	if got[0].Class.Name != "NSString" || len(got[0].Values) != 8 {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[0].Values[0].Text != "Hello" || got[0].Values[1].SignedInt != -7 ||
		got[0].Values[7].Class.Name != "NSNumber" {
		t.Fatalf("unexpected first record values: %+v", got[0].Values)
	}
	if got[1].Kind != typedstream.ArchivableData || got[1].Values[0].SignedInt != 1 {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
	if got[2].Kind != typedstream.ArchivableClass || got[2].Class.Name != "NSDictionary" {
		t.Fatalf("unexpected third record: %+v", got[2])
	}
	if got[3].Kind != typedstream.ArchivablePlaceholder {
		t.Fatalf("unexpected fourth record: %+v", got[3])
	}
}

func TestYAMLCodecEncodeDecodeSmallValueUncompressed(t *testing.T) {
	codec := NewYAMLCodec()
	records := sampleRecords()
	data, flags, err := codec.Encode(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if SerializerType(flags) != FlagYAML {
		t.Fatalf("expected yaml serializer flag, got 0x%08x", flags)
	}
	got, err := codec.Decode(data, flags)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || got[0].Class.Name != "NSString" {
		t.Fatalf("unexpected decode result: %+v", got)
	}
}

func TestYAMLSerializerRoundTrip(t *testing.T) {
	s := &YAMLSerializer{}
	raw, err := s.Serialize(sampleRecords())
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := s.Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got) != 1 || got[0].Class.Name != "NSString" {
		t.Fatalf("unexpected round-trip result: %+v", got)
	}
}

func TestFastlzCompressorRoundTrip(t *testing.T) {
	c := &FastlzCompressor{}
	data := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")
	compressed, err := c.Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("round-trip mismatch: got %q", got)
	}
}

func TestZlibCompressorRoundTrip(t *testing.T) {
	c := &ZlibCompressor{}
	data := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")
	compressed, err := c.Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("round-trip mismatch: got %q", got)
	}
}

func TestZlibCodecEncodeDecodeLargeValueCompressed(t *testing.T) {
	codec := NewZlibCodec()
	var records []typedstream.Archivable
	for i := 0; i < 50; i++ {
		records = append(records, typedstream.Archivable{
			Kind:  typedstream.ArchivableObject,
			Class: typedstream.Class{Name: "NSMutableString", Version: 1},
		})
	}
	data, flags, err := codec.Encode(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !IsCompressed(flags) || flags&FlagZlib == 0 {
		t.Fatalf("expected zlib-compressed flags, got 0x%08x", flags)
	}
	got, err := codec.Decode(data, flags)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("expected 50 records, got %d", len(got))
	}
}

func TestCodecEncodeDecodeSmallValueUncompressed(t *testing.T) {
	codec := NewCodec()
	records := sampleRecords()
	data, flags, err := codec.Encode(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if IsCompressed(flags) {
		t.Fatal("expected a small value to stay uncompressed")
	}
	got, err := codec.Decode(data, flags)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || got[0].Class.Name != "NSString" {
		t.Fatalf("unexpected decode result: %+v", got)
	}
}

func TestCodecEncodeDecodeLargeValueCompressed(t *testing.T) {
	codec := NewCodec()
	var records []typedstream.Archivable
	for i := 0; i < 50; i++ {
		records = append(records, typedstream.Archivable{
			Kind:  typedstream.ArchivableObject,
			Class: typedstream.Class{Name: "NSMutableString", Version: 1},
		})
	}
	data, flags, err := codec.Encode(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !IsCompressed(flags) {
		t.Fatal("expected a large value to be compressed")
	}
	got, err := codec.Decode(data, flags)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("expected 50 records, got %d", len(got))
	}
}

func TestCodecDecodeEmptyValue(t *testing.T) {
	codec := NewCodec()
	got, err := codec.Decode(nil, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result for empty value, got %+v", got)
	}
}

func TestExplainFlags(t *testing.T) {
	s := ExplainFlags(FlagYAML | FlagCompressed | FlagFastlz)
	if s == "" {
		t.Fatal("expected a non-empty explanation")
	}
}
