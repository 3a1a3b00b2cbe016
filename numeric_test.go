package typedstream

import "testing"

// TestReadSignedIntBoundaries covers spec scenario D: -1 encodes as the
// bare byte 0xFF, 300 requires an I_16 field, 70000 requires an I_32
// field.
func TestReadSignedIntBoundaries(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want int64
	}{
		{"bare -1", []byte{0xFF}, -1},
		{"I16 300", []byte{0x81, 0x2C, 0x01}, 300},
		{"I32 70000", []byte{0x82, 0x70, 0x11, 0x01, 0x00}, 70000},
		{"bare 42", []byte{0x2A}, 42},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newReader(c.data, false)
			got, err := r.readSignedInt()
			assertNoError(t, err)
			if got != c.want {
				t.Fatalf("expected %d, got %d", c.want, got)
			}
			if r.pos != len(c.data) {
				t.Fatalf("expected cursor to consume all %d bytes, stopped at %d", len(c.data), r.pos)
			}
		})
	}
}

func TestReadSignedIntRepeatedTagSkip(t *testing.T) {
	// A byte above ReferenceTag not immediately followed by END causes a
	// skip-and-recurse, then falls through to the bare-byte path.
	r := newReader([]byte{0x95, 0x07}, false)
	got, err := r.readSignedInt()
	assertNoError(t, err)
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestReadSignedIntAboveReferenceTagBeforeEnd(t *testing.T) {
	// When the byte after a >ReferenceTag byte is END, no skip happens;
	// the byte itself is read as a bare signed 8-bit value.
	r := newReader([]byte{0x95, tagEnd}, false)
	got, err := r.readSignedInt()
	assertNoError(t, err)
	const want int64 = -107 // 0x95 reinterpreted as int8
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestReadUnsignedIntBoundaries(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint64
	}{
		{"bare 42", []byte{0x2A}, 42},
		{"I16 300", []byte{0x81, 0x2C, 0x01}, 300},
		{"I32 70000", []byte{0x82, 0x70, 0x11, 0x01, 0x00}, 70000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newReader(c.data, false)
			got, err := r.readUnsignedInt()
			assertNoError(t, err)
			if got != c.want {
				t.Fatalf("expected %d, got %d", c.want, got)
			}
		})
	}
}

func TestReadFloat32Decimal(t *testing.T) {
	// 1.5f = 0x3FC00000 little-endian
	r := newReader([]byte{tagDecimal, 0x00, 0x00, 0xC0, 0x3F}, false)
	got, err := r.readFloat32()
	assertNoError(t, err)
	if got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
}

func TestReadFloat64Decimal(t *testing.T) {
	// 2.5 = 0x4004000000000000 little-endian
	r := newReader([]byte{tagDecimal, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0x40}, false)
	got, err := r.readFloat64()
	assertNoError(t, err)
	if got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

func TestReadFloat64FallsBackToInteger(t *testing.T) {
	// No DECIMAL tag: read as a signed integer and convert.
	r := newReader([]byte{0x07}, false)
	got, err := r.readFloat64()
	assertNoError(t, err)
	if got != 7.0 {
		t.Fatalf("expected 7.0, got %v", got)
	}
}
