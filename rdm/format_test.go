package rdm

import "testing"

func TestEncodeDecodeDeviceInfoFormat(t *testing.T) {
	const format = "x01x00wwdwbbwwb$"
	pdl, err := EncodePDL(format,
		uint16(0x0102), // model ID
		uint16(0x0700), // category
		uint32(1),      // software version
		uint16(512),    // footprint
		byte(1),        // personality_current
		byte(4),        // personality_count
		uint16(1),      // start_address
		uint16(0),      // sub_device_count
		byte(0),        // sensor_count
	)
	if err != nil {
		t.Fatalf("EncodePDL: %v", err)
	}
	if len(pdl) != 19 {
		t.Fatalf("len(pdl) = %d, want 19 (matching spec.md's DEVICE_INFO layout)", len(pdl))
	}
	if pdl[0] != 0x01 || pdl[1] != 0x00 {
		t.Errorf("leading literal bytes = %#x %#x, want 01 00", pdl[0], pdl[1])
	}

	values, err := DecodePDL(format, pdl)
	if err != nil {
		t.Fatalf("DecodePDL: %v", err)
	}
	if len(values) != 9 {
		t.Fatalf("DecodePDL returned %d values, want 9", len(values))
	}
	if values[0].(uint16) != 0x0102 {
		t.Errorf("model_id = %#x, want 0x0102", values[0])
	}
	if values[3].(uint16) != 512 {
		t.Errorf("footprint = %v, want 512", values[3])
	}
}

func TestEncodeDecodeASCIIFormat(t *testing.T) {
	pdl, err := EncodePDL("a", "Hello")
	if err != nil {
		t.Fatalf("EncodePDL: %v", err)
	}
	if string(pdl) != "Hello" {
		t.Errorf("pdl = %q, want %q", pdl, "Hello")
	}
	values, err := DecodePDL("a", pdl)
	if err != nil {
		t.Fatalf("DecodePDL: %v", err)
	}
	if values[0].(string) != "Hello" {
		t.Errorf("decoded = %q, want %q", values[0], "Hello")
	}
}

func TestEncodeASCIITruncatesAt32(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = 'x'
	}
	pdl, err := EncodePDL("a", long)
	if err != nil {
		t.Fatalf("EncodePDL: %v", err)
	}
	if len(pdl) != 32 {
		t.Errorf("len(pdl) = %d, want 32", len(pdl))
	}
}

func TestDecodePDLRejectsLiteralMismatch(t *testing.T) {
	if _, err := DecodePDL("x01", []byte{0x02}); err != ErrFormat {
		t.Fatalf("DecodePDL literal mismatch = %v, want ErrFormat", err)
	}
}

func TestDecodePDLShortBuffer(t *testing.T) {
	if _, err := DecodePDL("w", []byte{0x01}); err != ErrShortBuffer {
		t.Fatalf("DecodePDL short buffer = %v, want ErrShortBuffer", err)
	}
}

func TestUIDFieldRoundTrip(t *testing.T) {
	uid := UID(0x1234_5678_9ABC)
	pdl, err := EncodePDL("u", uid)
	if err != nil {
		t.Fatalf("EncodePDL: %v", err)
	}
	values, err := DecodePDL("u", pdl)
	if err != nil {
		t.Fatalf("DecodePDL: %v", err)
	}
	if values[0].(UID) != uid {
		t.Errorf("decoded UID = %s, want %s", values[0], uid)
	}
}
