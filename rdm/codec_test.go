package rdm

import "testing"

func TestFormatThenParseRoundTrips(t *testing.T) {
	h := Header{
		DestUID:      0x0102030405,
		SourceUID:    0x0605040302,
		TN:           7,
		PortID:       1,
		MessageCount: 0,
		SubDevice:    0,
		CC:           GetCommand,
		PID:          PIDDeviceInfo,
	}
	packet, err := FormatHeader(h, []byte{0xAA, 0xBB, 0xCC})
	if err != nil {
		t.Fatalf("FormatHeader: %v", err)
	}

	got, pdl, valid, ok := ParseHeader(packet)
	if !ok {
		t.Fatal("ParseHeader: ok = false")
	}
	if !valid {
		t.Fatal("ParseHeader: checksum invalid on freshly-formatted packet")
	}
	if got.DestUID != h.DestUID || got.SourceUID != h.SourceUID {
		t.Errorf("UIDs did not round-trip: got dest=%s src=%s", got.DestUID, got.SourceUID)
	}
	if got.CC != GetCommand || got.PID != PIDDeviceInfo {
		t.Errorf("cc/pid did not round-trip: cc=%#x pid=%#x", got.CC, got.PID)
	}
	if string(pdl) != string([]byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("pdl = %v, want [aa bb cc]", pdl)
	}
}

func TestParseHeaderRejectsBadChecksum(t *testing.T) {
	h := Header{DestUID: 1, SourceUID: 2, CC: GetCommand, PID: PIDDeviceInfo}
	packet, err := FormatHeader(h, nil)
	if err != nil {
		t.Fatalf("FormatHeader: %v", err)
	}
	packet[len(packet)-1] ^= 0xFF

	_, _, valid, ok := ParseHeader(packet)
	if !ok {
		t.Fatal("ParseHeader: ok = false for a structurally valid packet")
	}
	if valid {
		t.Fatal("ParseHeader: checksum reported valid after corruption")
	}
}

func TestParseHeaderRejectsWrongStartCode(t *testing.T) {
	data := make([]byte, HeaderSize+ChecksumSize)
	data[0] = 0x00 // DMX start code, not RDM
	if _, _, _, ok := ParseHeader(data); ok {
		t.Fatal("ParseHeader accepted a non-RDM start code")
	}
}

func TestFormatHeaderRejectsOversizePDL(t *testing.T) {
	h := Header{CC: SetCommand, PID: PIDDeviceLabel}
	if _, err := FormatHeader(h, make([]byte, 232)); err != ErrPDLTooLong {
		t.Fatalf("FormatHeader(232-byte pdl) = %v, want ErrPDLTooLong", err)
	}
}

func TestParseHeaderZeroPDL(t *testing.T) {
	h := Header{CC: GetCommand, PID: PIDDeviceInfo}
	packet, err := FormatHeader(h, nil)
	if err != nil {
		t.Fatalf("FormatHeader: %v", err)
	}
	got, pdl, valid, ok := ParseHeader(packet)
	if !ok || !valid {
		t.Fatalf("ParseHeader failed on zero-PDL packet: ok=%v valid=%v", ok, valid)
	}
	if got.MessageLen != HeaderSize || len(pdl) != 0 {
		t.Errorf("message_len=%d, len(pdl)=%d, want %d, 0", got.MessageLen, len(pdl), HeaderSize)
	}
}
