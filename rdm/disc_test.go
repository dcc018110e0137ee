package rdm

import "testing"

func TestDiscoveryResponseRoundTrip(t *testing.T) {
	uids := []UID{0, 1, 0x7FF0_12345678, MaxUID}
	for _, uid := range uids {
		resp := EncodeDiscoveryResponse(uid)
		if len(resp) != 24 {
			t.Fatalf("EncodeDiscoveryResponse(%s) len = %d, want 24", uid, len(resp))
		}
		for i := 0; i < PreambleMaxLen; i++ {
			if resp[i] != Preamble {
				t.Fatalf("byte %d = %#x, want preamble", i, resp[i])
			}
		}
		if resp[PreambleMaxLen] != Delimiter {
			t.Fatalf("byte %d = %#x, want delimiter", PreambleMaxLen, resp[PreambleMaxLen])
		}

		got, valid, ok := ParseDiscoveryResponse(resp)
		if !ok {
			t.Fatalf("ParseDiscoveryResponse(%s): ok = false", uid)
		}
		if !valid {
			t.Fatalf("ParseDiscoveryResponse(%s): checksum invalid", uid)
		}
		if got != uid {
			t.Errorf("ParseDiscoveryResponse(%s) = %s", uid, got)
		}
	}
}

func TestParseDiscoveryResponseShortPreamble(t *testing.T) {
	full := EncodeDiscoveryResponse(0x1234)
	// A responder need not send the maximal preamble; strip a few bytes.
	trimmed := full[3:]
	got, valid, ok := ParseDiscoveryResponse(trimmed)
	if !ok || !valid || got != 0x1234 {
		t.Fatalf("ParseDiscoveryResponse(trimmed) = %s, %v, %v", got, valid, ok)
	}
}

func TestParseDiscoveryResponseGarbage(t *testing.T) {
	if _, _, ok := ParseDiscoveryResponse([]byte{0x01, 0x02, 0x03}); ok {
		t.Fatal("ParseDiscoveryResponse accepted garbage input")
	}
}

func TestEncodeDiscoveryMute(t *testing.T) {
	target := UID(0x1234)
	source := UID(0x5678)
	packet, err := EncodeDiscoveryMute(target, source, true, 1, 1)
	if err != nil {
		t.Fatalf("EncodeDiscoveryMute: %v", err)
	}
	h, _, valid, ok := ParseHeader(packet)
	if !ok || !valid {
		t.Fatalf("ParseHeader(mute packet): ok=%v valid=%v", ok, valid)
	}
	if h.CC != DiscoveryCommand || h.PID != PIDDiscMute {
		t.Errorf("cc=%#x pid=%#x, want DISCOVERY_COMMAND/DISC_MUTE", h.CC, h.PID)
	}
	if h.DestUID != target || h.SourceUID != source {
		t.Errorf("dest=%s src=%s, want %s/%s", h.DestUID, h.SourceUID, target, source)
	}
}
