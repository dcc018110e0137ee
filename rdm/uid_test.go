package rdm

import "testing"

func TestUIDBytesRoundTrip(t *testing.T) {
	uid := UID(0x0102_030405AB)
	buf := uid.Bytes()
	got := UIDFromBytes(buf[:])
	if got != uid {
		t.Errorf("UIDFromBytes(Bytes()) = %s, want %s", got, uid)
	}
}

func TestUIDInRange(t *testing.T) {
	lower, upper := UID(100), UID(200)
	if !UID(150).InRange(lower, upper) {
		t.Error("150 should be in [100, 200]")
	}
	if UID(99).InRange(lower, upper) {
		t.Error("99 should not be in [100, 200]")
	}
	if !UID(100).InRange(lower, upper) || !UID(200).InRange(lower, upper) {
		t.Error("range bounds should be inclusive")
	}
}

func TestGetUIDLatchesAfterFirstCall(t *testing.T) {
	resetUIDForTest()
	SetDeviceIDSource(func() uint32 { return 0xAABBCCDD })

	if !SetUID(0x1234_56789ABC) {
		t.Fatal("SetUID before first GetUID should succeed")
	}
	if got := GetUID(); got != 0x1234_56789ABC {
		t.Fatalf("GetUID = %s, want overridden UID", got)
	}
	if SetUID(0) {
		t.Fatal("SetUID after GetUID should fail (latched)")
	}
}

// resetUIDForTest clears package-level UID state between tests; it
// exists only in the test binary.
func resetUIDForTest() {
	uidMu.Lock()
	defer uidMu.Unlock()
	uid = 0
	uidLatched = false
	deviceIDGen = randomDeviceID
}
