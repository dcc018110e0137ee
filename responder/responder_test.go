package responder

import (
	"testing"

	"dmxlink/paramstore"
	"dmxlink/rdm"
)

const (
	deviceUID rdm.UID = 0x7FF000000001
	otherUID  rdm.UID = 0x7FF000000099
)

func newTestResponder(t *testing.T) *Responder {
	t.Helper()
	store := paramstore.New(16, nil)
	r := New(store, deviceUID)
	if err := r.RegisterDeviceLabel("initial"); err != nil {
		t.Fatalf("RegisterDeviceLabel: %v", err)
	}
	return r
}

func getRequest(dest, source rdm.UID, pid uint16) rdm.Header {
	return rdm.Header{
		DestUID:   dest,
		SourceUID: source,
		TN:        1,
		CC:        rdm.GetCommand,
		SubDevice: RootSubDevice,
		PID:       pid,
	}
}

func setRequest(dest, source rdm.UID, pid uint16) rdm.Header {
	h := getRequest(dest, source, pid)
	h.CC = rdm.SetCommand
	return h
}

func mustParse(t *testing.T, packet []byte) (rdm.Header, []byte) {
	t.Helper()
	h, pdl, checksumValid, ok := rdm.ParseHeader(packet)
	if !ok || !checksumValid {
		t.Fatalf("ParseHeader: ok=%v checksumValid=%v", ok, checksumValid)
	}
	return h, pdl
}

func TestDispatchIgnoresForeignUID(t *testing.T) {
	r := newTestResponder(t)
	req := getRequest(otherUID, otherUID, rdm.PIDDeviceLabel)
	out, respond := r.Dispatch(req, nil)
	if respond || out != nil {
		t.Fatalf("Dispatch to foreign UID responded: %v %v", out, respond)
	}
}

func TestDispatchUnknownPIDNacks(t *testing.T) {
	r := newTestResponder(t)
	req := getRequest(deviceUID, otherUID, 0x9999)
	out, respond := r.Dispatch(req, nil)
	if !respond {
		t.Fatal("Dispatch: expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeNackReason) {
		t.Fatalf("response type = %d, want NackReason", h.PortID)
	}
	if len(pdl) != 2 || rdm.NackReason(uint16(pdl[0])<<8|uint16(pdl[1])) != rdm.NackUnknownPID {
		t.Fatalf("nack reason pdl = %v", pdl)
	}
}

func TestDispatchBroadcastNeverResponds(t *testing.T) {
	r := newTestResponder(t)
	req := getRequest(rdm.BroadcastUID, otherUID, 0x9999)
	out, respond := r.Dispatch(req, nil)
	if respond || out != nil {
		t.Fatalf("Dispatch broadcast responded: %v %v", out, respond)
	}
}

func TestDispatchDeviceLabelGetSetRoundTrip(t *testing.T) {
	r := newTestResponder(t)

	getReq := getRequest(deviceUID, otherUID, rdm.PIDDeviceLabel)
	out, respond := r.Dispatch(getReq, nil)
	if !respond {
		t.Fatal("GET DEVICE_LABEL: expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeAck) {
		t.Fatalf("response type = %d, want Ack", h.PortID)
	}
	if string(pdl) != "initial" {
		t.Fatalf("device label = %q, want %q", pdl, "initial")
	}

	setReq := getRequest(deviceUID, otherUID, rdm.PIDDeviceLabel)
	setReq.CC = rdm.SetCommand
	out, respond = r.Dispatch(setReq, []byte("hello"))
	if !respond {
		t.Fatal("SET DEVICE_LABEL: expected a response")
	}
	h, pdl = mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeAck) || len(pdl) != 0 {
		t.Fatalf("SET response = type %d pdl %v, want empty ack", h.PortID, pdl)
	}

	out, respond = r.Dispatch(getReq, nil)
	if !respond {
		t.Fatal("second GET DEVICE_LABEL: expected a response")
	}
	_, pdl = mustParse(t, out)
	if string(pdl) != "hello" {
		t.Fatalf("device label after set = %q, want %q", pdl, "hello")
	}
}

func TestDiscUniqueBranchRespondsInRange(t *testing.T) {
	r := newTestResponder(t)
	pdlIn := make([]byte, 12)
	rdm.PutUID(pdlIn[0:6], 0)
	rdm.PutUID(pdlIn[6:12], rdm.MaxUID)

	out, respond := r.HandleDiscUniqueBranch(pdlIn)
	if !respond {
		t.Fatal("expected a discovery response")
	}
	uid, checksumValid, ok := rdm.ParseDiscoveryResponse(out)
	if !ok || !checksumValid {
		t.Fatalf("ParseDiscoveryResponse: ok=%v checksumValid=%v", ok, checksumValid)
	}
	if uid != deviceUID {
		t.Fatalf("discovery response uid = %v, want %v", uid, deviceUID)
	}
}

func TestDiscUniqueBranchSilentOutOfRange(t *testing.T) {
	r := newTestResponder(t)
	pdlIn := make([]byte, 12)
	rdm.PutUID(pdlIn[0:6], otherUID)
	rdm.PutUID(pdlIn[6:12], otherUID)

	if out, respond := r.HandleDiscUniqueBranch(pdlIn); respond || out != nil {
		t.Fatalf("out-of-range branch responded: %v %v", out, respond)
	}
}

func TestDiscMuteSilencesUniqueBranch(t *testing.T) {
	r := newTestResponder(t)
	muteReq := rdm.Header{
		DestUID:   deviceUID,
		SourceUID: otherUID,
		CC:        rdm.DiscoveryCommand,
		PID:       rdm.PIDDiscMute,
	}
	out, respond := r.Dispatch(muteReq, nil)
	if !respond {
		t.Fatal("DISC_MUTE: expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeAck) || len(pdl) != 2 {
		t.Fatalf("DISC_MUTE ack = type %d pdl %v", h.PortID, pdl)
	}
	if !r.Muted() {
		t.Fatal("Responder should be muted after DISC_MUTE")
	}

	pdlIn := make([]byte, 12)
	rdm.PutUID(pdlIn[0:6], 0)
	rdm.PutUID(pdlIn[6:12], rdm.MaxUID)
	if out, respond := r.HandleDiscUniqueBranch(pdlIn); respond || out != nil {
		t.Fatalf("muted responder answered DISC_UNIQUE_BRANCH: %v %v", out, respond)
	}
}

func TestDeviceInfoSynthesizesFootprintFromPersonality(t *testing.T) {
	r := newTestResponder(t)
	if err := r.RegisterDeviceInfo(0x0102, 0x0203, 0x01020304); err != nil {
		t.Fatalf("RegisterDeviceInfo: %v", err)
	}

	req := getRequest(deviceUID, otherUID, rdm.PIDDeviceInfo)
	out, respond := r.Dispatch(req, nil)
	if !respond {
		t.Fatal("GET DEVICE_INFO: expected a response")
	}
	_, pdl := mustParse(t, out)
	fields, err := rdm.DecodePDL(deviceInfoFormat, pdl)
	if err != nil {
		t.Fatalf("DecodePDL: %v", err)
	}
	if len(pdl) != 19 {
		t.Fatalf("DEVICE_INFO pdl length = %d, want 19", len(pdl))
	}
	if fields[0].(uint16) != 0x0102 || fields[1].(uint16) != 0x0203 || fields[2].(uint32) != 0x01020304 {
		t.Fatalf("stored identity fields mismatch: %v", fields[:3])
	}
	if fields[3].(uint16) != 0 {
		t.Fatalf("footprint = %v, want 0 with no personality set", fields[3])
	}
}

func TestSupportedParametersOmitsMandatoryPIDs(t *testing.T) {
	r := newTestResponder(t)
	req := getRequest(deviceUID, otherUID, rdm.PIDSupportedParameters)
	out, respond := r.Dispatch(req, nil)
	if !respond {
		t.Fatal("GET SUPPORTED_PARAMETERS: expected a response")
	}
	_, pdl := mustParse(t, out)
	if len(pdl)%2 != 0 {
		t.Fatalf("SUPPORTED_PARAMETERS pdl length = %d, want even", len(pdl))
	}
	for i := 0; i < len(pdl); i += 2 {
		pid := uint16(pdl[i])<<8 | uint16(pdl[i+1])
		if omitFromSupportedParameters[pid] {
			t.Fatalf("SUPPORTED_PARAMETERS listed mandatory pid %#x", pid)
		}
	}
}

func TestQueuedMessageReturnsPoppedParameterValue(t *testing.T) {
	r := newTestResponder(t)
	if err := r.Store.ParameterSet(RootSubDevice, rdm.PIDDeviceLabel, []byte("queued")); err != nil {
		t.Fatalf("ParameterSet: %v", err)
	}

	req := getRequest(deviceUID, otherUID, rdm.PIDQueuedMessage)
	out, respond := r.Dispatch(req, []byte{statusGetLastMessage})
	if !respond {
		t.Fatal("GET QUEUED_MESSAGE: expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeAck) {
		t.Fatalf("QUEUED_MESSAGE response type = %d, want Ack", h.PortID)
	}
	if len(pdl) < 2 {
		t.Fatalf("QUEUED_MESSAGE pdl too short: %v", pdl)
	}
	gotPID := uint16(pdl[0])<<8 | uint16(pdl[1])
	if gotPID != rdm.PIDDeviceLabel {
		t.Fatalf("QUEUED_MESSAGE pid = %#x, want %#x", gotPID, rdm.PIDDeviceLabel)
	}
	if string(pdl[2:]) != "queued" {
		t.Fatalf("QUEUED_MESSAGE value = %q, want %q", pdl[2:], "queued")
	}
}

func TestQueuedMessageEmptyFallsBackToStatusMessages(t *testing.T) {
	r := newTestResponder(t)
	req := getRequest(deviceUID, otherUID, rdm.PIDQueuedMessage)
	out, respond := r.Dispatch(req, []byte{statusGetLastMessage})
	if !respond {
		t.Fatal("GET QUEUED_MESSAGE: expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeAck) || len(pdl) != 0 {
		t.Fatalf("empty-queue QUEUED_MESSAGE = type %d pdl %v, want empty ack", h.PortID, pdl)
	}
}

func TestIdentifyDeviceRoundTrip(t *testing.T) {
	r := newTestResponder(t)
	var got []bool
	r.IdentifyFunc = func(on bool) { got = append(got, on) }

	setReq := setRequest(deviceUID, otherUID, rdm.PIDIdentifyDevice)
	out, respond := r.Dispatch(setReq, []byte{1})
	if !respond {
		t.Fatal("SET IDENTIFY_DEVICE: expected a response")
	}
	if h, _ := mustParse(t, out); h.PortID != uint8(rdm.ResponseTypeAck) {
		t.Fatalf("SET IDENTIFY_DEVICE response type = %d, want Ack", h.PortID)
	}
	if len(got) != 1 || !got[0] {
		t.Fatalf("IdentifyFunc calls = %v, want [true]", got)
	}

	getReq := getRequest(deviceUID, otherUID, rdm.PIDIdentifyDevice)
	out, respond = r.Dispatch(getReq, nil)
	if !respond {
		t.Fatal("GET IDENTIFY_DEVICE: expected a response")
	}
	_, pdl := mustParse(t, out)
	if len(pdl) != 1 || pdl[0] != 1 {
		t.Fatalf("GET IDENTIFY_DEVICE pdl = %v, want [1]", pdl)
	}
}

func TestDMXStartAddressGetSetRoundTrip(t *testing.T) {
	r := newTestResponder(t)
	if err := r.RegisterDMXAddressing(1, 1); err != nil {
		t.Fatalf("RegisterDMXAddressing: %v", err)
	}

	setReq := setRequest(deviceUID, otherUID, rdm.PIDDMXStartAddress)
	out, respond := r.Dispatch(setReq, []byte{0x01, 0x2C}) // 300
	if !respond {
		t.Fatal("SET DMX_START_ADDRESS: expected a response")
	}
	if h, _ := mustParse(t, out); h.PortID != uint8(rdm.ResponseTypeAck) {
		t.Fatalf("SET DMX_START_ADDRESS response type = %d, want Ack", h.PortID)
	}

	getReq := getRequest(deviceUID, otherUID, rdm.PIDDMXStartAddress)
	out, respond = r.Dispatch(getReq, nil)
	if !respond {
		t.Fatal("GET DMX_START_ADDRESS: expected a response")
	}
	_, pdl := mustParse(t, out)
	if len(pdl) != 2 || uint16(pdl[0])<<8|uint16(pdl[1]) != 300 {
		t.Fatalf("GET DMX_START_ADDRESS pdl = %v, want 300", pdl)
	}
}

func TestDMXStartAddressRejectsOutOfRange(t *testing.T) {
	r := newTestResponder(t)
	if err := r.RegisterDMXAddressing(1, 1); err != nil {
		t.Fatalf("RegisterDMXAddressing: %v", err)
	}
	req := setRequest(deviceUID, otherUID, rdm.PIDDMXStartAddress)
	out, respond := r.Dispatch(req, []byte{0x02, 0x02}) // 514, out of the 1-512 range
	if !respond {
		t.Fatal("expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeNackReason) {
		t.Fatalf("response type = %d, want NackReason", h.PortID)
	}
	if rdm.NackReason(uint16(pdl[0])<<8|uint16(pdl[1])) != rdm.NackDataOutOfRange {
		t.Fatalf("nack reason = %v, want NackDataOutOfRange", pdl)
	}
}

func TestDMXPersonalityRejectsUnknownSlot(t *testing.T) {
	r := newTestResponder(t)
	if err := r.RegisterDMXAddressing(1, 2); err != nil {
		t.Fatalf("RegisterDMXAddressing: %v", err)
	}
	req := setRequest(deviceUID, otherUID, rdm.PIDDMXPersonality)
	out, respond := r.Dispatch(req, []byte{3})
	if !respond {
		t.Fatal("expected a response")
	}
	h, pdl := mustParse(t, out)
	if h.PortID != uint8(rdm.ResponseTypeNackReason) {
		t.Fatalf("response type = %d, want NackReason", h.PortID)
	}
	if rdm.NackReason(uint16(pdl[0])<<8|uint16(pdl[1])) != rdm.NackDataOutOfRange {
		t.Fatalf("nack reason = %v, want NackDataOutOfRange", pdl)
	}
}
