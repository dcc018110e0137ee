package responder

import "dmxlink/rdm"

// HandleDiscUniqueBranch answers a DISC_UNIQUE_BRANCH request. pdlIn
// carries the inclusive [lower, upper] UID bracket as two consecutive
// 6-byte UIDs (spec.md's scenario 3). A response is due only when this
// device's UID falls in range and the responder is not muted; the
// reply bypasses the normal ACK/NACK header entirely, using the
// interleaved discovery-response wire format from rdm.EncodeDiscoveryResponse.
func (r *Responder) HandleDiscUniqueBranch(pdlIn []byte) (out []byte, respond bool) {
	if r.muted {
		return nil, false
	}
	if len(pdlIn) < 12 {
		return nil, false
	}
	lower := rdm.UIDFromBytes(pdlIn[0:6])
	upper := rdm.UIDFromBytes(pdlIn[6:12])
	if !r.UID.InRange(lower, upper) {
		return nil, false
	}
	return rdm.EncodeDiscoveryResponse(r.UID), true
}

// handleDiscMuteRequest and handleDiscUnMuteRequest are registered
// against DISC_MUTE/DISC_UN_MUTE. Both are DISCOVERY_COMMANDs (never
// GET/SET), so they run through Responder.handlers rather than
// dispatchParameter's GET/SET switch, matching how the original
// driver's discovery mute logic sits outside the ordinary parameter
// table entirely.
func (r *Responder) handleDiscMuteRequest(_ *Responder, _ uint16, _ rdm.Header, _ []byte) ([]byte, rdm.NackReason, bool) {
	r.muted = true
	return muteAckPDL(), 0, false
}

func (r *Responder) handleDiscUnMuteRequest(_ *Responder, _ uint16, _ rdm.Header, _ []byte) ([]byte, rdm.NackReason, bool) {
	r.muted = false
	return muteAckPDL(), 0, false
}

// muteAckPDL is the 2-byte control field a MUTE/UN_MUTE ACK carries:
// bit 0 set means "managed proxy present", bit 1 "sub-device list
// change pending". This responder has neither, so it always answers
// zero.
func muteAckPDL() []byte {
	return []byte{0x00, 0x00}
}
