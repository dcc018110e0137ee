package rdm

// EncodeDiscoveryResponse builds the 24-byte DISC_UNIQUE_BRANCH
// response for uid: 7 preamble bytes, one delimiter, then the UID and
// its checksum each written as two interleaved bytes per source byte.
// This has no start code and does not go through FormatHeader — it is
// the one RDM message type with its own wire encoding (spec.md §4.3),
// ported directly from rdm_write_discovery_response.
func EncodeDiscoveryResponse(uid UID) []byte {
	resp := make([]byte, PreambleMaxLen+1+DiscoveryRespLen)
	for i := 0; i < PreambleMaxLen; i++ {
		resp[i] = Preamble
	}
	resp[PreambleMaxLen] = Delimiter

	b := uid.Bytes()
	var sum uint16
	off := PreambleMaxLen + 1
	for i, v := range b {
		resp[off+i*2] = v | 0xAA
		resp[off+i*2+1] = v | 0x55
		sum += uint16(v) + 0xFF
	}

	cksumOff := off + len(b)*2
	hi := byte(sum >> 8)
	lo := byte(sum)
	resp[cksumOff] = hi | 0xAA
	resp[cksumOff+1] = hi | 0x55
	resp[cksumOff+2] = lo | 0xAA
	resp[cksumOff+3] = lo | 0x55
	return resp
}

// ParseDiscoveryResponse scans data for a discovery-response preamble
// (0-7 bytes of 0xFE followed by 0xAA) and decodes the interleaved UID
// and checksum that follow it, structurally identical to the preamble
// scan in rdm_parse. ok is false if no valid preamble/delimiter was
// found or the response is too short; checksumValid is meaningful only
// when ok is true.
func ParseDiscoveryResponse(data []byte) (uid UID, checksumValid bool, ok bool) {
	preambleLen := 0
	for preambleLen < PreambleMaxLen && preambleLen < len(data) {
		if data[preambleLen] == Delimiter {
			break
		}
		preambleLen++
	}
	if preambleLen >= len(data) || data[preambleLen] != Delimiter {
		return 0, false, false
	}
	if len(data) < preambleLen+1+DiscoveryRespLen {
		return 0, false, false
	}
	resp := data[preambleLen+1:]

	var raw [6]byte
	var sum uint16
	for i := 0; i < 6; i++ {
		v := (resp[i*2] & 0x55) | (resp[i*2+1] & 0xAA)
		raw[i] = v
		sum += uint16(v) + 0xFF
	}
	uid = UIDFromBytes(raw[:])

	hi := (resp[12] & 0x55) | (resp[13] & 0xAA)
	lo := (resp[14] & 0x55) | (resp[15] & 0xAA)
	want := uint16(hi)<<8 | uint16(lo)

	return uid, sum == want, true
}

// EncodeDiscoveryMute builds a MUTE or UN_MUTE command addressed to
// target, sent by a controller during discovery. It is a standard RDM
// packet — PDL 0, CC DISCOVERY_COMMAND — so it goes through
// FormatHeader like any other request.
func EncodeDiscoveryMute(target, source UID, mute bool, tn, portID uint8) ([]byte, error) {
	pid := PIDDiscUnMute
	if mute {
		pid = PIDDiscMute
	}
	h := Header{
		DestUID:   target,
		SourceUID: source,
		TN:        tn,
		PortID:    portID,
		CC:        DiscoveryCommand,
		PID:       pid,
	}
	return FormatHeader(h, nil)
}
