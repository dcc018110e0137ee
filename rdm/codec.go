package rdm

import "encoding/binary"

// Header is the 24-byte fixed prefix shared by every standard RDM
// packet (spec.md §3, rdm_data_t in the original driver). PortID
// carries the response type instead when CC is one of the *Response
// classes, matching the union the C struct used for the same byte.
type Header struct {
	MessageLen   uint8
	DestUID      UID
	SourceUID    UID
	TN           uint8
	PortID       uint8
	MessageCount uint8
	SubDevice    uint16
	CC           CommandClass
	PID          uint16
	PDL          uint8
}

// checksum is the RDM packet checksum: an additive sum of every byte
// from the start code through the byte before the checksum field.
func checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

// ParseHeader decodes a standard RDM packet's fixed header. ok is
// false if data does not even look like an RDM packet (wrong start
// code, sub-start code, or an implausible message length) — the
// framer should treat that as noise, not a checksum failure.
// checksumValid is meaningful only when ok is true and reports whether
// the packet's trailing checksum matched; per spec.md §7 a checksum
// mismatch is discarded before dispatch rather than surfaced as an
// error.
func ParseHeader(data []byte) (h Header, pdl []byte, checksumValid bool, ok bool) {
	if len(data) < HeaderSize+ChecksumSize {
		return Header{}, nil, false, false
	}
	if data[0] != StartCode || data[1] != SubStartCode {
		return Header{}, nil, false, false
	}
	messageLen := int(data[2])
	if messageLen < HeaderSize || messageLen+ChecksumSize > len(data) {
		return Header{}, nil, false, false
	}

	sum := checksum(data[:messageLen])
	want := binary.BigEndian.Uint16(data[messageLen : messageLen+2])

	h = Header{
		MessageLen:   data[2],
		DestUID:      UIDFromBytes(data[3:9]),
		SourceUID:    UIDFromBytes(data[9:15]),
		TN:           data[15],
		PortID:       data[16],
		MessageCount: data[17],
		SubDevice:    binary.BigEndian.Uint16(data[18:20]),
		CC:           CommandClass(data[20]),
		PID:          binary.BigEndian.Uint16(data[21:23]),
		PDL:          data[23],
	}
	pdlEnd := HeaderSize + int(h.PDL)
	if pdlEnd > messageLen {
		return Header{}, nil, false, false
	}
	pdl = data[HeaderSize:pdlEnd]
	return h, pdl, sum == want, true
}

// FormatHeader encodes h and pdl into a complete RDM packet including
// the trailing checksum. It returns an error if pdl is longer than 231
// bytes, the most the one-byte message_len field can describe once the
// 24-byte header is counted (24 + 231 = 255).
func FormatHeader(h Header, pdl []byte) ([]byte, error) {
	if len(pdl) > 231 {
		return nil, ErrPDLTooLong
	}
	messageLen := HeaderSize + len(pdl)
	out := make([]byte, messageLen+ChecksumSize)

	out[0] = StartCode
	out[1] = SubStartCode
	out[2] = uint8(messageLen)
	PutUID(out[3:9], h.DestUID)
	PutUID(out[9:15], h.SourceUID)
	out[15] = h.TN
	out[16] = h.PortID
	out[17] = h.MessageCount
	binary.BigEndian.PutUint16(out[18:20], h.SubDevice)
	out[20] = uint8(h.CC)
	binary.BigEndian.PutUint16(out[21:23], h.PID)
	out[23] = uint8(len(pdl))
	copy(out[HeaderSize:messageLen], pdl)

	binary.BigEndian.PutUint16(out[messageLen:], checksum(out[:messageLen]))
	return out, nil
}
