// Package rdm implements the RDM (Remote Device Management) wire
// codec: standard-packet header framing with its additive checksum,
// the DISC_UNIQUE_BRANCH discovery response's interleaved-byte
// encoding, and the small format DSL used to lay out parameter
// payloads. It has no notion of a UART or a driver; dmx.Driver hands
// it raw bytes and gets back parsed structures, mirroring the split
// between rdm_tools.c and the interrupt handlers in the original
// driver.
package rdm

// Wire constants ported from the original driver's dmx_caps.h.
const (
	StartCode    = 0xCC
	SubStartCode = 0x01

	// HeaderSize is the 24-byte fixed prefix common to every standard
	// RDM packet, checksum excluded.
	HeaderSize = 24
	// ChecksumSize is the trailing big-endian additive checksum.
	ChecksumSize = 2

	Preamble  = 0xFE
	Delimiter = 0xAA

	// PreambleMaxLen bounds how many preamble bytes a DISC_UNIQUE_BRANCH
	// response may lead with before the delimiter.
	PreambleMaxLen = 7
	// DiscoveryRespLen is the length of a DISC_UNIQUE_BRANCH response
	// after its preamble and delimiter: 12 interleaved UID bytes plus 4
	// interleaved checksum bytes.
	DiscoveryRespLen = 16
)

// CommandClass identifies the kind of RDM message.
type CommandClass uint8

const (
	DiscoveryCommand         CommandClass = 0x10
	DiscoveryCommandResponse CommandClass = 0x11
	GetCommand               CommandClass = 0x20
	GetCommandResponse       CommandClass = 0x21
	SetCommand               CommandClass = 0x30
	SetCommandResponse       CommandClass = 0x31
)

// ResponseType occupies the same wire byte as PortID on a request.
type ResponseType uint8

const (
	ResponseTypeAck         ResponseType = 0x00
	ResponseTypeAckTimer    ResponseType = 0x01
	ResponseTypeNackReason  ResponseType = 0x02
	ResponseTypeAckOverflow ResponseType = 0x03
)

// NackReason enumerates the standard RDM NACK reason codes this
// responder can emit.
type NackReason uint16

const (
	NackUnknownPID               NackReason = 0x0000
	NackFormatError              NackReason = 0x0001
	NackHardwareFault            NackReason = 0x0002
	NackUnsupportedCommandClass  NackReason = 0x0005
	NackDataOutOfRange           NackReason = 0x0006
	NackBufferFull               NackReason = 0x0007
	NackPacketSizeUnsupported    NackReason = 0x0008
	NackSubDeviceOutOfRange      NackReason = 0x0009
	NackProxyBufferFull          NackReason = 0x000A
)

// Well-known parameter IDs referenced directly by the responder.
const (
	PIDDiscUniqueBranch      uint16 = 0x0001
	PIDDiscMute              uint16 = 0x0002
	PIDDiscUnMute            uint16 = 0x0003
	PIDQueuedMessage         uint16 = 0x0020
	PIDSupportedParameters   uint16 = 0x0050
	PIDParameterDescription  uint16 = 0x0051
	PIDDeviceInfo            uint16 = 0x0060
	PIDProductDetailIDList   uint16 = 0x0070
	PIDDeviceModelDescription uint16 = 0x0080
	PIDManufacturerLabel     uint16 = 0x0081
	PIDDeviceLabel           uint16 = 0x0082
	PIDDMXPersonality        uint16 = 0x00E0
	PIDDMXStartAddress       uint16 = 0x00F0
	PIDSoftwareVersionLabel  uint16 = 0x00C0
	PIDStatusMessages        uint16 = 0x0030
	PIDIdentifyDevice        uint16 = 0x1000
)
