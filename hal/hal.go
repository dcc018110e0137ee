// Package hal declares the narrow hardware vocabulary the DMX/RDM framer
// speaks. Every register-level detail lives behind UartHal; the framer
// never touches a peripheral directly.
package hal

// Direction selects which way the RS-485 transceiver currently drives the
// bus.
type Direction uint8

const (
	DirectionRX Direction = iota
	DirectionTX
)

// InterruptMask is a bitset of interrupt sources. Concrete HALs translate
// these to whatever register bits their peripheral actually uses.
type InterruptMask uint32

const (
	IntrRXFIFOOverflow InterruptMask = 1 << iota
	IntrRXFramingError
	IntrRXBreak
	IntrRXData
	IntrRXClash
	IntrTXData
	IntrTXDone

	IntrRXAll = IntrRXFIFOOverflow | IntrRXFramingError | IntrRXBreak | IntrRXData | IntrRXClash
	IntrTXAll = IntrTXData | IntrTXDone
)

// UartConfig describes the fixed line configuration used for every DMX/RDM
// port. Only BaudRate varies driver to driver (RDM never changes this in
// practice, but the field exists so a HAL can validate it).
type UartConfig struct {
	BaudRate uint32
	DataBits uint8
	StopBits uint8
}

// DefaultUartConfig returns the 250kbaud/8N2 line configuration mandated by
// the DMX512 physical layer.
func DefaultUartConfig() UartConfig {
	return UartConfig{BaudRate: 250000, DataBits: 8, StopBits: 2}
}

// UartHal is the abstract UART peripheral. Every method here may be called
// from ISR context by the framer and must not block, allocate, or acquire
// anything but the HAL's own short critical sections.
type UartHal interface {
	// Configure programs the line settings and puts the peripheral into
	// RS-485 half-duplex mode. Called once at Install.
	Configure(cfg UartConfig) error

	// InterruptStatus returns the currently pending interrupt sources.
	InterruptStatus() InterruptMask
	EnableInterrupt(mask InterruptMask)
	DisableInterrupt(mask InterruptMask)
	ClearInterrupt(mask InterruptMask)

	// ReadRXFIFO drains up to len(buf) bytes and returns how many were
	// actually available.
	ReadRXFIFO(buf []byte) int
	// WriteTXFIFO pushes up to len(buf) bytes into the TX FIFO and returns
	// how many were accepted.
	WriteTXFIFO(buf []byte) int
	ResetRXFIFO()
	ResetTXFIFO()

	// SetRTS raises or lowers the RS-485 direction control line.
	SetRTS(dir Direction)
	// InvertTX inverts the idle polarity of the TX line; used to hold the
	// line low for a break without a dedicated break-generation register.
	InvertTX(invert bool)

	SetBaud(baud uint32)
	SetRXTimeoutThreshold(symbols uint8)
	SetRXFIFOFullThreshold(n uint8)
	SetTXFIFOEmptyThreshold(n uint8)

	// RXTimeoutThreshold reports the currently configured RX timeout, in
	// symbol periods. The framer does not read it: last_received_ts is
	// always the time the data interrupt was observed.
	RXTimeoutThreshold() uint8
}
