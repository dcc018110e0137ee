// Package dmx implements the DMX512/RDM link-layer engine: the
// interrupt-driven framer that turns raw serial bytes into whole DMX/RDM
// frames and back, and the per-port driver state that task-context code
// blocks on.
package dmx

import "time"

// Wire-level constants from spec.md §6/§8, ported from the original
// driver's dmx_caps.h enums.
const (
	// SlotCount is one start code plus 512 data slots.
	SlotCount = 513

	StartCodeDMX = 0x00
	StartCodeRDM = 0xCC

	BaudRate = 250000

	// Break timing.
	TXBreakDefaultUS = 176
	TXBreakMinUS     = 92
	RXBreakMinUS     = 88

	// Mark-after-break timing.
	TXMabDefaultUS = 12
	RXMabMinUS     = 8

	RXWatchdog = 1250 * time.Millisecond
	TXWatchdog = 1000 * time.Millisecond

	// Parameter-table capacity is Config.ParamCapacity; see paramstore.
)

// StartCodeIsValid rejects the alternate start codes reserved by the DMX512
// standard (spec.md §6, dmx_caps.h DMX_START_CODE_IS_VALID).
func StartCodeIsValid(sc byte) bool {
	if sc >= 0x92 && sc <= 0xA9 {
		return false
	}
	if sc >= 0xAB && sc <= 0xCD {
		return false
	}
	if sc >= 0xF0 && sc <= 0xF7 {
		return false
	}
	return true
}

// microseconds converts a microsecond count from Config/consts into a
// time.Duration for hal.Timer.Arm.
func microseconds(us uint32) time.Duration {
	return time.Duration(us) * time.Microsecond
}
