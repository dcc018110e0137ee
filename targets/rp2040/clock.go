//go:build rp2040

// Direct access to the RP2040's free-running 1MHz timer, kept
// from the Klipper build for the same reason it existed there: a
// break/MAB budget check or a bench uptime print needs a timestamp
// finer than time.Now()'s scheduler-quantized resolution offers on
// TinyGo. hal/softtimer's time.AfterFunc scheduling is unaffected by
// this; it's read-only diagnostics.
package main

import (
	"runtime/volatile"
	"unsafe"
)

const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24
	timerTIMERAWL = timerBase + 0x28
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// hardwareUptimeMicros reads the full 64-bit hardware microsecond
// counter, retrying if a rollover is caught mid-read.
func hardwareUptimeMicros() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}
