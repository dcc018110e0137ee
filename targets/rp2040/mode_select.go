//go:build rp2040

package main

import "machine"

// personalitySelectPin reads a pulled-up boot pin the same way the
// teacher's ModeConfig used to pick Standalone-vs-Klipper and returns
// the personality count main registers: grounded low at power-up gives
// 2, left floating (pulled high) gives 1. This gives a fixture without
// a display or host connection a way to offer a second personality on
// the bench.
func personalitySelectPin(pin machine.Pin) byte {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	if pin.Get() {
		return 1
	}
	return 2
}
