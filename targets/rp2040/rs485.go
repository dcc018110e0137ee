//go:build rp2040

package main

import (
	"machine"

	dmxhal "dmxlink/hal"
)

// rs485Pin drives the RS-485 transceiver's combined DE/RE direction
// pin: high for transmit, low for receive, matching every common
// half-duplex transceiver (SN75176, MAX485) wiring convention.
type rs485Pin struct {
	pin machine.Pin
}

func newRS485Pin(pin machine.Pin) *rs485Pin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return &rs485Pin{pin: pin}
}

func (p *rs485Pin) set(dir dmxhal.Direction) {
	if dir == dmxhal.DirectionTX {
		p.pin.High()
	} else {
		p.pin.Low()
	}
}
