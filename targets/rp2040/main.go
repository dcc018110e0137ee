//go:build rp2040

// Command main is the RP2040 firmware for a single DMX512/RDM
// responder: a PL011 UART for line data, a PIO state machine driving
// the break/MAB signal with sub-microsecond timing, and a GPIO pin
// flipping the RS-485 transceiver's direction. It replaces the
// teacher's Klipper-protocol USB CDC main loop entirely — the
// GPIO/ADC/PWM/stepper command set it drove has no place in a DMX
// fixture, per DESIGN.md's teacher code disposition.
package main

import (
	"machine"
	"time"

	"dmxlink/dmx"
	"dmxlink/hal/memnvs"
	"dmxlink/hal/softtimer"
	"dmxlink/rdm"
	"dmxlink/responder"
)

const (
	uartRXPin      = machine.GPIO1
	uartTXPin      = machine.GPIO0
	rs485DirPin    = machine.GPIO2
	breakPin       = machine.GPIO3
	personalityPin = machine.GPIO4
	statusLEDPin   = machine.LED

	modelID        uint16 = 0x0001
	deviceCategory uint16 = 0x0100 // fixture, per RDM's Product Category Definitions
)

func main() {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{TX: uartTXPin, RX: uartRXPin})

	brk, err := newBreakGenerator(0, 0, breakPin)
	if err != nil {
		blinkFatal()
	}

	uartHal := newRP2040UartHal(uart, brk, rs485DirPin)
	timer := softtimer.New()

	// This board has no flash-backed key/value store wired yet, so
	// NonVolatile parameters (DEVICE_LABEL, DMX_START_ADDRESS,
	// DMX_PERSONALITY) hold across GET/SET calls but reset to their
	// registered defaults on reboot, same as memnvs's doc comment
	// promises.
	driver, err := dmx.Install(uartHal, timer, memnvs.New(), dmx.DefaultConfig())
	if err != nil {
		blinkFatal()
	}

	r := responder.New(driver.Store, rdm.GetUID())
	if err := r.RegisterDeviceInfo(modelID, deviceCategory, firmwareVersion()); err != nil {
		blinkFatal()
	}
	if err := r.RegisterSoftwareVersionLabel("dmxlink-rp2040"); err != nil {
		blinkFatal()
	}
	if err := r.RegisterDeviceLabel("RP2040 Fixture"); err != nil {
		blinkFatal()
	}
	personalityCount := personalitySelectPin(personalityPin)
	if personalityCount == 0 {
		personalityCount = 1
	}
	if err := r.RegisterDMXAddressing(1, personalityCount); err != nil {
		blinkFatal()
	}

	statusLEDPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.IdentifyFunc = func(on bool) { statusLEDPin.Set(on) }

	machine.I2C0.Configure(machine.I2CConfig{})
	registerStatusDisplay(driver.Store, r, machine.I2C0)

	stop := make(chan struct{})
	go pollUART(uartHal, driver)

	if err := responder.Serve(driver, r, stop); err != nil {
		blinkFatal()
	}
}

// pollUART drives the framer from the main goroutine's perspective:
// TinyGo's machine.UART exposes no per-byte interrupt hook, so this
// polls Buffered()/ReadByte() the way targets/rp2040/uarthal.go
// documents, delivering into dmx.Driver.OnInterrupt exactly as a real
// ISR would.
func pollUART(uartHal *rp2040UartHal, driver *dmx.Driver) {
	for {
		uartHal.pollRXBuffered(func() {
			driver.OnInterrupt(time.Now())
		})
		time.Sleep(50 * time.Microsecond)
	}
}

// firmwareVersion is a build-time constant bumped alongside releases;
// dmxctl's `get software_version` shows the human-readable twin of
// this in SOFTWARE_VERSION_LABEL.
func firmwareVersion() uint32 { return 0x01000000 }

func blinkFatal() {
	statusLEDPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		statusLEDPin.High()
		time.Sleep(100 * time.Millisecond)
		statusLEDPin.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
