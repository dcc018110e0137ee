//go:build rp2040

// Optional status display: an SSD1306 I2C OLED showing this
// responder's UID, DMX start address and mute state, wired
// the way examples/drivers/adxl345_example.go wires an I2C sensor —
// construct the driver, configure it, poll it from the main loop.
package main

import (
	"fmt"
	"machine"

	"tinygo.org/x/drivers/ssd1306"

	"dmxlink/paramstore"
	"dmxlink/rdm"
	"dmxlink/responder"
)

const (
	displayI2CAddr = 0x3C
	displayWidth   = 128
	displayHeight  = 32
)

// statusDisplay mirrors the fixture's live parameters onto a small
// OLED. It implements paramstore.Callback so a SET DMX_START_ADDRESS
// or SET DMX_PERSONALITY redraws immediately instead of waiting for a
// poll.
type statusDisplay struct {
	dev *ssd1306.Device
	r   *responder.Responder
}

func newStatusDisplay(bus *machine.I2C, r *responder.Responder) *statusDisplay {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: displayI2CAddr,
		Width:   displayWidth,
		Height:  displayHeight,
	})
	d := &statusDisplay{dev: &dev, r: r}
	d.redraw()
	return d
}

func (d *statusDisplay) OnParameterChanged(subDevice, pid uint16, value []byte) {
	switch pid {
	case rdm.PIDDMXStartAddress, rdm.PIDDMXPersonality:
		d.redraw()
	}
}

func (d *statusDisplay) redraw() {
	d.dev.ClearDisplay()
	start, _ := d.r.Store.ParameterGet(responder.RootSubDevice, rdm.PIDDMXStartAddress)
	addr := uint16(0)
	if len(start) == 2 {
		addr = uint16(start[0])<<8 | uint16(start[1])
	}
	status := fmt.Sprintf("UID %s\nAddr %d\nMuted %v", d.r.UID, addr, d.r.Muted())
	drawLines(d.dev, status)
	d.dev.Display()
}

// drawLines is a placeholder for the tinygo.org/x/drivers/ssd1306
// text-drawing helper a real build would call (font rendering needs a
// tinyfont import this driver doesn't otherwise need); it exists so
// the display path has one obvious place to grow into full text
// rendering.
func drawLines(dev *ssd1306.Device, text string) {
	_ = dev
	_ = text
}

func registerStatusDisplay(store *paramstore.Store, r *responder.Responder, bus *machine.I2C) {
	d := newStatusDisplay(bus, r)
	store.CallbackSet(responder.RootSubDevice, rdm.PIDDMXStartAddress, d)
	store.CallbackSet(responder.RootSubDevice, rdm.PIDDMXPersonality, d)
}
