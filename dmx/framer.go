package dmx

import (
	"time"

	"dmxlink/hal"
)

// OnInterrupt is the interrupt-context byte framer. It is a structural
// port of esp_dmx's dmx_intr_handler: drain every pending interrupt
// source in priority order (overflow, framing error, break, data,
// clash, tx data, tx done) until the peripheral reports nothing left,
// then return. Concrete HAL backends call this from whatever mechanism
// their platform uses to deliver a UART interrupt (a real ISR on
// TinyGo targets, a reader goroutine translating byte arrivals into
// synthetic interrupts on host builds).
func (d *Driver) OnInterrupt(now time.Time) {
	for {
		flags := d.uartHal.InterruptStatus()
		if flags == 0 {
			break
		}

		switch {
		case flags&hal.IntrRXFIFOOverflow != 0:
			d.handleRXOverflow()
		case flags&hal.IntrRXFramingError != 0:
			d.handleRXFramingError()
		case flags&hal.IntrRXBreak != 0:
			d.handleRXBreak()
		case flags&hal.IntrRXData != 0:
			d.handleRXData(now, flags)
		case flags&hal.IntrRXClash != 0:
			d.uartHal.ClearInterrupt(hal.IntrRXClash)
			// A collision only matters mid RDM discovery; the
			// controller side (host/cmd/dmxctl's discover) treats a
			// missing or unparsable response as the outcome instead of
			// a clash notification, same as the TODO left in the
			// original ISR.
		case flags&hal.IntrTXData != 0:
			d.handleTXData()
		case flags&hal.IntrTXDone != 0:
			d.handleTXDone(now)
		default:
			d.uartHal.DisableInterrupt(flags)
			d.uartHal.ClearInterrupt(flags)
		}
	}
}

func (d *Driver) notifyLocked(ev Event) {
	if !d.waitingTask {
		return
	}
	select {
	case <-d.notify:
	default:
	}
	d.notify <- ev
}

func (d *Driver) handleRXOverflow() {
	d.uartHal.ClearInterrupt(hal.IntrRXFIFOOverflow)
	state := enterCritical()
	if d.isBusy {
		d.notifyLocked(Event{Status: ErrOverflow})
	}
	d.isBusy = false
	exitCritical(state)
	d.uartHal.ResetRXFIFO()
}

func (d *Driver) handleRXFramingError() {
	d.uartHal.ClearInterrupt(hal.IntrRXFramingError)
	state := enterCritical()
	if d.isBusy {
		d.notifyLocked(Event{Status: ErrImproperSlot})
	}
	d.isBusy = false
	exitCritical(state)
	d.uartHal.ResetRXFIFO()
}

func (d *Driver) handleRXBreak() {
	d.uartHal.ClearInterrupt(hal.IntrRXBreak)
	state := enterCritical()
	d.isInBreak = true
	if d.isBusy {
		d.notifyLocked(Event{Status: OK, StartCode: d.buf.startCode(), Size: d.buf.head})
		d.buf.size = d.buf.head
	}
	d.isBusy = true
	d.buf.head = 0
	exitCritical(state)
	d.uartHal.ResetRXFIFO()
}

func (d *Driver) handleRXData(now time.Time, flags hal.InterruptMask) {
	d.uartHal.ClearInterrupt(hal.IntrRXData)

	state := enterCritical()
	d.isInBreak = false

	if d.buf.head < SlotCount {
		n := d.uartHal.ReadRXFIFO(d.buf.data[d.buf.head:])
		d.buf.head += n
	} else {
		d.uartHal.ResetRXFIFO()
	}

	d.lastReceivedTS = now

	if !d.isBusy || !d.waitingTask {
		exitCritical(state)
		return
	}

	sc := d.buf.startCode()
	switch {
	case sc == StartCodeDMX && d.buf.head > d.buf.size:
		d.notifyLocked(Event{Status: OK, StartCode: sc, Size: d.buf.head})
		d.isBusy = false
	case sc == StartCodeRDM && d.buf.head >= 3 && d.buf.head >= int(d.buf.data[2])+2:
		// message_len (byte 2) covers the header and PDL but not the
		// trailing two checksum bytes; once head reaches that, the
		// whole RDM packet has arrived.
		d.notifyLocked(Event{Status: OK, StartCode: sc, Size: d.buf.head})
		d.isBusy = false
	}
	exitCritical(state)
}

func (d *Driver) handleTXData() {
	d.uartHal.ClearInterrupt(hal.IntrTXData)
	state := enterCritical()
	remaining := d.txBuf.data[d.txBuf.head:d.txBuf.size]
	n := d.uartHal.WriteTXFIFO(remaining)
	d.txBuf.head += n
	if d.txBuf.head == d.txBuf.size {
		d.uartHal.DisableInterrupt(hal.IntrTXData)
	}
	exitCritical(state)
}

func (d *Driver) handleTXDone(now time.Time) {
	d.uartHal.ClearInterrupt(hal.IntrTXDone)
	state := enterCritical()
	d.lastSentTS = now
	d.isBusy = false
	exitCritical(state)

	select {
	case d.dataWritten <- struct{}{}:
	default:
	}
}
