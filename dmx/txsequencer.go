package dmx

import "dmxlink/hal"

// txSequencer drives the break -> mark-after-break -> data state
// machine used to transmit a frame, structurally the same split
// esp_dmx makes between dmx_timer_intr_handler (break/MAB timing) and
// the TX_DATA/TX_DONE branches of dmx_intr_handler (FIFO draining).
// Here a single hal.Timer callback plays the role of the hardware
// timer alarm; the framer's handleTXData/handleTXDone still drain the
// FIFO once transmission proper begins.
type txSequencer struct {
	d *txDriver
}

// txDriver is the subset of Driver the sequencer needs, kept narrow so
// it is exercised by tests without a full Driver.
type txDriver struct {
	*Driver
}

func newTXSequencer(d *Driver) *txSequencer {
	return &txSequencer{d: &txDriver{d}}
}

// start begins transmission of d.txBuf: switch the bus to TX, hold the
// line low for the configured break length, then arm the
// mark-after-break, then release the frame's data bytes to the FIFO.
func (s *txSequencer) start() error {
	d := s.d.Driver

	state := enterCritical()
	d.txBuf.head = 0
	d.isBusy = true
	d.isInBreak = true
	breakLen := d.breakLenUS
	exitCritical(state)

	d.uartHal.SetRTS(hal.DirectionTX)
	d.uartHal.InvertTX(true)

	d.timer.Arm(microseconds(breakLen), func() {
		s.endBreak()
	})
	return nil
}

func (s *txSequencer) endBreak() {
	d := s.d.Driver

	d.uartHal.InvertTX(false)

	state := enterCritical()
	d.isInBreak = false
	mabLen := d.mabLenUS
	exitCritical(state)

	d.timer.Arm(microseconds(mabLen), func() {
		s.endMAB()
	})
}

func (s *txSequencer) endMAB() {
	d := s.d.Driver

	state := enterCritical()
	remaining := d.txBuf.data[d.txBuf.head:d.txBuf.size]
	n := d.uartHal.WriteTXFIFO(remaining)
	d.txBuf.head += n
	exitCritical(state)

	d.uartHal.EnableInterrupt(hal.IntrTXAll)
	d.timer.Pause()
}
