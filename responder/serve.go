package responder

import (
	"time"

	"dmxlink/dmx"
	"dmxlink/hal"
	"dmxlink/rdm"
)

// Serve runs r against driver until stop is closed: read whatever
// frame arrives, hand RDM start-code frames to Dispatch, and send any
// resulting response before switching back to receive. DMX_START_CODE
// frames (the null start code) are ignored here since a bare responder
// has no slot data of its own to consume; a fixture wanting DMX_LEVELS
// wires its own reader alongside Serve instead of through it.
//
// This is the "receive, dispatch, respond, listen again" loop both
// host/cmd/dmxresponder and the targets/rp2040 firmware run, kept in
// one place so the framer's task-context contract has a single
// caller to get right.
func Serve(driver *dmx.Driver, r *Responder, stop <-chan struct{}) error {
	buf := make([]byte, dmx.SlotCount)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := driver.SetMode(hal.DirectionRX); err != nil {
			return err
		}

		n, startCode, err := driver.Receive(buf, 250*time.Millisecond)
		if err != nil {
			continue
		}
		if startCode != rdm.StartCode {
			continue
		}

		h, pdl, checksumValid, ok := rdm.ParseHeader(buf[:n])
		if !ok || !checksumValid {
			continue
		}

		out, respond := r.Dispatch(h, pdl)
		if !respond {
			continue
		}

		if err := driver.SetMode(hal.DirectionTX); err != nil {
			return err
		}
		if err := driver.Send(out); err != nil {
			continue
		}
		_ = driver.WaitSent(time.Second)
	}
}
