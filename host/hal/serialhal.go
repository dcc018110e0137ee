// Package hal implements hal.UartHal against a real host serial port,
// letting the dmx package drive a USB-RS485 adapter the same way a
// TinyGo target drives an on-chip UART. It plays the role gopper's
// host/serial package plays for the MCU link, but goes one layer
// lower: DMX512 needs a genuine break condition and RS-485 direction
// control that a plain io.ReadWriteCloser can't reach.
package hal

import (
	"errors"
	"sync"
	"time"

	dmxhal "dmxlink/hal"

	tarmserial "github.com/tarm/serial"
)

var errNotConfigured = errors.New("serialhal: not configured")

// SerialHal is a dmxhal.UartHal backed by device, a USB-RS485 adapter's
// tty path (e.g. "/dev/ttyUSB0"). Break generation, direction control
// and all reads use raw termios/ioctl access on a second fd
// (rs485_linux.go), so PARMRK break markers are visible; writes go
// through tarm/serial, the same library host/serial wraps for the MCU
// link.
type SerialHal struct {
	device string

	mu      sync.Mutex
	port    *tarmserial.Port
	ctl     *controlFd
	pending dmxhal.InterruptMask
	enabled dmxhal.InterruptMask
	rx      []byte
	closed  bool

	notify chan struct{}
}

func NewSerialHal(device string) *SerialHal {
	return &SerialHal{
		device: device,
		notify: make(chan struct{}, 1),
	}
}

// Notify reports when new interrupt state is pending; a caller (the
// host command's event loop) selects on it and then calls
// dmx.Driver.OnInterrupt, mirroring the ISR a TinyGo target's runtime
// would otherwise fire directly.
func (h *SerialHal) Notify() <-chan struct{} { return h.notify }

func (h *SerialHal) wake() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *SerialHal) Configure(cfg dmxhal.UartConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	port, err := tarmserial.OpenPort(&tarmserial.Config{
		Name:        h.device,
		Baud:        int(cfg.BaudRate),
		ReadTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	ctl, err := openControlFd(h.device)
	if err != nil {
		port.Close()
		return err
	}
	if err := ctl.setBreakSensingRawMode(cfg); err != nil {
		port.Close()
		ctl.close()
		return err
	}
	if err := ctl.enableRS485(); err != nil {
		port.Close()
		ctl.close()
		return err
	}

	h.port = port
	h.ctl = ctl
	h.rx = h.rx[:0]
	go h.readLoop(ctl)
	return nil
}

// readLoop scans raw termios reads for the 0xFF 0x00 0x00 marker
// sequence PARMRK produces around a break condition, feeding ordinary
// bytes into the RX buffer and setting IntrRXBreak/IntrRXData as
// gopper's own host/serial reader goroutine feeds bytes into the MCU
// transport's read buffer.
func (h *SerialHal) readLoop(ctl *controlFd) {
	buf := make([]byte, 256)
	for {
		n, err := ctl.read(buf)
		h.mu.Lock()
		if h.closed || h.ctl != ctl {
			h.mu.Unlock()
			return
		}
		if err != nil {
			h.mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			continue
		}
		sawBreak, sawOverflow, data := scanMarkers(buf[:n])
		if len(data) > 0 {
			if len(h.rx)+len(data) > 4096 {
				sawOverflow = true
			} else {
				h.rx = append(h.rx, data...)
				if h.enabled&dmxhal.IntrRXData != 0 {
					h.pending |= dmxhal.IntrRXData
				}
			}
		}
		if sawBreak && h.enabled&dmxhal.IntrRXBreak != 0 {
			h.pending |= dmxhal.IntrRXBreak
		}
		if sawOverflow && h.enabled&dmxhal.IntrRXFIFOOverflow != 0 {
			h.pending |= dmxhal.IntrRXFIFOOverflow
		}
		shouldWake := h.pending != 0
		h.mu.Unlock()
		if shouldWake {
			h.wake()
		}
	}
}

// scanMarkers strips PARMRK's 0xFF 0xFF -> literal 0xFF and 0xFF 0x00
// 0x00 -> break-condition escapes out of raw, returning the data bytes
// and whether a break marker was seen.
func scanMarkers(raw []byte) (sawBreak, sawOverflow bool, data []byte) {
	data = make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != 0xFF {
			data = append(data, raw[i])
			continue
		}
		if i+1 >= len(raw) {
			// Marker split across reads; drop the trailing 0xFF rather
			// than misinterpret it next call.
			break
		}
		switch raw[i+1] {
		case 0xFF:
			data = append(data, 0xFF)
			i++
		case 0x00:
			if i+2 < len(raw) && raw[i+2] == 0x00 {
				sawBreak = true
				i += 2
			}
		}
	}
	return sawBreak, sawOverflow, data
}

func (h *SerialHal) InterruptStatus() dmxhal.InterruptMask {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending & h.enabled
}

func (h *SerialHal) EnableInterrupt(mask dmxhal.InterruptMask) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled |= mask
}

func (h *SerialHal) DisableInterrupt(mask dmxhal.InterruptMask) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled &^= mask
}

func (h *SerialHal) ClearInterrupt(mask dmxhal.InterruptMask) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending &^= mask
}

func (h *SerialHal) ReadRXFIFO(buf []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := copy(buf, h.rx)
	h.rx = h.rx[n:]
	return n
}

func (h *SerialHal) WriteTXFIFO(buf []byte) int {
	h.mu.Lock()
	port := h.port
	h.mu.Unlock()
	if port == nil {
		return 0
	}
	n, err := port.Write(buf)
	if err != nil {
		return 0
	}
	if n == len(buf) {
		h.mu.Lock()
		if h.enabled&dmxhal.IntrTXDone != 0 {
			h.pending |= dmxhal.IntrTXDone
		}
		h.mu.Unlock()
		h.wake()
	}
	return n
}

func (h *SerialHal) ResetRXFIFO() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rx = h.rx[:0]
}

func (h *SerialHal) ResetTXFIFO() {}

func (h *SerialHal) SetRTS(dir dmxhal.Direction) {
	h.mu.Lock()
	ctl := h.ctl
	h.mu.Unlock()
	if ctl != nil {
		ctl.setDirection(dir)
	}
}

func (h *SerialHal) InvertTX(invert bool) {
	h.mu.Lock()
	ctl := h.ctl
	h.mu.Unlock()
	if ctl == nil {
		return
	}
	if invert {
		ctl.assertBreak()
	} else {
		ctl.clearBreak()
	}
}

func (h *SerialHal) SetBaud(baud uint32) {
	h.mu.Lock()
	ctl := h.ctl
	h.mu.Unlock()
	if ctl != nil {
		ctl.setBaud(baud)
	}
}

// The remaining thresholds are ESP32 UART FIFO tuning knobs with no
// host-serial equivalent; a generic tty has no FIFO to threshold.
func (h *SerialHal) SetRXTimeoutThreshold(symbols uint8) { _ = symbols }
func (h *SerialHal) SetRXFIFOFullThreshold(n uint8)      { _ = n }
func (h *SerialHal) SetTXFIFOEmptyThreshold(n uint8)     { _ = n }
func (h *SerialHal) RXTimeoutThreshold() uint8           { return 0 }

func (h *SerialHal) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.port == nil && h.ctl == nil {
		return errNotConfigured
	}
	h.closed = true
	if h.port != nil {
		h.port.Close()
	}
	if h.ctl != nil {
		h.ctl.close()
	}
	return nil
}
