package dmx

import (
	"sync"
	"time"

	"dmxlink/hal"
)

// fakeUartHal is an in-memory stand-in for a real UART peripheral,
// letting tests drive the framer without hardware. It plays the same
// role core/gpio_test.go's MockGPIODriver plays for GPIO tests.
type fakeUartHal struct {
	mu sync.Mutex

	cfg hal.UartConfig

	enabled hal.InterruptMask
	pending hal.InterruptMask

	rxFIFO []byte
	txSent []byte

	rts        hal.Direction
	inverted   bool
	rxTimeout  uint8
	rxFullThr  uint8
	txEmptyThr uint8
}

func newFakeUartHal() *fakeUartHal { return &fakeUartHal{} }

func (f *fakeUartHal) Configure(cfg hal.UartConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	return nil
}

func (f *fakeUartHal) InterruptStatus() hal.InterruptMask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending & f.enabled
}

func (f *fakeUartHal) EnableInterrupt(mask hal.InterruptMask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled |= mask
}

func (f *fakeUartHal) DisableInterrupt(mask hal.InterruptMask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled &^= mask
}

func (f *fakeUartHal) ClearInterrupt(mask hal.InterruptMask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending &^= mask
}

func (f *fakeUartHal) ReadRXFIFO(buf []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := copy(buf, f.rxFIFO)
	f.rxFIFO = f.rxFIFO[n:]
	return n
}

func (f *fakeUartHal) WriteTXFIFO(buf []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txSent = append(f.txSent, buf...)
	return len(buf)
}

func (f *fakeUartHal) ResetRXFIFO() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rxFIFO = nil
}

func (f *fakeUartHal) ResetTXFIFO() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txSent = nil
}

func (f *fakeUartHal) SetRTS(dir hal.Direction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rts = dir
}

func (f *fakeUartHal) InvertTX(invert bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inverted = invert
}

func (f *fakeUartHal) SetBaud(baud uint32) {}

func (f *fakeUartHal) SetRXTimeoutThreshold(symbols uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rxTimeout = symbols
}

func (f *fakeUartHal) SetRXFIFOFullThreshold(n uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rxFullThr = n
}

func (f *fakeUartHal) SetTXFIFOEmptyThreshold(n uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txEmptyThr = n
}

func (f *fakeUartHal) RXTimeoutThreshold() uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rxTimeout
}

// injectBreak simulates a break condition arriving on the wire.
func (f *fakeUartHal) injectBreak() {
	f.mu.Lock()
	f.pending |= hal.IntrRXBreak
	f.mu.Unlock()
}

// injectData appends bytes to the RX FIFO and raises the data-ready
// interrupt, simulating bytes having landed on the wire.
func (f *fakeUartHal) injectData(data []byte) {
	f.mu.Lock()
	f.rxFIFO = append(f.rxFIFO, data...)
	f.pending |= hal.IntrRXData
	f.mu.Unlock()
}

func (f *fakeUartHal) sentBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.txSent))
	copy(out, f.txSent)
	return out
}

// fakeTimer is a manually-fired stand-in for hal.Timer: Arm records the
// callback instead of scheduling it against the wall clock, and tests
// invoke Fire when they want the simulated alarm to expire.
type fakeTimer struct {
	mu       sync.Mutex
	cb       func()
	gen      int
	armedGen int
}

func newFakeTimer() *fakeTimer { return &fakeTimer{} }

func (f *fakeTimer) Arm(d time.Duration, cb func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.cb = cb
	f.armedGen = f.gen
}

func (f *fakeTimer) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cb = nil
}

// Fire invokes the most recently armed callback, if any.
func (f *fakeTimer) Fire() {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}
