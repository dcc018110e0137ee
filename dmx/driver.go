package dmx

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"dmxlink/hal"
	"dmxlink/paramstore"
)

// Driver is one installed DMX/RDM port. Its exported methods are
// task-context APIs; OnInterrupt (framer.go) and the tx sequencer
// (txsequencer.go) run in interrupt/timer-callback context and must
// only touch fields while holding the critical section returned by
// enterCritical.
type Driver struct {
	// InstanceID tags this installation; the host tools put it in the
	// MQTT client ID they give the monitor bridge.
	InstanceID uuid.UUID

	uartHal hal.UartHal
	timer   hal.Timer
	Store   *paramstore.Store

	cfg Config

	// mu serializes task-context callers of Send/Receive/Uninstall; it
	// is never held across a call into interrupt-context code.
	mu        sync.Mutex
	installed bool

	buf   buffer
	txBuf buffer

	mode      hal.Direction
	isBusy    bool
	isInBreak bool

	breakLenUS uint32
	mabLenUS   uint32

	lastReceivedTS time.Time
	lastSentTS     time.Time

	// notify carries at most one pending Event to a task blocked in
	// Receive, overwritten on each new post exactly like the ISR's
	// eSetValueWithOverwrite notification.
	notify chan Event
	// dataWritten signals task context that a TX frame has left the
	// FIFO, mirroring driver->data_written in the original driver.
	dataWritten chan struct{}

	waitingTask bool

	tx *txSequencer
}

// Install brings up a Driver on top of the given HAL and timer,
// pre-allocating its parameter table and buffers. No further
// allocation happens on the hot RX/TX paths. nvs may be nil if no
// NonVolatile parameters will be registered against Store.
func Install(uartHal hal.UartHal, timer hal.Timer, nvs hal.Nvs, cfg Config) (*Driver, error) {
	if uartHal == nil || timer == nil {
		return nil, ErrInvalidArg
	}
	if cfg.BaudRate == 0 {
		cfg = DefaultConfig()
	}

	d := &Driver{
		InstanceID:  uuid.New(),
		uartHal:     uartHal,
		timer:       timer,
		Store:       paramstore.New(cfg.ParamCapacity, nvs),
		cfg:         cfg,
		mode:        hal.DirectionRX,
		breakLenUS:  cfg.BreakLenUS,
		mabLenUS:    cfg.MabLenUS,
		notify:      make(chan Event, 1),
		dataWritten: make(chan struct{}, 1),
	}
	d.tx = newTXSequencer(d)

	uartConf := hal.DefaultUartConfig()
	uartConf.BaudRate = cfg.BaudRate
	if err := d.uartHal.Configure(uartConf); err != nil {
		return nil, err
	}
	d.uartHal.SetRXTimeoutThreshold(45) // ~1 slot, matches DMX_TIMEOUT_TICK in dmx_hal.h grounding
	d.uartHal.SetRXFIFOFullThreshold(120)
	d.uartHal.SetTXFIFOEmptyThreshold(8)
	d.uartHal.ResetRXFIFO()
	d.uartHal.EnableInterrupt(hal.IntrRXAll)

	d.installed = true
	return d, nil
}

// Uninstall disables interrupts and releases the port. A Driver must
// not be used after Uninstall returns.
func (d *Driver) Uninstall() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.installed {
		return ErrNotInstalled
	}
	d.uartHal.DisableInterrupt(hal.IntrRXAll | hal.IntrTXAll)
	d.timer.Pause()
	d.installed = false
	return nil
}

// SetMode switches the port between receive and transmit. Real RS-485
// wiring needs the RTS/DE pin flipped in lockstep; hal.UartHal.SetRTS
// does that.
func (d *Driver) SetMode(mode hal.Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.installed {
		return ErrNotInstalled
	}
	state := enterCritical()
	d.mode = mode
	exitCritical(state)
	d.uartHal.SetRTS(mode)
	return nil
}

// Receive blocks for up to timeout waiting for a complete frame (DMX
// or the raw bytes of an RDM packet) and copies it into dst. It
// returns the number of bytes copied and the frame's start code.
func (d *Driver) Receive(dst []byte, timeout time.Duration) (n int, startCode byte, err error) {
	d.mu.Lock()
	if !d.installed {
		d.mu.Unlock()
		return 0, 0, ErrNotInstalled
	}
	state := enterCritical()
	d.waitingTask = true
	// Drain any stale event left over from a previous call so the
	// upcoming wait only ever sees a fresh notification.
	select {
	case <-d.notify:
	default:
	}
	exitCritical(state)
	d.mu.Unlock()

	var ev Event
	select {
	case ev = <-d.notify:
	case <-time.After(timeout):
		state := enterCritical()
		d.waitingTask = false
		exitCritical(state)
		return 0, 0, ErrTimeout
	}

	state = enterCritical()
	d.waitingTask = false
	if ev.Status == OK {
		n = copy(dst, d.buf.data[:ev.Size])
		startCode = ev.StartCode
	}
	exitCritical(state)

	if ev.Status != OK {
		return 0, 0, ev.Status
	}
	return n, startCode, nil
}

// Send transmits data (start code plus slots, or a raw RDM frame) and
// returns once the frame has been handed to the framing/break state
// machine. It does not wait for on-wire completion; call WaitSent for
// that.
func (d *Driver) Send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.installed {
		return ErrNotInstalled
	}
	if len(data) == 0 || len(data) > SlotCount {
		return ErrInvalidArg
	}

	state := enterCritical()
	d.txBuf.reset()
	copy(d.txBuf.data[:], data)
	d.txBuf.size = len(data)
	exitCritical(state)

	select {
	case <-d.dataWritten:
	default:
	}
	return d.tx.start()
}

// WaitSent blocks until the frame most recently handed to Send has
// finished transmission, or timeout elapses.
func (d *Driver) WaitSent(timeout time.Duration) error {
	select {
	case <-d.dataWritten:
		return nil
	case <-time.After(timeout):
		return ErrTimeout
	}
}
