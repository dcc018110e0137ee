//go:build rp2040

package main

import (
	"sync/atomic"

	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildBreakProgram assembles a two-instruction PIO program that pulls
// a 1-bit command from the FIFO and drives the break pin to match it,
// giving break/MAB transitions sub-microsecond jitter instead of
// racing a software timer ISR against the main loop — the same
// rp2pio.AssemblerV0 idiom targets/pio/stepper_pio.go uses for step
// pulse timing, repurposed here for DMX512's break condition.
func buildBreakProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestPins, 1).Encode(), // 1: out pins, 1
	}
}

const breakPIOOrigin = 0

// breakGenerator drives pin low for a break condition and high to
// release it, via a dedicated PIO state machine so the timing is
// exact regardless of what the main loop is doing.
type breakGenerator struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
	edge   atomic.Bool
}

func newBreakGenerator(pioNum, smNum uint8, pin machine.Pin) (*breakGenerator, error) {
	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}
	sm := pioHW.StateMachine(smNum)
	sm.TryClaim()

	program := buildBreakProgram()
	offset, err := pioHW.AddProgram(program, breakPIOOrigin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, true)
	sm.SetPinsConsecutive(pin, 1, true) // idle high
	sm.SetEnabled(true)

	return &breakGenerator{pio: pioHW, sm: sm, pin: pin, offset: offset}, nil
}

// assert drives the break pin low.
func (b *breakGenerator) assert() {
	for b.sm.IsTxFIFOFull() {
	}
	b.sm.TxPut(0)
	b.edge.Store(true)
}

// deassert releases the break pin back high.
func (b *breakGenerator) deassert() {
	for b.sm.IsTxFIFOFull() {
	}
	b.sm.TxPut(1)
}

// consumeEdge reports and clears whether a break transition happened
// since the last call.
func (b *breakGenerator) consumeEdge() bool {
	return b.edge.Swap(false)
}
