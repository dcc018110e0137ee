//go:build !tinygo

package dmx

import "sync"

// criticalState carries the spinlock a host-mode critical section acquired
// so exitCritical can release the right one. On real hardware there is no
// analogous handle (see critical_tinygo.go) since interrupts are global.
type criticalState = *sync.Mutex

// enterCritical acquires the driver-wide spinlock standing in for
// disabling interrupts on hardware. Host builds have no ISR, so the
// simulated framer goroutine and task-context callers serialize through
// this instead.
func enterCritical() criticalState {
	criticalMu.Lock()
	return &criticalMu
}

func exitCritical(s criticalState) {
	s.Unlock()
}

var criticalMu sync.Mutex
