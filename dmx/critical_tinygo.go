//go:build tinygo

package dmx

import "runtime/interrupt"

// criticalState is the saved interrupt state returned by enterCritical.
type criticalState = interrupt.State

// enterCritical disables interrupts for the shortest possible window while
// the framer or a task mutates fields shared with ISR context (is_busy,
// is_in_break, break/MAB lengths, interrupt masks). No allocation or
// external call may happen while held.
func enterCritical() criticalState {
	return interrupt.Disable()
}

func exitCritical(s criticalState) {
	interrupt.Restore(s)
}
