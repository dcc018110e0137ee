package hal

import "time"

// Timer is a one-shot hardware (or simulated) timer used to drive the
// break/MAB/watchdog state machines. Arm and Pause may be called from ISR
// context; the cb passed to Arm is invoked by the implementation, also
// from ISR/interrupt context, and must be treated the same way.
type Timer interface {
	// Arm schedules cb to run once, approximately d from now. Arming an
	// already-armed timer reschedules it.
	Arm(d time.Duration, cb func())
	// Pause cancels any pending firing without running cb.
	Pause()
}
