// Package softtimer implements hal.Timer without real hardware. Each DMX
// port only ever has one outstanding break/MAB/watchdog timer in flight, so
// unlike the teacher firmware's core/scheduler.go (a sorted list serving
// many concurrent stepper timers), a single generation-guarded
// time.AfterFunc per instance is enough; re-arming bumps the generation so
// a stale firing is a no-op instead of misfiring against new state.
package softtimer

import (
	"sync"
	"time"
)

// Timer is a single hal.Timer instance. Each DMX port owns one.
type Timer struct {
	mu         sync.Mutex
	wake       time.Time
	cb         func()
	generation uint64
	timer      *time.Timer
}

func New() *Timer {
	return &Timer{}
}

// Arm schedules cb to run once after d. Matches hal.Timer.
func (t *Timer) Arm(d time.Duration, cb func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.generation++
	gen := t.generation
	t.wake = time.Now().Add(d)
	t.cb = cb

	t.timer = time.AfterFunc(d, func() {
		t.fire(gen)
	})
}

// Pause cancels any pending firing.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}
	cb := t.cb
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}
