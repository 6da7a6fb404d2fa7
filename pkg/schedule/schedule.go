// Package schedule runs delayed actions on a single logical thread.
//
// Callers describe timed work as a list of steps. A Scheduler guarantees that
// actions never run concurrently with each other and that steps fire in order
// of their due time, ties broken by submission order.
package schedule

import "time"

// Step is a single delayed action.
type Step struct {
	Delay  time.Duration
	Action func()
}

// Scheduler runs actions on one logical thread of control.
type Scheduler interface {
	// Submit schedules every step relative to the current time.
	Submit(steps ...Step)
	// Go runs work off the loop and posts the continuation it returns, if any,
	// back onto the loop.
	Go(work func() func())
}

// After is shorthand for submitting a single step.
func After(s Scheduler, delay time.Duration, action func()) {
	s.Submit(Step{Delay: delay, Action: action})
}

type entry struct {
	due    time.Duration
	seq    uint64
	action func()
}

func less(a, b entry) bool {
	if a.due != b.due {
		return a.due < b.due
	}
	return a.seq < b.seq
}
