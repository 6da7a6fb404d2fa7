package schedule

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing runs until the
// owner calls Advance, which makes timing-dependent code deterministic in tests.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []entry
}

var _ Scheduler = &Manual{}

func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of steps that have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manual) Submit(steps ...Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, step := range steps {
		delay := step.Delay
		if delay < 0 {
			delay = 0
		}
		m.seq++
		m.pending = append(m.pending, entry{
			due:    m.now + delay,
			seq:    m.seq,
			action: step.Action,
		})
	}
}

// Go runs work synchronously and schedules its continuation at the current
// virtual time.
func (m *Manual) Go(work func() func()) {
	if next := work(); next != nil {
		m.Submit(Step{Action: next})
	}
}

// Advance moves the clock forward by d, firing every step that becomes due
// in order. Steps submitted by a firing action are eligible in the same call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		e, ok := m.popDue(target)
		if !ok {
			break
		}
		e.action()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Flush fires every step due at the current virtual time.
func (m *Manual) Flush() {
	m.Advance(0)
}

func (m *Manual) popDue(target time.Duration) (entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, e := range m.pending {
		if e.due > target {
			continue
		}
		if idx < 0 || less(e, m.pending[idx]) {
			idx = i
		}
	}
	if idx < 0 {
		return entry{}, false
	}
	e := m.pending[idx]
	m.pending = append(m.pending[:idx], m.pending[idx+1:]...)
	if e.due > m.now {
		m.now = e.due
	}
	return e, true
}
