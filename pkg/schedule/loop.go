package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/cbodonnell/reels/pkg/queue"
)

const (
	// DefaultTick is the resolution of the timing wheel backing a Loop.
	DefaultTick = time.Millisecond
	// DefaultWheelSize is the number of buckets of the first wheel level.
	DefaultWheelSize = 64
)

// Loop is a real-time Scheduler. Timers fire on a timing wheel and only
// enqueue their action; actions run when the owner calls RunPending, which
// in the client happens once per frame.
type Loop struct {
	wheel   *timingwheel.TimingWheel
	mailbox queue.Queue[entry]
	wake    chan struct{}
	epoch   time.Time

	seqMu sync.Mutex
	seq   uint64
}

var _ Scheduler = &Loop{}

// NewLoop creates a loop and starts its timing wheel.
func NewLoop() *Loop {
	l := &Loop{
		wheel:   timingwheel.NewTimingWheel(DefaultTick, DefaultWheelSize),
		mailbox: queue.NewInMemoryQueue[entry](),
		wake:    make(chan struct{}, 1),
		epoch:   time.Now(),
	}
	l.wheel.Start()
	return l
}

// Stop stops the timing wheel. Timers that have not fired are dropped.
func (l *Loop) Stop() {
	l.wheel.Stop()
}

func (l *Loop) nextSeq() uint64 {
	l.seqMu.Lock()
	defer l.seqMu.Unlock()
	l.seq++
	return l.seq
}

func (l *Loop) post(e entry) {
	l.mailbox.Enqueue(e)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Submit schedules the steps. Steps without a delay are posted immediately.
func (l *Loop) Submit(steps ...Step) {
	now := time.Since(l.epoch)
	for _, step := range steps {
		e := entry{
			due:    now + step.Delay,
			seq:    l.nextSeq(),
			action: step.Action,
		}
		if step.Delay <= 0 {
			l.post(e)
			continue
		}
		l.wheel.AfterFunc(step.Delay, func() {
			l.post(e)
		})
	}
}

// Go runs work on a new goroutine and posts its continuation to the loop.
func (l *Loop) Go(work func() func()) {
	go func() {
		next := work()
		if next == nil {
			return
		}
		l.post(entry{
			due:    time.Since(l.epoch),
			seq:    l.nextSeq(),
			action: next,
		})
	}()
}

// Wake returns a channel that receives a value whenever an action is posted.
// Headless owners can block on it instead of polling.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// RunPending runs every posted action on the calling goroutine and returns
// how many ran. Actions posted by a running action wait for the next call.
func (l *Loop) RunPending() int {
	entries := l.mailbox.ReadAll()
	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
	for _, e := range entries {
		e.action()
	}
	return len(entries)
}
