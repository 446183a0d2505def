package bus

import (
	"github.com/gammazero/deque"

	"github.com/fiberbus/fiberbus/internal/sched"
)

// waitQueue holds fibers suspended on one condition, in strict arrival
// order. A fiber is in at most one waitQueue system-wide: it enqueues
// itself immediately before suspending and is removed by the wake that
// releases it.
type waitQueue struct {
	sched *sched.Scheduler
	q     deque.Deque[*sched.Fiber]
}

// parkCurrent appends the calling fiber and suspends it. It returns only
// after an external wake.
func (w *waitQueue) parkCurrent() {
	w.q.PushBack(w.sched.Current())
	w.sched.Suspend()
}

// wakeOne wakes the head fiber and reports whether anyone was woken.
func (w *waitQueue) wakeOne() bool {
	if w.q.Len() == 0 {
		return false
	}
	w.sched.Wake(w.q.PopFront())
	return true
}

// wakeAll drains the queue, waking members in arrival order. Used only at
// channel-close time; the queue must be empty before its channel is freed.
func (w *waitQueue) wakeAll() {
	for w.q.Len() > 0 {
		w.sched.Wake(w.q.PopFront())
	}
}

func (w *waitQueue) len() int {
	return w.q.Len()
}
