// Package sched is a cooperative fiber scheduler for a single logical thread.
//
// Each fiber is backed by a goroutine, but control is handed off
// synchronously between the run loop and exactly one fiber at a time, so
// shared state touched only between suspension points never needs locking.
// Fibers give up control only through Suspend and Yield; Wake marks a fiber
// runnable without switching to it.
package sched

import (
	"fmt"

	"github.com/gammazero/deque"
)

type fiberState uint8

const (
	stateRunnable fiberState = iota
	stateRunning
	stateSuspended
	stateDone
)

// Fiber is one cooperatively scheduled unit of execution.
type Fiber struct {
	name   string
	fn     func()
	resume chan struct{}
	state  fiberState
}

// Name returns the fiber's registration name.
func (f *Fiber) Name() string { return f.name }

// Scheduler owns a run queue of fibers and drives them one at a time.
// It must be used from a single goroutine; fibers themselves run one at a
// time by construction.
type Scheduler struct {
	runq    deque.Deque[*Fiber]
	parked  chan struct{} // fiber → run loop handoff
	current *Fiber
	live    int // fibers spawned and not yet finished
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{parked: make(chan struct{})}
}

// Go registers fn as a new fiber. The fiber does not start running until
// the run loop reaches it.
func (s *Scheduler) Go(name string, fn func()) *Fiber {
	f := &Fiber{name: name, fn: fn, resume: make(chan struct{})}
	s.runq.PushBack(f)
	s.live++

	go func() {
		<-f.resume
		f.fn()
		f.state = stateDone
		s.live--
		s.parked <- struct{}{}
	}()

	return f
}

// Run drives fibers until all have finished. It returns an error if fibers
// remain suspended with nothing runnable, which in a cooperative system is
// a deadlock rather than a condition worth waiting out.
func (s *Scheduler) Run() error {
	for s.live > 0 {
		if s.runq.Len() == 0 {
			return fmt.Errorf("sched: deadlock, %d fiber(s) suspended with empty run queue", s.live)
		}

		f := s.runq.PopFront()
		f.state = stateRunning
		s.current = f
		f.resume <- struct{}{}
		<-s.parked
		s.current = nil
	}
	return nil
}

// Current returns the fiber that is executing right now, or nil when called
// from outside the run loop.
func (s *Scheduler) Current() *Fiber {
	return s.current
}

// Suspend parks the calling fiber until some other fiber calls Wake on it.
// Must be called from inside a fiber.
func (s *Scheduler) Suspend() {
	f := s.current
	if f == nil {
		panic("sched: Suspend called outside a fiber")
	}
	f.state = stateSuspended
	s.parked <- struct{}{}
	<-f.resume
}

// Wake marks a suspended fiber runnable. It does not transfer control; the
// fiber runs when the run loop reaches it. Waking a fiber that is not
// suspended is a no-op.
func (s *Scheduler) Wake(f *Fiber) {
	if f.state != stateSuspended {
		return
	}
	f.state = stateRunnable
	s.runq.PushBack(f)
}

// Yield requeues the calling fiber behind every already-runnable fiber and
// lets them run first. Outside a fiber it is a no-op.
func (s *Scheduler) Yield() {
	f := s.current
	if f == nil {
		return
	}
	f.state = stateRunnable
	s.runq.PushBack(f)
	s.parked <- struct{}{}
	<-f.resume
}

// Runnable reports how many fibers are currently queued to run.
func (s *Scheduler) Runnable() int {
	return s.runq.Len()
}

// Live reports how many fibers have been spawned and not yet finished.
func (s *Scheduler) Live() int {
	return s.live
}
