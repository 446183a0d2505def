package scenario

import (
	"errors"
	"log/slog"

	"github.com/fiberbus/fiberbus/internal/bus"
	"github.com/fiberbus/fiberbus/internal/sched"
)

// Report totals what a scenario run actually moved.
type Report struct {
	Sent        int // messages delivered by producers, batch elements included
	Received    int // messages consumed, batch elements included
	Broadcasts  int // successful broadcast operations (one per value, not per channel)
	Interrupted int // fibers cut short by a channel closing under them
	Leftover    int // messages still queued when the run ended
}

// Observer receives a bus snapshot whenever a scripted fiber finishes.
type Observer func(bus.Stats)

// Runner executes one scenario on a scheduler/bus pair.
type Runner struct {
	sched      *sched.Scheduler
	bus        *bus.Bus
	scn        *Scenario
	defaultCap int
	observe    Observer
}

// NewRunner builds a runner. defaultCap is used for channels whose spec
// omits a capacity; observe may be nil.
func NewRunner(s *sched.Scheduler, b *bus.Bus, scn *Scenario, defaultCap int, observe Observer) *Runner {
	return &Runner{sched: s, bus: b, scn: scn, defaultCap: defaultCap, observe: observe}
}

// Run opens the scripted channels, spawns the cast, and drives the
// scheduler to completion. A deadlocked script (e.g. more consumes than
// sends) surfaces as the scheduler's deadlock error alongside the partial
// report.
func (r *Runner) Run() (*Report, error) {
	descs := make(map[string]bus.Descriptor, len(r.scn.Channels))
	for _, cs := range r.scn.Channels {
		capacity := r.defaultCap
		if cs.Capacity != nil {
			capacity = *cs.Capacity
		}
		descs[cs.Name] = r.bus.Open(capacity)
	}

	rep := &Report{}
	for _, fs := range r.scn.Fibers {
		fs := fs
		r.sched.Go(fs.Name, func() {
			r.runFiber(fs, descs[fs.Channel], rep)
			if r.observe != nil {
				r.observe(r.bus.Stats())
			}
		})
	}

	err := r.sched.Run()
	rep.Leftover = r.bus.Stats().QueuedMessages
	return rep, err
}

func (r *Runner) runFiber(fs FiberSpec, d bus.Descriptor, rep *Report) {
	switch fs.Role {
	case RoleProduce:
		r.produce(fs, d, rep)
	case RoleConsume:
		r.consume(fs, d, rep)
	case RoleBroadcast:
		r.broadcast(fs, rep)
	case RoleClose:
		for i := 0; i < fs.Count; i++ {
			r.sched.Yield()
		}
		r.bus.CloseChannel(d)
	}
}

func (r *Runner) produce(fs FiberSpec, d bus.Descriptor, rep *Report) {
	if fs.Batch > 0 {
		values := make([]uint32, fs.Count)
		for i := range values {
			values[i] = fs.Start + uint32(i)
		}
		for len(values) > 0 {
			chunk := values
			if len(chunk) > fs.Batch {
				chunk = chunk[:fs.Batch]
			}
			n, err := r.bus.SendMany(d, chunk)
			if err != nil {
				r.interrupted(fs, err, rep)
				return
			}
			rep.Sent += n
			values = values[n:]
		}
		return
	}

	for i := 0; i < fs.Count; i++ {
		if err := r.bus.Send(d, fs.Start+uint32(i)); err != nil {
			r.interrupted(fs, err, rep)
			return
		}
		rep.Sent++
	}
}

func (r *Runner) consume(fs FiberSpec, d bus.Descriptor, rep *Report) {
	remaining := fs.Count
	for remaining > 0 {
		if fs.Batch > 0 {
			want := fs.Batch
			if remaining < want {
				want = remaining
			}
			out, err := r.bus.RecvMany(d, want)
			if err != nil {
				r.interrupted(fs, err, rep)
				return
			}
			rep.Received += len(out)
			remaining -= len(out)
			continue
		}

		if _, err := r.bus.Recv(d); err != nil {
			r.interrupted(fs, err, rep)
			return
		}
		rep.Received++
		remaining--
	}
}

func (r *Runner) broadcast(fs FiberSpec, rep *Report) {
	for i := 0; i < fs.Count; i++ {
		if err := r.bus.Broadcast(fs.Start + uint32(i)); err != nil {
			r.interrupted(fs, err, rep)
			return
		}
		rep.Broadcasts++
	}
}

// interrupted records a fiber cut short by a close. Anything other than
// ErrNoChannel is a script bug worth hearing about.
func (r *Runner) interrupted(fs FiberSpec, err error, rep *Report) {
	rep.Interrupted++
	if !errors.Is(err, bus.ErrNoChannel) {
		slog.Error("scenario: fiber failed", "fiber", fs.Name, "role", fs.Role, "error", err)
		return
	}
	slog.Debug("scenario: fiber interrupted by close", "fiber", fs.Name, "role", fs.Role)
}
