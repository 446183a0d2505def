// Package bus is a bounded multi-channel message bus for cooperatively
// scheduled fibers.
//
// Channels are addressed by integer descriptors into a slot registry;
// closed slots are reused before the registry grows. Blocking operations
// never cache a channel across a suspension point: after every wakeup they
// re-resolve the descriptor, so a channel closed while they slept is
// observed as ErrNoChannel instead of freed memory.
package bus

import (
	"errors"

	"github.com/fiberbus/fiberbus/internal/sched"
)

// Descriptor identifies an open channel within a Bus. It is stable until
// that channel is closed, after which it may be reused.
type Descriptor int

// Bus owns the channel registry and the bus-wide broadcaster wait queue.
// It must only be used by fibers of the scheduler it was created with.
type Bus struct {
	sched        *sched.Scheduler
	slots        []*channel
	broadcasters waitQueue
	lastErr      error
}

// New creates an empty bus bound to s.
func New(s *sched.Scheduler) *Bus {
	return &Bus{
		sched:        s,
		broadcasters: waitQueue{sched: s},
	}
}

// lookup resolves a descriptor, nil if it does not name an open channel.
func (b *Bus) lookup(d Descriptor) *channel {
	if d < 0 || int(d) >= len(b.slots) {
		return nil
	}
	return b.slots[d]
}

// Open allocates a channel with the given capacity and returns its
// descriptor. It never fails. A slot freed by an earlier close is reused
// before the registry grows; when several are free, the highest-index one
// wins (the scan keeps the last free slot it sees).
func (b *Bus) Open(capacity int) Descriptor {
	d := -1
	for i, c := range b.slots {
		if c == nil {
			d = i
		}
	}
	if d == -1 {
		b.slots = append(b.slots, nil)
		d = len(b.slots) - 1
	}

	b.slots[d] = newChannel(b.sched, capacity)
	b.setErr(nil)
	return Descriptor(d)
}

// CloseChannel closes the channel at d; invalid descriptors are a no-op.
//
// The ordering here is load-bearing: first every blocked sender and
// receiver is marked runnable, then the slot is cleared, then the closer
// yields once. By the time a woken fiber runs, the descriptor resolves to
// nothing and its retry loop fails cleanly with ErrNoChannel; it never
// touches the freed channel.
func (b *Bus) CloseChannel(d Descriptor) {
	c := b.lookup(d)
	if c == nil {
		return
	}

	c.senders.wakeAll()
	c.receivers.wakeAll()
	b.slots[d] = nil
	b.sched.Yield()
}

// Close tears the bus down, closing every still-open channel first.
func (b *Bus) Close() {
	for i := range b.slots {
		if b.slots[i] != nil {
			b.CloseChannel(Descriptor(i))
		}
	}
	b.slots = nil
}

// TrySend appends v to the channel at d without blocking. It fails with
// ErrNoChannel or ErrWouldBlock; on success it wakes one blocked receiver.
func (b *Bus) TrySend(d Descriptor, v uint32) error {
	c := b.lookup(d)
	if c == nil {
		return b.setErr(ErrNoChannel)
	}
	if !c.hasSpace() {
		return b.setErr(ErrWouldBlock)
	}

	c.push(v)
	b.setErr(nil)
	return nil
}

// Send appends v to the channel at d, suspending until there is space.
// It returns ErrNoChannel if the channel is not open, or is closed while
// the sender is suspended.
func (b *Bus) Send(d Descriptor, v uint32) error {
	for {
		err := b.TrySend(d, v)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrNoChannel):
			return err
		case errors.Is(err, ErrWouldBlock):
			// Re-resolve: nothing may be cached across the suspension.
			b.lookup(d).senders.parkCurrent()
		default:
			return b.setErr(ErrNotImplemented)
		}
	}
}

// TryRecv removes and returns the front message of the channel at d without
// blocking. On success it wakes one blocked sender, or one broadcaster when
// no sender was waiting.
func (b *Bus) TryRecv(d Descriptor) (uint32, error) {
	c := b.lookup(d)
	if c == nil {
		return 0, b.setErr(ErrNoChannel)
	}
	if c.messages.Len() == 0 {
		return 0, b.setErr(ErrWouldBlock)
	}

	v := c.pop(&b.broadcasters)
	b.setErr(nil)
	return v, nil
}

// Recv removes and returns the front message of the channel at d,
// suspending until one is available. It returns ErrNoChannel if the channel
// is not open, or is closed while the receiver is suspended.
func (b *Bus) Recv(d Descriptor) (uint32, error) {
	for {
		v, err := b.TryRecv(d)
		switch {
		case err == nil:
			return v, nil
		case errors.Is(err, ErrNoChannel):
			return 0, err
		case errors.Is(err, ErrWouldBlock):
			b.lookup(d).receivers.parkCurrent()
		default:
			return 0, b.setErr(ErrNotImplemented)
		}
	}
}

// Stats is a point-in-time snapshot of bus occupancy.
type Stats struct {
	OpenChannels        int
	QueuedMessages      int
	BlockedSenders      int
	BlockedReceivers    int
	BlockedBroadcasters int
}

// Stats reports current occupancy across all open channels.
func (b *Bus) Stats() Stats {
	st := Stats{BlockedBroadcasters: b.broadcasters.len()}
	for _, c := range b.slots {
		if c == nil {
			continue
		}
		st.OpenChannels++
		st.QueuedMessages += c.messages.Len()
		st.BlockedSenders += c.senders.len()
		st.BlockedReceivers += c.receivers.len()
	}
	return st
}
