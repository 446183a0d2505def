package bus

import "errors"

// TryBroadcast appends v to every open channel, all or nothing. If any open
// channel lacks space it fails with ErrWouldBlock and no channel is
// written; with zero channels open it fails with ErrNoChannel. Writes
// happen in ascending descriptor order, each performing the normal
// post-push wakeup.
func (b *Bus) TryBroadcast(v uint32) error {
	open := make([]*channel, 0, len(b.slots))
	for _, c := range b.slots {
		if c == nil {
			continue
		}
		if !c.hasSpace() {
			return b.setErr(ErrWouldBlock)
		}
		open = append(open, c)
	}
	if len(open) == 0 {
		return b.setErr(ErrNoChannel)
	}

	for _, c := range open {
		c.push(v)
	}
	b.setErr(nil)
	return nil
}

// Broadcast appends v to every open channel, suspending on the bus-wide
// broadcaster queue until all of them have space at once. The set of open
// channels is re-evaluated from scratch on every retry.
func (b *Bus) Broadcast(v uint32) error {
	for {
		err := b.TryBroadcast(v)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrNoChannel):
			return err
		case errors.Is(err, ErrWouldBlock):
			b.broadcasters.parkCurrent()
		default:
			return b.setErr(ErrNotImplemented)
		}
	}
}
