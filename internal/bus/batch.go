package bus

import "errors"

// TrySendMany appends as many of values as fit into remaining capacity and
// returns the count written. Each element performs the normal single-push
// wakeup; waking receivers one message at a time is intentional so chained
// waiters release each other as capacity moves. A partial write is a
// success. It fails with ErrWouldBlock only when zero elements fit.
func (b *Bus) TrySendMany(d Descriptor, values []uint32) (int, error) {
	c := b.lookup(d)
	if c == nil {
		return 0, b.setErr(ErrNoChannel)
	}

	n := 0
	for n < len(values) && c.hasSpace() {
		c.push(values[n])
		n++
	}
	if n == 0 {
		return 0, b.setErr(ErrWouldBlock)
	}

	b.setErr(nil)
	return n, nil
}

// SendMany appends a prefix of values, suspending until at least one
// element can be written, and returns the count written. Callers needing
// all-or-nothing must check the count and resubmit the tail.
func (b *Bus) SendMany(d Descriptor, values []uint32) (int, error) {
	for {
		n, err := b.TrySendMany(d, values)
		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, ErrNoChannel):
			return 0, err
		case errors.Is(err, ErrWouldBlock):
			b.lookup(d).senders.parkCurrent()
		default:
			return 0, b.setErr(ErrNotImplemented)
		}
	}
}

// TryRecvMany removes up to max messages and returns them in FIFO order.
// Each element performs the normal post-pop wakeup, including the
// broadcaster check. It fails with ErrWouldBlock only when zero messages
// were available.
func (b *Bus) TryRecvMany(d Descriptor, max int) ([]uint32, error) {
	c := b.lookup(d)
	if c == nil {
		return nil, b.setErr(ErrNoChannel)
	}

	var out []uint32
	for len(out) < max && c.messages.Len() > 0 {
		out = append(out, c.pop(&b.broadcasters))
	}
	if len(out) == 0 {
		return nil, b.setErr(ErrWouldBlock)
	}

	b.setErr(nil)
	return out, nil
}

// RecvMany removes up to max messages, suspending until at least one is
// available.
func (b *Bus) RecvMany(d Descriptor, max int) ([]uint32, error) {
	for {
		out, err := b.TryRecvMany(d, max)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, ErrNoChannel):
			return nil, err
		case errors.Is(err, ErrWouldBlock):
			b.lookup(d).receivers.parkCurrent()
		default:
			return nil, b.setErr(ErrNotImplemented)
		}
	}
}
