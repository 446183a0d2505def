package bus

import "errors"

// Operation outcomes. Try-variants surface ErrWouldBlock directly; blocking
// variants consume it in their retry loop and only ever return ErrNoChannel
// or success.
var (
	// ErrNoChannel means the descriptor does not resolve to an open channel.
	ErrNoChannel = errors.New("bus: no such channel")
	// ErrWouldBlock means the operation cannot complete without suspending.
	ErrWouldBlock = errors.New("bus: operation would block")
	// ErrNotImplemented marks an unexpected internal error kind; it is never
	// retried.
	ErrNotImplemented = errors.New("bus: not implemented")
)

// setErr records err in the last-error cell and returns it unchanged.
// Successful operations record nil. The cell is safe without locking
// because all callers are fibers on one logical thread.
func (b *Bus) setErr(err error) error {
	b.lastErr = err
	return err
}

// LastError returns the outcome of the most recent operation on this bus,
// nil if it succeeded. It is never reset automatically.
func (b *Bus) LastError() error {
	return b.lastErr
}
