package bus

import (
	"github.com/gammazero/deque"

	"github.com/fiberbus/fiberbus/internal/sched"
)

// channel is one bounded FIFO slot in the bus registry. Capacity is fixed
// at creation; len(messages) <= capacity holds between any two suspension
// points. Capacity 0 is legal and permanently blocking: the channel never
// has space, so no send or receive on it can ever complete.
type channel struct {
	capacity  int
	messages  deque.Deque[uint32]
	senders   waitQueue
	receivers waitQueue
}

func newChannel(s *sched.Scheduler, capacity int) *channel {
	return &channel{
		capacity:  capacity,
		senders:   waitQueue{sched: s},
		receivers: waitQueue{sched: s},
	}
}

func (c *channel) hasSpace() bool {
	return c.messages.Len() < c.capacity
}

// push appends v and wakes one receiver. Caller must have checked hasSpace.
func (c *channel) push(v uint32) {
	c.messages.PushBack(v)
	c.receivers.wakeOne()
}

// pop removes the front message and wakes one sender. If no sender was
// waiting, it wakes one broadcaster instead: freed capacity with no direct
// sender queued is the signal that a pending broadcast may now fit.
// Caller must have checked the queue is non-empty.
func (c *channel) pop(broadcasters *waitQueue) uint32 {
	v := c.messages.PopFront()
	if !c.senders.wakeOne() {
		broadcasters.wakeOne()
	}
	return v
}
