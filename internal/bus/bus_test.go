package bus

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/fiberbus/fiberbus/internal/sched"
)

// newTestBus returns a scheduler and a bus bound to it.
func newTestBus(t *testing.T) (*sched.Scheduler, *Bus) {
	t.Helper()
	s := sched.New()
	return s, New(s)
}

// mustRun drives the scheduler and fails the test on deadlock.
func mustRun(t *testing.T, s *sched.Scheduler) {
	t.Helper()
	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

// ─── Descriptors ───────────────────────────────────────────────────────────

func TestOpenGrowsFromZero(t *testing.T) {
	_, b := newTestBus(t)

	for i := 0; i < 3; i++ {
		if d := b.Open(1); d != Descriptor(i) {
			t.Fatalf("Open() #%d = %d, want %d", i, d, i)
		}
	}
}

func TestDescriptorReuseBeforeGrowth(t *testing.T) {
	_, b := newTestBus(t)

	for i := 0; i < 4; i++ {
		b.Open(1)
	}
	b.CloseChannel(1)

	if d := b.Open(1); d != 1 {
		t.Fatalf("Open() after close = %d, want reused descriptor 1", d)
	}
	if d := b.Open(1); d != 4 {
		t.Fatalf("Open() with no free slot = %d, want 4", d)
	}
}

func TestReusePrefersLastFreeSlot(t *testing.T) {
	_, b := newTestBus(t)

	for i := 0; i < 4; i++ {
		b.Open(1)
	}
	b.CloseChannel(0)
	b.CloseChannel(2)

	if d := b.Open(1); d != 2 {
		t.Fatalf("Open() = %d, want last free slot 2", d)
	}
	if d := b.Open(1); d != 0 {
		t.Fatalf("Open() = %d, want remaining free slot 0", d)
	}
}

func TestOpsOnUnknownDescriptor(t *testing.T) {
	_, b := newTestBus(t)
	b.Open(1)

	for _, d := range []Descriptor{-1, 7} {
		if err := b.TrySend(d, 1); !errors.Is(err, ErrNoChannel) {
			t.Errorf("TrySend(%d) error = %v, want ErrNoChannel", d, err)
		}
		if _, err := b.TryRecv(d); !errors.Is(err, ErrNoChannel) {
			t.Errorf("TryRecv(%d) error = %v, want ErrNoChannel", d, err)
		}
		if err := b.Send(d, 1); !errors.Is(err, ErrNoChannel) {
			t.Errorf("Send(%d) error = %v, want ErrNoChannel", d, err)
		}
		if _, err := b.Recv(d); !errors.Is(err, ErrNoChannel) {
			t.Errorf("Recv(%d) error = %v, want ErrNoChannel", d, err)
		}
	}
	if !errors.Is(b.LastError(), ErrNoChannel) {
		t.Errorf("LastError() = %v, want ErrNoChannel", b.LastError())
	}
}

// ─── Send / Recv ───────────────────────────────────────────────────────────

func TestEndToEnd(t *testing.T) {
	_, b := newTestBus(t)
	d := b.Open(2)

	if err := b.TrySend(d, 1); err != nil {
		t.Fatalf("TrySend(1) error = %v", err)
	}
	if err := b.TrySend(d, 2); err != nil {
		t.Fatalf("TrySend(2) error = %v", err)
	}
	if err := b.TrySend(d, 3); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TrySend(3) on full channel error = %v, want ErrWouldBlock", err)
	}
	if v, err := b.TryRecv(d); err != nil || v != 1 {
		t.Fatalf("TryRecv() = %d, %v, want 1, nil", v, err)
	}
	if err := b.TrySend(d, 3); err != nil {
		t.Fatalf("TrySend(3) after drain error = %v", err)
	}
	if b.LastError() != nil {
		t.Fatalf("LastError() = %v, want nil", b.LastError())
	}
}

func TestFIFOThroughBlockingPair(t *testing.T) {
	s, b := newTestBus(t)
	d := b.Open(2)

	const n = 10
	var got []uint32
	s.Go("producer", func() {
		for i := uint32(0); i < n; i++ {
			if err := b.Send(d, i); err != nil {
				t.Errorf("Send(%d) error = %v", i, err)
				return
			}
		}
	})
	s.Go("consumer", func() {
		for i := 0; i < n; i++ {
			v, err := b.Recv(d)
			if err != nil {
				t.Errorf("Recv() error = %v", err)
				return
			}
			got = append(got, v)
		}
	})

	mustRun(t, s)

	want := make([]uint32, n)
	for i := range want {
		want[i] = uint32(i)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("received %v, want %v", got, want)
	}
}

func TestCapacityInvariantUnderLoad(t *testing.T) {
	s, b := newTestBus(t)
	d := b.Open(3)
	c := b.lookup(d)

	check := func() {
		if c.messages.Len() > c.capacity {
			t.Errorf("len(messages) = %d exceeds capacity %d", c.messages.Len(), c.capacity)
		}
	}

	for p := 0; p < 3; p++ {
		s.Go(fmt.Sprintf("producer-%d", p), func() {
			for i := uint32(0); i < 20; i++ {
				if err := b.Send(d, i); err != nil {
					t.Errorf("Send() error = %v", err)
					return
				}
				check()
			}
		})
	}
	s.Go("consumer", func() {
		for i := 0; i < 60; i++ {
			if _, err := b.Recv(d); err != nil {
				t.Errorf("Recv() error = %v", err)
				return
			}
			check()
		}
	})

	mustRun(t, s)
}

func TestDominoWakeup(t *testing.T) {
	s, b := newTestBus(t)
	d := b.Open(1)

	var sent []string
	var after1, after2 []string
	s.Go("fill", func() {
		if err := b.Send(d, 0); err != nil {
			t.Errorf("fill Send() error = %v", err)
		}
	})
	for i, name := range []string{"A", "B", "C"} {
		name, v := name, uint32(i+1)
		s.Go("send-"+name, func() {
			if err := b.Send(d, v); err != nil {
				t.Errorf("send-%s error = %v", name, err)
				return
			}
			sent = append(sent, name)
		})
	}
	s.Go("drain", func() {
		for i := 0; i < 4; i++ {
			if _, err := b.Recv(d); err != nil {
				t.Errorf("Recv() #%d error = %v", i, err)
				return
			}
			s.Yield() // let exactly the sender we woke make progress
			switch i {
			case 0:
				after1 = slices.Clone(sent)
			case 1:
				after2 = slices.Clone(sent)
			}
		}
	})

	mustRun(t, s)

	if !slices.Equal(after1, []string{"A"}) {
		t.Errorf("after first receive, unblocked = %v, want [A]", after1)
	}
	if !slices.Equal(after2, []string{"A", "B"}) {
		t.Errorf("after second receive, unblocked = %v, want [A B]", after2)
	}
	if !slices.Equal(sent, []string{"A", "B", "C"}) {
		t.Errorf("final unblock order = %v, want [A B C]", sent)
	}
}

// ─── Close ─────────────────────────────────────────────────────────────────

func TestCloseWakesBlockedReceiverWithNoChannel(t *testing.T) {
	s, b := newTestBus(t)
	d := b.Open(1)

	recvErr := errors.New("never returned")
	s.Go("blocked", func() {
		_, recvErr = b.Recv(d)
	})
	s.Go("closer", func() {
		b.CloseChannel(d)
	})

	mustRun(t, s)

	if !errors.Is(recvErr, ErrNoChannel) {
		t.Fatalf("Recv() on closed channel error = %v, want ErrNoChannel", recvErr)
	}
}

func TestCloseWakesBlockedSenderWithNoChannel(t *testing.T) {
	s, b := newTestBus(t)
	d := b.Open(1)

	var sendErr error
	s.Go("blocked", func() {
		if err := b.Send(d, 1); err != nil {
			t.Errorf("first Send() error = %v", err)
			return
		}
		sendErr = b.Send(d, 2) // channel full, suspends
	})
	s.Go("closer", func() {
		b.CloseChannel(d)
	})

	mustRun(t, s)

	if !errors.Is(sendErr, ErrNoChannel) {
		t.Fatalf("Send() on closed channel error = %v, want ErrNoChannel", sendErr)
	}
}

func TestCloseInvalidDescriptorIsNoOp(t *testing.T) {
	_, b := newTestBus(t)
	b.CloseChannel(-1)
	b.CloseChannel(3)
}

func TestBusCloseClosesEveryChannel(t *testing.T) {
	s, b := newTestBus(t)
	d1 := b.Open(1)
	d2 := b.Open(1)

	errs := make([]error, 2)
	s.Go("r1", func() { _, errs[0] = b.Recv(d1) })
	s.Go("r2", func() { _, errs[1] = b.Recv(d2) })
	s.Go("teardown", func() { b.Close() })

	mustRun(t, s)

	for i, err := range errs {
		if !errors.Is(err, ErrNoChannel) {
			t.Errorf("receiver %d error = %v, want ErrNoChannel", i+1, err)
		}
	}
	if st := b.Stats(); st.OpenChannels != 0 {
		t.Errorf("Stats().OpenChannels = %d after teardown, want 0", st.OpenChannels)
	}
}

// ─── Capacity 0 ────────────────────────────────────────────────────────────

func TestZeroCapacityChannelNeverMoves(t *testing.T) {
	_, b := newTestBus(t)
	d := b.Open(0)

	if err := b.TrySend(d, 1); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TrySend() error = %v, want ErrWouldBlock", err)
	}
	if _, err := b.TryRecv(d); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TryRecv() error = %v, want ErrWouldBlock", err)
	}
}
