// Package monitor logs periodic bus occupancy snapshots while a scenario
// runs.
//
// The bus itself is single-logical-thread property of the scheduler, so the
// cron job never touches it directly: fibers publish snapshots through
// Publish and the scheduled job logs the most recent one.
package monitor

import (
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/fiberbus/fiberbus/internal/bus"
)

// Service periodically logs the latest published bus snapshot.
type Service struct {
	cron   *cron.Cron
	latest atomic.Pointer[bus.Stats]
}

// New creates a monitor that logs on the given cron schedule (six-field
// expressions, seconds first).
func New(schedule string) (*Service, error) {
	s := &Service{cron: cron.New(cron.WithSeconds())}
	if _, err := s.cron.AddFunc(schedule, s.report); err != nil {
		return nil, err
	}
	return s, nil
}

// Publish records a snapshot for the next scheduled report. Safe to call
// from the scheduler thread while the cron goroutine reads.
func (s *Service) Publish(st bus.Stats) {
	s.latest.Store(&st)
}

// Start begins scheduled reporting.
func (s *Service) Start() {
	s.cron.Start()
}

// Stop halts scheduled reporting and logs one final snapshot.
func (s *Service) Stop() {
	s.cron.Stop()
	s.report()
}

func (s *Service) report() {
	st := s.latest.Load()
	if st == nil {
		return
	}
	slog.Info("bus stats",
		"channels", st.OpenChannels,
		"queued", st.QueuedMessages,
		"blocked_senders", st.BlockedSenders,
		"blocked_receivers", st.BlockedReceivers,
		"blocked_broadcasters", st.BlockedBroadcasters,
	)
}
