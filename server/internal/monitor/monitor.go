package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ecolab/ecolab/server/internal/store"
)

// Sampler is the part of the lab service the monitor drives.
type Sampler interface {
	MonitoredSessions() []string
	Sample(id string, at time.Time) error
}

// Monitor samples monitored sessions on a ticker.
type Monitor struct {
	src      Sampler
	interval time.Duration
}

// New returns a Monitor that samples src every interval.
// An interval <= 0 falls back to 2 seconds.
func New(src Sampler, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{src: src, interval: interval}
}

// Run ticks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			m.Tick(now)
		}
	}
}

// Tick samples every monitored session once, stamping readings with now.
// It returns the number of sessions sampled.
func (m *Monitor) Tick(now time.Time) int {
	n := 0
	for _, id := range m.src.MonitoredSessions() {
		err := m.src.Sample(id, now)
		switch {
		case err == nil:
			n++
		case errors.Is(err, store.ErrNotFound):
			// Evicted between listing and sampling.
		default:
			slog.Warn("monitor: sample failed", "session", id, "err", err)
		}
	}
	return n
}
