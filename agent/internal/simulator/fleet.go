package simulator

import (
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/ecolab/ecolab/agent/internal/config"
	"github.com/ecolab/ecolab/pkg/labrpc"
)

// Fleet is the set of meters the agent drives. It is safe for concurrent use.
type Fleet struct {
	mu     sync.Mutex
	meters []*Meter
}

// NewFleet builds one meter per entry of cfgs.
func NewFleet(cfgs []config.Meter) *Fleet {
	f := &Fleet{}
	f.Update(cfgs)
	return f
}

// Update replaces the meter set. Meters whose config is unchanged keep their
// walk state; new or changed ones restart from their baseline.
func (f *Fleet) Update(cfgs []config.Meter) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing := make(map[string]*Meter, len(f.meters))
	for _, m := range f.meters {
		existing[m.cfg.SessionID] = m
	}

	next := make([]*Meter, 0, len(cfgs))
	for _, c := range cfgs {
		if m, ok := existing[c.SessionID]; ok && reflect.DeepEqual(m.cfg, c) {
			next = append(next, m)
			continue
		}
		next = append(next, NewMeter(c))
		slog.Info("simulator: meter started", "meter", c.ID, "session", c.SessionID, "lab", c.Lab)
	}
	f.meters = next
}

// Len returns the number of meters.
func (f *Fleet) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.meters)
}

// Tick advances every meter one step, in config order.
func (f *Fleet) Tick(now time.Time) []*labrpc.ReadingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*labrpc.ReadingRequest, 0, len(f.meters))
	for _, m := range f.meters {
		out = append(out, m.Next(now))
	}
	return out
}
