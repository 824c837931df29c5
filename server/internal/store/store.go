package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/history"
)

var (
	ErrNotFound = errors.New("store: session not found")
	ErrExists   = errors.New("store: session already exists")
)

// Session is a point-in-time copy of one lab session.
// Only the measurement and result matching Lab are meaningful.
type Session struct {
	ID  string
	Lab types.Lab

	Water       types.Measurement
	WaterResult quality.Result
	Air         types.AirMeasurement
	AirResult   quality.AirResult

	Monitoring bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// History holds the monitored readings for Lab, oldest first.
	History    []types.Measurement
	AirHistory []types.AirMeasurement
}

type entry struct {
	s     Session
	water *history.Buffer[types.Measurement]
	air   *history.Buffer[types.AirMeasurement]
}

func (e *entry) snapshot() Session {
	s := e.s
	s.History = e.water.Items()
	s.AirHistory = e.air.Items()
	return s
}

// Store is a thread-safe in-memory session store keyed by session ID.
// A background goroutine (Run) evicts sessions that have not been updated
// within the configured TTL. A TTL <= 0 keeps sessions forever.
type Store struct {
	mu          sync.RWMutex
	data        map[string]*entry
	ttl         time.Duration
	historySize int
	now         func() time.Time // injectable for deterministic tests
	onEvict     func(id string)
}

// New creates a Store with the given TTL and per-session history capacity.
func New(ttl time.Duration, historySize int) *Store {
	return &Store{
		data:        make(map[string]*entry),
		ttl:         ttl,
		historySize: historySize,
		now:         time.Now,
	}
}

// OnEvict registers fn to be called with the ID of every session removed by
// TTL eviction. It must be set before Run starts.
func (s *Store) OnEvict(fn func(id string)) {
	s.mu.Lock()
	s.onEvict = fn
	s.mu.Unlock()
}

// Create adds a session built from init. An empty init.ID gets a fresh UUID.
// CreatedAt and UpdatedAt are set by the store; init's history is ignored.
func (s *Store) Create(init Session) (Session, error) {
	if init.ID == "" {
		init.ID = uuid.NewString()
	}
	now := s.now()
	init.CreatedAt, init.UpdatedAt = now, now
	init.History, init.AirHistory = nil, nil

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[init.ID]; ok {
		return Session{}, ErrExists
	}
	e := &entry{
		s:     init,
		water: history.New[types.Measurement](s.historySize),
		air:   history.New[types.AirMeasurement](s.historySize),
	}
	s.data[init.ID] = e
	return e.snapshot(), nil
}

// Get returns a copy of the session and whether it was found.
// The session may be stale if TTL has elapsed.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return Session{}, false
	}
	return e.snapshot(), true
}

// List returns copies of all sessions updated within the TTL, oldest first.
func (s *Store) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]Session, 0, len(s.data))
	for _, e := range s.data {
		if s.ttl <= 0 || e.s.UpdatedAt.After(cutoff) {
			out = append(out, e.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Monitoring returns the IDs of sessions with monitoring switched on.
func (s *Store) Monitoring() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, e := range s.data {
		if e.s.Monitoring {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Update applies fn to the session under the store lock and returns the
// updated copy. fn must not retain the pointer. ID, Lab, CreatedAt and the
// history slices are not writable through fn.
func (s *Store) Update(id string, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	next := e.s
	fn(&next)
	next.ID, next.Lab, next.CreatedAt = e.s.ID, e.s.Lab, e.s.CreatedAt
	next.History, next.AirHistory = nil, nil
	next.UpdatedAt = s.now()
	e.s = next
	return e.snapshot(), nil
}

// Record appends the session's current measurement, stamped with at, to its
// history. Oldest readings drop off once the history is full.
func (s *Store) Record(id string, at time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	switch e.s.Lab {
	case types.LabAir:
		m := e.s.Air
		m.Timestamp = at
		e.air.Add(m)
	default:
		m := e.s.Water
		m.Timestamp = at
		e.water.Add(m)
	}
	e.s.UpdatedAt = s.now()
	return e.snapshot(), nil
}

// ClearHistory drops every recorded reading of the session.
func (s *Store) ClearHistory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	e.water.Reset()
	e.air.Reset()
	return nil
}

// Delete removes a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	delete(s.data, id)
	return ok
}

// Count returns the total number of sessions currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes sessions whose UpdatedAt is older than now minus TTL.
// It returns the number of sessions removed.
func (s *Store) Evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	cutoff := now.Add(-s.ttl)
	var removed []string
	for id, e := range s.data {
		if !e.s.UpdatedAt.After(cutoff) {
			delete(s.data, id)
			removed = append(removed, id)
		}
	}
	hook := s.onEvict
	s.mu.Unlock()

	if hook != nil {
		for _, id := range removed {
			hook(id)
		}
	}
	return len(removed)
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// (minimum 1 second) and blocks until ctx is cancelled. With TTL <= 0 it
// just waits for ctx.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 {
		<-ctx.Done()
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted idle sessions", "count", n)
			}
		}
	}
}
