package lab

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ecolab/ecolab/pkg/labrpc"
	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/alerts"
	"github.com/ecolab/ecolab/server/internal/metrics"
	"github.com/ecolab/ecolab/server/internal/store"
)

var (
	ErrInvalidLab         = errors.New("lab: unknown lab, want water or air")
	ErrWrongLab           = errors.New("lab: reading does not match the session's lab")
	ErrInvalidMeasurement = errors.New("lab: measurement values must be finite numbers")
	ErrMissingPayload     = errors.New("lab: reading has no measurement for its lab")
	ErrMissingSession     = errors.New("lab: session id is required")
)

// AlertEvaluator receives every graded sample and hears when a session goes
// away.
type AlertEvaluator interface {
	Evaluate(alerts.Sample) []alerts.Alert
	Forget(sessionID string)
}

// Recorder receives evaluation and reading counts.
type Recorder interface {
	ObserveWater(quality.Result)
	ObserveAir(quality.AirResult)
	Reading(transport string)
	AlertFired(rule, severity string)
}

// Service is safe for concurrent use.
type Service struct {
	store  *store.Store
	alerts AlertEvaluator
	rec    Recorder

	mu   sync.RWMutex
	eval quality.Evaluator

	now func() time.Time
}

// New wires a Service to st. al and rec may be nil. Sessions evicted by st
// have their alerts resolved.
func New(st *store.Store, locale quality.Locale, al AlertEvaluator, rec Recorder) *Service {
	s := &Service{
		store:  st,
		alerts: al,
		rec:    rec,
		eval:   quality.New(locale),
		now:    time.Now,
	}
	st.OnEvict(s.forget)
	return s
}

func (s *Service) forget(id string) {
	if s.alerts != nil {
		s.alerts.Forget(id)
	}
}

func (s *Service) evaluator() quality.Evaluator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eval
}

// Locale returns the locale labels are currently rendered in.
func (s *Service) Locale() quality.Locale {
	return s.evaluator().Locale()
}

// SetLocale switches the label language and regrades every stored session so
// their labels follow.
func (s *Service) SetLocale(l quality.Locale) {
	s.mu.Lock()
	if s.eval.Locale() == quality.New(l).Locale() {
		s.mu.Unlock()
		return
	}
	s.eval = quality.New(l)
	ev := s.eval
	s.mu.Unlock()

	for _, sess := range s.store.List() {
		s.store.Update(sess.ID, func(x *store.Session) { grade(ev, x) }) //nolint:errcheck
	}
	slog.Info("lab: locale changed", "locale", ev.Locale())
}

// grade refreshes the result for the session's lab.
func grade(ev quality.Evaluator, x *store.Session) {
	switch x.Lab {
	case types.LabAir:
		x.AirResult = ev.Air(x.Air)
	default:
		x.WaterResult = ev.Water(x.Water)
	}
}

// EvaluateWater grades m without touching any session.
func (s *Service) EvaluateWater(m types.Measurement) (quality.Result, error) {
	if !m.Finite() {
		return quality.Result{}, ErrInvalidMeasurement
	}
	return s.evaluator().Water(m), nil
}

// EvaluateAir grades m without touching any session.
func (s *Service) EvaluateAir(m types.AirMeasurement) (quality.AirResult, error) {
	if !m.Finite() {
		return quality.AirResult{}, ErrInvalidMeasurement
	}
	return s.evaluator().Air(m), nil
}

// CreateSession starts a session for lab seeded with the lab's default
// reading. An empty id gets a generated one.
func (s *Service) CreateSession(id string, lab types.Lab) (store.Session, error) {
	if !lab.Valid() {
		return store.Session{}, ErrInvalidLab
	}
	init := defaults(id, lab, s.now())
	grade(s.evaluator(), &init)

	sess, err := s.store.Create(init)
	if err != nil {
		return store.Session{}, fmt.Errorf("lab: create session: %w", err)
	}
	slog.Info("lab: session created", "session", sess.ID, "lab", lab)
	return sess, nil
}

func defaults(id string, lab types.Lab, now time.Time) store.Session {
	return store.Session{
		ID:    id,
		Lab:   lab,
		Water: types.DefaultMeasurement(now),
		Air:   types.DefaultAirMeasurement(now),
	}
}

// Get returns the session with id.
func (s *Service) Get(id string) (store.Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return store.Session{}, store.ErrNotFound
	}
	return sess, nil
}

// List returns all live sessions, oldest first.
func (s *Service) List() []store.Session {
	return s.store.List()
}

// SetWater replaces the water reading of session id, grades it and reports
// the sample. transport names where the reading came from.
func (s *Service) SetWater(id string, m types.Measurement, transport string) (store.Session, error) {
	if !m.Finite() {
		return store.Session{}, ErrInvalidMeasurement
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	return s.apply(id, types.LabWater, transport, func(x *store.Session) { x.Water = m })
}

// SetAir replaces the air reading of session id, grades it and reports the
// sample.
func (s *Service) SetAir(id string, m types.AirMeasurement, transport string) (store.Session, error) {
	if !m.Finite() {
		return store.Session{}, ErrInvalidMeasurement
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	return s.apply(id, types.LabAir, transport, func(x *store.Session) { x.Air = m })
}

func (s *Service) apply(id string, lab types.Lab, transport string, set func(*store.Session)) (store.Session, error) {
	cur, ok := s.store.Get(id)
	if !ok {
		return store.Session{}, store.ErrNotFound
	}
	if cur.Lab != lab {
		return store.Session{}, ErrWrongLab
	}

	ev := s.evaluator()
	sess, err := s.store.Update(id, func(x *store.Session) {
		set(x)
		grade(ev, x)
	})
	if err != nil {
		return store.Session{}, err
	}
	s.report(sess, transport)
	return sess, nil
}

// report hands a freshly graded session to metrics and alerting.
func (s *Service) report(sess store.Session, transport string) {
	if s.rec != nil {
		s.rec.Reading(transport)
		if sess.Lab == types.LabAir {
			s.rec.ObserveAir(sess.AirResult)
		} else {
			s.rec.ObserveWater(sess.WaterResult)
		}
	}
	s.checkAlerts(sess)
}

// checkAlerts runs the alert rules against the session's current result.
func (s *Service) checkAlerts(sess store.Session) {
	if s.alerts == nil {
		return
	}
	fired := s.alerts.Evaluate(alerts.Sample{
		SessionID: sess.ID,
		Lab:       sess.Lab,
		Water:     sess.Water,
		Result:    sess.WaterResult,
		Air:       sess.Air,
		AirResult: sess.AirResult,
	})
	if s.rec != nil {
		for _, a := range fired {
			s.rec.AlertFired(a.RuleName, a.Severity)
		}
	}
}

// SetMonitoring switches periodic sampling of the session on or off.
func (s *Service) SetMonitoring(id string, on bool) (store.Session, error) {
	sess, err := s.store.Update(id, func(x *store.Session) { x.Monitoring = on })
	if err != nil {
		return store.Session{}, err
	}
	slog.Debug("lab: monitoring toggled", "session", id, "active", on)
	return sess, nil
}

// Reset restores the lab defaults, stops monitoring and clears history.
func (s *Service) Reset(id string) (store.Session, error) {
	ev := s.evaluator()
	now := s.now()
	if _, err := s.store.Update(id, func(x *store.Session) {
		d := defaults(x.ID, x.Lab, now)
		x.Water, x.Air = d.Water, d.Air
		x.Monitoring = false
		grade(ev, x)
	}); err != nil {
		return store.Session{}, err
	}
	if err := s.store.ClearHistory(id); err != nil {
		return store.Session{}, err
	}
	sess, err := s.Get(id)
	if err != nil {
		return store.Session{}, err
	}
	s.checkAlerts(sess)
	return sess, nil
}

// Delete removes the session and resolves its alerts.
func (s *Service) Delete(id string) error {
	if !s.store.Delete(id) {
		return store.ErrNotFound
	}
	s.forget(id)
	slog.Info("lab: session deleted", "session", id)
	return nil
}

// Sample appends the session's current reading to its history at time at.
func (s *Service) Sample(id string, at time.Time) error {
	_, err := s.store.Record(id, at)
	return err
}

// MonitoredSessions returns the IDs of sessions being sampled.
func (s *Service) MonitoredSessions() []string {
	return s.store.Monitoring()
}

// Submit accepts a meter reading. The session is created on the first
// reading for an unknown id.
func (s *Service) Submit(req *labrpc.ReadingRequest) (store.Session, error) {
	if req.SessionID == "" {
		return store.Session{}, ErrMissingSession
	}
	if !req.Lab.Valid() {
		return store.Session{}, ErrInvalidLab
	}
	switch req.Lab {
	case types.LabWater:
		if req.Water == nil {
			return store.Session{}, ErrMissingPayload
		}
		if !req.Water.Finite() {
			return store.Session{}, ErrInvalidMeasurement
		}
	case types.LabAir:
		if req.Air == nil {
			return store.Session{}, ErrMissingPayload
		}
		if !req.Air.Finite() {
			return store.Session{}, ErrInvalidMeasurement
		}
	}

	if _, ok := s.store.Get(req.SessionID); !ok {
		_, err := s.CreateSession(req.SessionID, req.Lab)
		if err != nil && !errors.Is(err, store.ErrExists) {
			return store.Session{}, err
		}
	}

	if req.Lab == types.LabAir {
		return s.SetAir(req.SessionID, *req.Air, metrics.TransportGRPC)
	}
	return s.SetWater(req.SessionID, *req.Water, metrics.TransportGRPC)
}
