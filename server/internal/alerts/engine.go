package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecolab/ecolab/server/internal/config"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	SessionID  string     `json:"session_id"`
	Lab        string     `json:"lab"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// alertKey identifies one rule firing for one session.
type alertKey struct {
	rule, session string
}

// Engine evaluates alert rules against graded readings and delivers webhook
// notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []config.AlertRule
	targets  []*target
	active   map[alertKey]*Alert
	lastFire map[alertKey]time.Time // for cooldown
	history  []*Alert               // recently resolved alerts

	client *http.Client
	now    func() time.Time
}

// New creates an Engine from the server alert configuration.
// An Engine with empty rules is valid; Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	e := &Engine{
		active:   make(map[alertKey]*Alert),
		lastFire: make(map[alertKey]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
	e.SetRules(cfg)
	return e
}

// SetRules replaces the rule set and webhook targets. Firing alerts and
// cooldowns carry over for rules that keep their name; alerts of removed
// rules are resolved.
func (e *Engine) SetRules(cfg config.AlertsConfig) {
	for _, r := range cfg.Rules {
		if _, err := parseCondition(r.Condition); err != nil {
			slog.Warn("alerts: rule will never fire", "rule", r.Name, "err", err)
		}
	}
	targets := make([]*target, 0, len(cfg.Webhooks))
	for _, wh := range cfg.Webhooks {
		targets = append(targets, newTarget(wh, e.client))
	}

	keep := make(map[string]bool, len(cfg.Rules))
	for _, r := range cfg.Rules {
		keep[r.Name] = true
	}

	e.mu.Lock()
	e.rules = cfg.Rules
	e.targets = targets
	resolved := e.resolveLocked(func(k alertKey) bool { return !keep[k.rule] })
	for k := range e.lastFire {
		if !keep[k.rule] {
			delete(e.lastFire, k)
		}
	}
	e.mu.Unlock()

	e.announce(targets, resolved)
}

// Forget resolves every alert firing for sessionID and drops its cooldowns.
// It is called when a session is deleted or evicted.
func (e *Engine) Forget(sessionID string) {
	e.mu.Lock()
	targets := e.targets
	resolved := e.resolveLocked(func(k alertKey) bool { return k.session == sessionID })
	for k := range e.lastFire {
		if k.session == sessionID {
			delete(e.lastFire, k)
		}
	}
	e.mu.Unlock()

	e.announce(targets, resolved)
}

// resolveLocked resolves the active alerts whose key matches and moves them
// to history. e.mu must be held.
func (e *Engine) resolveLocked(match func(alertKey) bool) []Alert {
	var out []Alert
	now := e.now()
	for k, a := range e.active {
		if !match(k) {
			continue
		}
		resolved := now
		a.State = "resolved"
		a.ResolvedAt = &resolved
		delete(e.active, k)
		e.history = append(e.history, a)
		out = append(out, *a)
	}
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	return out
}

func (e *Engine) announce(targets []*target, resolved []Alert) {
	for i := range resolved {
		a := resolved[i]
		slog.Info("alert resolved", "rule", a.RuleName, "session", a.SessionID)
		go deliver(targets, &a)
	}
}

// Evaluate tests all configured rules against s and returns the alerts that
// fired. Webhook delivery is triggered asynchronously. Alerts that were
// firing for the session but whose condition is now false are resolved.
func (e *Engine) Evaluate(s Sample) []Alert {
	e.mu.Lock()
	rules, targets := e.rules, e.targets
	e.mu.Unlock()
	if len(rules) == 0 {
		return nil
	}

	now := e.now()
	var fired []Alert
	for _, rule := range rules {
		key := alertKey{rule: rule.Name, session: s.SessionID}
		fires, value := evalCondition(rule.Condition, s)

		e.mu.Lock()

		if fires {
			cooldown := rule.Cooldown
			if cooldown <= 0 {
				cooldown = defaultCooldown
			}
			if last, ok := e.lastFire[key]; ok && now.Sub(last) <= cooldown {
				e.mu.Unlock()
				continue
			}
			sev := rule.Severity
			if sev == "" {
				sev = "warning"
			}
			a := &Alert{
				ID:        uuid.NewString(),
				RuleName:  rule.Name,
				SessionID: s.SessionID,
				Lab:       string(s.Lab),
				Severity:  sev,
				Value:     value,
				Message: fmt.Sprintf("[%s] %s fired on session %s: %s (value %.2f)",
					sev, rule.Name, s.SessionID, rule.Condition, value),
				FiredAt: now,
				State:   "firing",
			}
			e.active[key] = a
			e.lastFire[key] = now
			alertCopy := *a
			e.mu.Unlock()

			slog.Warn("alert fired",
				"rule", rule.Name,
				"session", s.SessionID,
				"value", value,
				"severity", sev,
			)
			fired = append(fired, alertCopy)
			go deliver(targets, &alertCopy)
			continue
		}

		resolved := e.resolveLocked(func(k alertKey) bool { return k == key })
		e.mu.Unlock()
		e.announce(targets, resolved)
	}
	return fired
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FiredAt.After(out[j].FiredAt)
	})
	return out
}

// FiringCount returns the number of alerts currently firing.
func (e *Engine) FiringCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}
