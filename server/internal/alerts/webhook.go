package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"github.com/sony/gobreaker"

	"github.com/ecolab/ecolab/server/internal/config"
)

const (
	deliveryTimeout = 10 * time.Second

	// A target trips after this many consecutive failures and stays open for
	// breakerOpenFor before a single trial delivery is let through.
	breakerTripAfter = 3
	breakerOpenFor   = time.Minute
)

// target is one webhook endpoint guarded by a circuit breaker.
type target struct {
	cfg    config.WebhookConfig
	cb     *gobreaker.CircuitBreaker
	client *http.Client
}

func newTarget(cfg config.WebhookConfig, client *http.Client) *target {
	return &target{
		cfg:    cfg,
		client: client,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    cfg.Type + "-webhook",
			Timeout: breakerOpenFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= breakerTripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Info("alerts: webhook breaker state changed",
					"breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// deliver sends webhook notifications for a to all targets.
// Errors are logged but do not affect the caller.
func deliver(targets []*target, a *Alert) {
	for _, t := range targets {
		url := t.cfg.URL()
		if url == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		_, err := t.cb.Execute(func() (any, error) {
			return nil, t.send(ctx, url, a)
		})
		cancel()

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", t.cfg.Type,
				"rule", a.RuleName,
				"err", err,
			)
		} else {
			slog.Debug("alerts: webhook delivered",
				"type", t.cfg.Type,
				"rule", a.RuleName,
				"state", a.State,
			)
		}
	}
}

func (t *target) send(ctx context.Context, url string, a *Alert) error {
	switch t.cfg.Type {
	case "slack":
		return t.sendSlack(ctx, url, a)
	case "teams":
		return t.sendTeams(ctx, url, a)
	case "http":
		return t.sendHTTP(ctx, url, a)
	default:
		return fmt.Errorf("unknown webhook type %q", t.cfg.Type)
	}
}

func (t *target) sendSlack(ctx context.Context, url string, a *Alert) error {
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("*%s* %s", severityLabel(a.Severity), a.Message),
		Attachments: []slack.Attachment{{
			Color:    "#" + severityColor(a.Severity),
			Title:    fmt.Sprintf("%s (%s)", a.RuleName, a.State),
			Text:     fmt.Sprintf("session %s, %s lab", a.SessionID, a.Lab),
			Fallback: a.Message,
		}},
	}
	return slack.PostWebhookCustomHTTPContext(ctx, url, t.client, msg)
}

func (t *target) sendTeams(ctx context.Context, url string, a *Alert) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(a.Severity),
		"summary":    a.RuleName,
		"title":      fmt.Sprintf("EcoLab Alert: %s", a.RuleName),
		"text":       a.Message,
	}
	body, _ := json.Marshal(payload)
	return t.post(ctx, url, body)
}

func (t *target) sendHTTP(ctx context.Context, url string, a *Alert) error {
	body, _ := json.Marshal(map[string]interface{}{"alert": a})
	return t.post(ctx, url, body)
}

func (t *target) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func severityColor(s string) string {
	switch s {
	case "critical":
		return "FF4F6A"
	case "warning":
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
