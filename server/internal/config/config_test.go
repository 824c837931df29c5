package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecolab/ecolab/pkg/quality"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	// The agent section belongs to the meter binary and is ignored here.
	p := writeConfig(t, `agent:
  server_endpoint: "localhost:50051"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.GRPCPort != DefaultGRPCPort {
		t.Errorf("grpc_port: got %d, want %d", s.GRPCPort, DefaultGRPCPort)
	}
	if s.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", s.HTTPPort, DefaultHTTPPort)
	}
	if s.Sessions.TTL != DefaultSessionTTL {
		t.Errorf("sessions.ttl: got %v, want %v", s.Sessions.TTL, DefaultSessionTTL)
	}
	if s.Lab.HistorySize != 20 {
		t.Errorf("lab.history_size: got %d, want 20", s.Lab.HistorySize)
	}
	if s.Lab.MonitorInterval != 2*time.Second {
		t.Errorf("lab.monitor_interval: got %v, want 2s", s.Lab.MonitorInterval)
	}
	if s.Lab.EffectiveLocale() != quality.LocaleVI {
		t.Errorf("lab.locale: got %q, want vi", s.Lab.EffectiveLocale())
	}
	if s.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("broadcast_interval: got %v, want %v", s.BroadcastInterval, DefaultBroadcastInterval)
	}
}

func TestLoad_FullServer(t *testing.T) {
	p := writeConfig(t, `server:
  grpc_port: 9090
  http_port: 9091
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-lab-key
  lab:
    locale: en
    history_size: 50
    monitor_interval: 500ms
  sessions:
    ttl: 10m
  broadcast_interval: 5s
  alerts:
    rules:
      - name: unsafe-water
        condition: "potable == false"
        severity: warning
        cooldown: 1m
    webhooks:
      - type: slack
        url_env: SLACK_URL
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.GRPCPort != 9090 {
		t.Errorf("grpc_port: got %d, want 9090", s.GRPCPort)
	}
	if s.Auth.Mode != "apikey" {
		t.Errorf("auth.mode: got %q, want apikey", s.Auth.Mode)
	}
	if s.Auth.EffectiveHeader() != "x-lab-key" {
		t.Errorf("header: got %q, want x-lab-key", s.Auth.EffectiveHeader())
	}
	if s.Lab.EffectiveLocale() != quality.LocaleEN {
		t.Errorf("locale: got %q, want en", s.Lab.EffectiveLocale())
	}
	if s.Lab.HistorySize != 50 || s.Lab.MonitorInterval != 500*time.Millisecond {
		t.Errorf("lab: got %+v", s.Lab)
	}
	if s.Sessions.TTL != 10*time.Minute {
		t.Errorf("sessions.ttl: got %v, want 10m", s.Sessions.TTL)
	}
	if s.BroadcastInterval != 5*time.Second {
		t.Errorf("broadcast_interval: got %v, want 5s", s.BroadcastInterval)
	}
	if len(s.Alerts.Rules) != 1 || s.Alerts.Rules[0].Cooldown != time.Minute {
		t.Errorf("alerts.rules: got %+v", s.Alerts.Rules)
	}
	if len(s.Alerts.Webhooks) != 1 || s.Alerts.Webhooks[0].Type != "slack" {
		t.Errorf("alerts.webhooks: got %+v", s.Alerts.Webhooks)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: K
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_EnvResolution(t *testing.T) {
	t.Setenv("TEST_SERVER_KEY", "supersecret")
	t.Setenv("TEST_HOOK_URL", "https://hooks.example.com/x")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_SERVER_KEY
  alerts:
    webhooks:
      - type: http
        url_env: TEST_HOOK_URL
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
	if u := cfg.Server.Alerts.Webhooks[0].URL(); u != "https://hooks.example.com/x" {
		t.Errorf("URL(): got %q", u)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown auth mode", "server:\n  auth:\n    mode: oauth2\n"},
		{"grpc port out of range", "server:\n  grpc_port: 70000\n"},
		{"unknown locale", "server:\n  lab:\n    locale: fr\n"},
		{"zero history", "server:\n  lab:\n    history_size: 0\n"},
		{"negative ttl", "server:\n  sessions:\n    ttl: -1m\n"},
		{"rule without condition", "server:\n  alerts:\n    rules:\n      - name: x\n"},
		{"bad severity", "server:\n  alerts:\n    rules:\n      - name: x\n        condition: \"ph < 6\"\n        severity: loud\n"},
		{"unknown webhook", "server:\n  alerts:\n    webhooks:\n      - type: pagerduty\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "server:\n  lab:\n    locale: vi\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(p, []byte("server:\n  lab:\n    locale: en\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// A truncating write can surface as more than one event; wait for the
	// one that sees the new content.
	deadline := time.After(3 * time.Second)
wait:
	for {
		select {
		case c := <-got:
			if c.Server.Lab.EffectiveLocale() == quality.LocaleEN {
				break wait
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
