package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ecolab/ecolab/pkg/types"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultInterval   = 2 * time.Second
	DefaultBufferSize = 100
	DefaultDrift      = 0.05
	DefaultHeader     = "x-api-key"
)

// Config is the top-level agent configuration. The `server:` key in a shared
// config file is ignored.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// ServerEndpoint is the gRPC address of ecolab-server (host:port).
	ServerEndpoint string `yaml:"server_endpoint"`

	// Interval controls how often each meter produces a reading.
	Interval time.Duration `yaml:"interval"`

	// BufferSize is the maximum number of readings held in memory when
	// the server is unreachable.
	BufferSize int `yaml:"buffer_size"`

	// ServerAuth configures how the agent authenticates to ecolab-server.
	ServerAuth AuthConfig `yaml:"server_auth"`

	// Meters is the list of simulated instruments, one per lab session.
	Meters []Meter `yaml:"meters"`
}

// AuthConfig specifies how the agent authenticates to the server.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | none.
	Mode string `yaml:"mode"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// Header is the gRPC metadata key the API key is sent in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or DefaultHeader.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultHeader
}

// Meter describes one simulated instrument feeding a lab session.
type Meter struct {
	// ID names the instrument in logs and on the wire. Defaults to SessionID.
	ID string `yaml:"id"`

	// SessionID is the lab session the readings are submitted to. The server
	// creates it on the first reading.
	SessionID string `yaml:"session_id"`

	// Lab is water or air.
	Lab types.Lab `yaml:"lab"`

	// Seed makes the reading sequence reproducible. Zero derives a seed from
	// the session ID.
	Seed int64 `yaml:"seed"`

	// Drift is the largest step per tick, as a fraction of the baseline.
	Drift float64 `yaml:"drift"`

	// Water is the baseline for a water meter. Defaults to the lab defaults.
	Water *types.Measurement `yaml:"water"`

	// Air is the baseline for an air meter. Defaults to the lab defaults.
	Air *types.AirMeasurement `yaml:"air"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyMeterDefaults(cfg.Agent.Meters)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			Interval:   DefaultInterval,
			BufferSize: DefaultBufferSize,
		},
	}
}

// applyMeterDefaults fills per-meter fields that YAML cannot pre-populate
// inside a list.
func applyMeterDefaults(meters []Meter) {
	for i := range meters {
		m := &meters[i]
		if m.ID == "" {
			m.ID = m.SessionID
		}
		if m.Drift == 0 {
			m.Drift = DefaultDrift
		}
		if m.Lab == types.LabWater && m.Water == nil {
			w := types.DefaultMeasurement(time.Time{})
			m.Water = &w
		}
		if m.Lab == types.LabAir && m.Air == nil {
			a := types.DefaultAirMeasurement(time.Time{})
			m.Air = &a
		}
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	a := cfg.Agent
	if a.ServerEndpoint == "" {
		return fmt.Errorf("agent.server_endpoint is required")
	}
	if a.Interval <= 0 {
		return fmt.Errorf("agent.interval must be positive")
	}
	if a.BufferSize <= 0 {
		return fmt.Errorf("agent.buffer_size must be positive")
	}
	switch a.ServerAuth.Mode {
	case "mtls", "apikey", "none", "":
	default:
		return fmt.Errorf("agent.server_auth: unknown mode %q", a.ServerAuth.Mode)
	}
	if a.ServerAuth.Mode == "mtls" && (a.ServerAuth.CertFile == "" || a.ServerAuth.KeyFile == "") {
		return fmt.Errorf("agent.server_auth: mtls needs cert_file and key_file")
	}

	seen := make(map[string]bool, len(a.Meters))
	for i, m := range a.Meters {
		if m.SessionID == "" {
			return fmt.Errorf("meters[%d]: session_id is required", i)
		}
		if seen[m.SessionID] {
			return fmt.Errorf("meters[%d]: duplicate session_id %q", i, m.SessionID)
		}
		seen[m.SessionID] = true
		if !m.Lab.Valid() {
			return fmt.Errorf("meters[%d] %q: unknown lab %q", i, m.SessionID, m.Lab)
		}
		if m.Drift < 0 || m.Drift > 1 {
			return fmt.Errorf("meters[%d] %q: drift must be within [0, 1]", i, m.SessionID)
		}
		if m.Water != nil && !m.Water.Finite() {
			return fmt.Errorf("meters[%d] %q: water baseline must be finite", i, m.SessionID)
		}
		if m.Air != nil && !m.Air.Finite() {
			return fmt.Errorf("meters[%d] %q: air baseline must be finite", i, m.SessionID)
		}
	}
	return nil
}
