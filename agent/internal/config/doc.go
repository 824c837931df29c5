// Package config loads and watches the meter agent configuration file.
//
// Top-level types:
//   - Config{Agent}: the `agent:` section of config.yaml
//   - AgentConfig: server_endpoint, interval, buffer_size, server_auth, meters
//   - AuthConfig: mode (mtls|apikey|none), cert/key/ca files, header, key_env;
//     Key() resolves the API key from the environment
//   - Meter: session_id, lab, seed, drift and an optional water or air baseline
//
// Load(path) reads the YAML file, applies defaults (2s interval, 100 buffer,
// 5% drift, lab default baselines), then validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config, so meters can be added or retuned
// while the agent runs.
package config
