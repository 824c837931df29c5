// Package config loads the server-side configuration from the `server:` section
// of config.yaml (the `agent:` key is ignored by the server binary).
//
// Config fields:
//   - GRPCPort           port for the gRPC reading receiver (default 50051)
//   - HTTPPort           port for the REST API, metrics and WebSocket hub (default 8080)
//   - Auth.Mode          "apikey" or "none"
//   - Auth.KeyEnv        environment variable holding the expected API key
//   - Auth.Header        gRPC metadata/HTTP header name (default "x-api-key")
//   - Lab.Locale         label language, "vi" (default) or "en"
//   - Lab.HistorySize    readings kept per session while monitoring (default 20)
//   - Lab.MonitorInterval how often monitored sessions are sampled (default 2s)
//   - Sessions.TTL       idle time before a session is evicted (default 30m)
//   - BroadcastInterval  WebSocket snapshot push interval (default 2s)
//   - Alerts             rules over evaluation results plus webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, fn) reloads the file on change; the server applies the
// new alert rules and locale without a restart.
package config
