// Package ws implements the WebSocket hub for ecolab-server.
//
// Hub manages a set of connected clients and broadcasts the current lab
// snapshot to all of them on a configurable interval (the broadcast_interval
// setting, default 2s). This is what drives the live gauges and the history
// chart while a session is being monitored.
//
// New(svc, alerts, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker and blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// snapshot immediately on connect, then streams updates on each tick.
// A client connecting with ?session=<id> only receives that session.
//
// Message format sent to clients:
//
//	{
//	  "event": "snapshot",
//	  "data":  { /* same schema as GET /api/v1/snapshot */ }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream by the server.
package ws
