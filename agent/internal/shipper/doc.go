// Package shipper sends meter readings to ecolab-server via gRPC
// (ReadingService.SubmitReading unary RPC, JSON codec).
//
// Shipper.Ship() is non-blocking: readings are placed in an in-memory channel
// (default capacity 100). When the buffer is full the oldest reading is
// evicted so the latest values always reach the lab.
//
// Shipper.Run() drains the buffer in a loop, reconnecting with exponential
// backoff (cenkalti/backoff, 1s→60s, ±25% jitter) on connection or send
// errors. Permanent gRPC errors (Unauthenticated, PermissionDenied,
// InvalidArgument, FailedPrecondition) discard the reading immediately
// rather than retrying.
//
// Auth: mTLS via credentials.NewTLS(), API key via gRPC metadata header,
// or insecure (plaintext) for local development.
//
// The dialFn field is injectable for testing.
package shipper
