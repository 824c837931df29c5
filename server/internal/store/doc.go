// Package store holds live lab sessions in memory. It provides a thread-safe
// session store with TTL eviction and a bounded reading history per session.
package store
