// Package metrics exposes lab activity as Prometheus metrics on a private
// registry: evaluations by lab and grade, score distribution, reading
// transport, live session count and fired alerts.
package metrics
