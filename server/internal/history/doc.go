// Package history keeps the rolling window of readings a monitored session
// accumulates and formats it for the lab's trend chart.
package history
