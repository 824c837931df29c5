// Package monitor drives the lab's "monitoring" mode: while a session has
// monitoring switched on, its current reading is copied into its history at
// a fixed interval so the UI can draw a trend chart.
//
// Monitor.Run ticks at the configured lab.monitor_interval (2s by default);
// Tick can be driven directly in tests.
package monitor
