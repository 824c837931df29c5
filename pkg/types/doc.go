// Package types defines the measurement records shared by the meter agent and
// the lab server. They are plain values: the evaluation engine reads them and
// never modifies them.
package types
