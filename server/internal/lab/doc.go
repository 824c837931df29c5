// Package lab runs the virtual water and air labs. A Service owns the
// session lifecycle: it seeds new sessions with the lab defaults, grades
// every reading with the quality engine, stores the result, and reports the
// graded sample to the alert engine and the metrics recorder.
//
// Readings arrive from the REST API (a student moving a slider) or over gRPC
// from a meter. Both paths share the same validation and grading.
package lab
