// Package quality grades environmental lab readings.
//
// table.go holds the per-parameter threshold tables. A Table is an ordered
// list of bands; each band names a tier (Optimal, Acceptable, Marginal, Poor),
// the score awarded for it and the intervals it covers. EvaluateParameter maps
// any real number to exactly one band, falling through to the Poor band when
// nothing else matches.
//
// score.go combines the four water parameters into a composite:
// pH(30%) + turbidity(25%) + TDS(20%) + dissolved oxygen(25%). The overall
// score is rounded half-up; the classification (Excellent ≥90, Good ≥75,
// Fair ≥60, Poor ≥40, Very Poor) is taken from the unrounded weighted score.
// Water is potable only while pH, turbidity and TDS are all Optimal or
// Acceptable.
//
// recommend.go builds the ordered advisory list, and engine.go ties the three
// together behind Evaluator.Water. Air readings go through the same tables via
// Evaluator.Air, where the AQI level is the worst tier of PM2.5, PM10 and CO2.
//
// Everything here is pure: no logging, no shared mutable state, and identical
// input always yields a structurally identical result.
package quality
