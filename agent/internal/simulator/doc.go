// Package simulator generates readings for simulated lab meters.
//
// Each Meter walks its readings randomly around the configured baseline:
// every tick moves each value by at most drift×baseline, and values never
// leave a band of maxExcursion×baseline around it (or their physical limits,
// such as pH 0..14). The walk is driven by a seeded PRNG so the same seed
// replays the same sequence, which keeps classroom demos reproducible.
//
// Fleet holds one Meter per configured session and can be updated in place
// when the agent config is hot-reloaded; meters whose settings did not change
// keep their current position in the walk.
package simulator
