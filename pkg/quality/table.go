package quality

import "math"

// Kind names a scored parameter.
type Kind string

const (
	KindPH              Kind = "ph"
	KindTurbidity       Kind = "turbidity"
	KindTDS             Kind = "tds"
	KindDissolvedOxygen Kind = "dissolved_oxygen"
	KindCO2             Kind = "co2"
	KindPM25            Kind = "pm25"
	KindPM10            Kind = "pm10"
)

// Interval is a range of readings. An open end excludes its bound.
type Interval struct {
	Lo, Hi         float64
	LoOpen, HiOpen bool
}

// Contains reports whether v lies inside the interval. NaN is never contained.
func (iv Interval) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if v < iv.Lo || (iv.LoOpen && v == iv.Lo) {
		return false
	}
	if v > iv.Hi || (iv.HiOpen && v == iv.Hi) {
		return false
	}
	return true
}

func closed(lo, hi float64) Interval     { return Interval{Lo: lo, Hi: hi} }
func span(lo, hi float64) Interval       { return Interval{Lo: lo, Hi: hi, HiOpen: true} }
func openClosed(lo, hi float64) Interval { return Interval{Lo: lo, Hi: hi, LoOpen: true} }
func below(hi float64) Interval          { return Interval{Lo: math.Inf(-1), Hi: hi, HiOpen: true} }
func atMost(hi float64) Interval         { return Interval{Lo: math.Inf(-1), Hi: hi} }
func atLeast(lo float64) Interval        { return Interval{Lo: lo, Hi: math.Inf(1)} }

// Band is one tier of a threshold table.
type Band struct {
	Tier   Tier
	Score  int
	Ranges []Interval
}

func (b Band) matches(v float64) bool {
	for _, iv := range b.Ranges {
		if iv.Contains(v) {
			return true
		}
	}
	return false
}

// Table is the threshold table for one parameter kind. Bands are tried in
// order; a reading matching none of them lands in Otherwise.
type Table struct {
	Kind      Kind
	Range     string // description of the optimal range
	Bands     []Band
	Otherwise Band
}

// ParameterResult is the graded outcome for one reading.
type ParameterResult struct {
	Value       float64 `json:"value"`
	Status      Tier    `json:"status"`
	StatusLabel string  `json:"status_label"`
	Score       int     `json:"score"`
	Range       string  `json:"range"`
}

func (t Table) evaluate(v float64, cat *catalog) ParameterResult {
	band := t.Otherwise
	for _, b := range t.Bands {
		if b.matches(v) {
			band = b
			break
		}
	}
	return ParameterResult{
		Value:       v,
		Status:      band.Tier,
		StatusLabel: cat.tier(band.Tier),
		Score:       band.Score,
		Range:       t.Range,
	}
}

var tables = map[Kind]Table{
	KindPH: {
		Kind:  KindPH,
		Range: "6.5 - 8.5 (optimal)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{closed(6.5, 8.5)}},
			{Tier: TierAcceptable, Score: 75, Ranges: []Interval{span(6.0, 6.5), openClosed(8.5, 9.0)}},
			{Tier: TierMarginal, Score: 50, Ranges: []Interval{span(5.5, 6.0), openClosed(9.0, 9.5)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 25},
	},
	KindTurbidity: {
		Kind:  KindTurbidity,
		Range: "< 5 NTU (drinking water)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{below(1)}},
			{Tier: TierAcceptable, Score: 85, Ranges: []Interval{span(1, 5)}},
			{Tier: TierMarginal, Score: 60, Ranges: []Interval{span(5, 25)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 30},
	},
	KindTDS: {
		Kind:  KindTDS,
		Range: "< 600 ppm (good)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{below(300)}},
			{Tier: TierAcceptable, Score: 80, Ranges: []Interval{span(300, 600)}},
			{Tier: TierMarginal, Score: 55, Ranges: []Interval{span(600, 1000)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 25},
	},
	KindDissolvedOxygen: {
		Kind:  KindDissolvedOxygen,
		Range: ">= 6 mg/L (healthy)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{atLeast(8)}},
			{Tier: TierAcceptable, Score: 80, Ranges: []Interval{span(6, 8)}},
			{Tier: TierMarginal, Score: 50, Ranges: []Interval{span(4, 6)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 20},
	},

	// Air tables use inclusive upper bounds.
	KindPM25: {
		Kind:  KindPM25,
		Range: "<= 12 µg/m³ (good)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{atMost(12)}},
			{Tier: TierAcceptable, Score: 75, Ranges: []Interval{openClosed(12, 35)}},
			{Tier: TierMarginal, Score: 50, Ranges: []Interval{openClosed(35, 55)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 25},
	},
	KindPM10: {
		Kind:  KindPM10,
		Range: "<= 50 µg/m³ (good)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{atMost(50)}},
			{Tier: TierAcceptable, Score: 75, Ranges: []Interval{openClosed(50, 150)}},
			{Tier: TierMarginal, Score: 50, Ranges: []Interval{openClosed(150, 250)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 25},
	},
	KindCO2: {
		Kind:  KindCO2,
		Range: "<= 500 ppm (good)",
		Bands: []Band{
			{Tier: TierOptimal, Score: 100, Ranges: []Interval{atMost(500)}},
			{Tier: TierAcceptable, Score: 75, Ranges: []Interval{openClosed(500, 800)}},
			{Tier: TierMarginal, Score: 50, Ranges: []Interval{openClosed(800, 1000)}},
		},
		Otherwise: Band{Tier: TierPoor, Score: 25},
	},
}

// evaluateKind grades v against the table for kind. An unknown kind is Poor
// with a zero score.
func evaluateKind(kind Kind, v float64, cat *catalog) ParameterResult {
	t, ok := tables[kind]
	if !ok {
		return ParameterResult{Value: v, Status: TierPoor, StatusLabel: cat.tier(TierPoor)}
	}
	return t.evaluate(v, cat)
}
