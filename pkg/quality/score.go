package quality

// Weight constants for the composite water score, in percent.
// They must sum to 100.
const (
	weightPH        = 30
	weightTurbidity = 25
	weightTDS       = 20
	weightOxygen    = 25
)

// Thresholds that map a weighted score to a classification.
const (
	ThresholdExcellent = 90.0
	ThresholdGood      = 75.0
	ThresholdFair      = 60.0
	ThresholdPoor      = 40.0
)

// WaterParameters holds one result per scored water reading.
type WaterParameters struct {
	PH              ParameterResult `json:"ph"`
	Turbidity       ParameterResult `json:"turbidity"`
	TDS             ParameterResult `json:"tds"`
	DissolvedOxygen ParameterResult `json:"dissolved_oxygen"`
}

// Composite is the output of the composite scorer.
type Composite struct {
	// Weighted is the exact weighted score before rounding.
	Weighted float64

	// OverallScore is Weighted rounded half-up.
	OverallScore int

	// Classification is derived from Weighted, not OverallScore.
	Classification Classification

	// Potable is true while pH, turbidity and TDS are all Optimal or Acceptable.
	// Temperature and dissolved oxygen never affect it.
	Potable bool
}

// Score combines the four parameter scores into a composite.
//
//	weighted = ph*0.30 + turbidity*0.25 + tds*0.20 + dissolved_oxygen*0.25
//
// The sum is accumulated in integer percent so boundary scores such as 90 or
// 75 are exact.
func Score(p WaterParameters) Composite {
	sum := p.PH.Score*weightPH +
		p.Turbidity.Score*weightTurbidity +
		p.TDS.Score*weightTDS +
		p.DissolvedOxygen.Score*weightOxygen

	weighted := float64(sum) / 100
	return Composite{
		Weighted:       weighted,
		OverallScore:   roundPercent(sum),
		Classification: classify(weighted),
		Potable:        potable(p),
	}
}

// classify maps a weighted score to a classification.
func classify(score float64) Classification {
	switch {
	case score >= ThresholdExcellent:
		return ClassExcellent
	case score >= ThresholdGood:
		return ClassGood
	case score >= ThresholdFair:
		return ClassFair
	case score >= ThresholdPoor:
		return ClassPoor
	default:
		return ClassVeryPoor
	}
}

func potable(p WaterParameters) bool {
	return drinkable(p.PH.Status) && drinkable(p.Turbidity.Status) && drinkable(p.TDS.Status)
}

func drinkable(t Tier) bool {
	return t == TierOptimal || t == TierAcceptable
}

// roundPercent converts a sum of score*weight (in percent) to the nearest
// whole score, rounding halves up. Scores are never negative.
func roundPercent(sum int) int {
	return (sum + 50) / 100
}
