package quality

import "github.com/ecolab/ecolab/pkg/types"

// phOptimalLow is the lower edge of the optimal pH band; below it the advice
// is to neutralize acid, otherwise to bring alkalinity down.
const phOptimalLow = 6.5

// tdsAdviceAbove gates the reverse-osmosis advice. It is checked on the raw
// reading in addition to the TDS tier.
const tdsAdviceAbove = 600

// advise returns the ordered advisory messages for a graded sample.
// The potability message is always present and always last.
func advise(m types.Measurement, r Result) []message {
	var out []message

	if r.Parameters.PH.Status != TierOptimal {
		if m.PH < phOptimalLow {
			out = append(out, msgPHLow)
		} else {
			out = append(out, msgPHHigh)
		}
	}

	if r.Parameters.Turbidity.Status != TierOptimal {
		out = append(out, msgTurbidity)
	}

	if r.Parameters.TDS.Status != TierOptimal && m.TDS > tdsAdviceAbove {
		out = append(out, msgTDS)
	}

	if r.Parameters.DissolvedOxygen.Status == TierPoor {
		out = append(out, msgOxygen)
	}

	if r.Potable {
		out = append(out, msgPotable)
	} else {
		out = append(out, msgNotPotable)
	}
	return out
}
