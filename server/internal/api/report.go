package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/store"
)

// trendRisePct is the rise across a session's history, first reading to last,
// that earns a trend hint.
const trendRisePct = 20.0

// ReportHint is one plain-language insight about a session. The lab UI shows
// these as chips next to the gauges; Detail is shown on click.
type ReportHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}

// buildReport derives the report for one session. Hints are ordered critical
// first, then warnings, then info.
func buildReport(s store.Session) ReportResponse {
	rep := ReportResponse{SessionID: s.ID, Lab: s.Lab}

	var hints []ReportHint
	switch s.Lab {
	case types.LabAir:
		rep.Summary = fmt.Sprintf("Air quality level %s", s.AirResult.LevelLabel)
		hints = airHints(s.AirResult)
	default:
		r := s.WaterResult
		drink := "potable"
		if !r.Potable {
			drink = "not potable"
		}
		rep.Summary = fmt.Sprintf("Score %d/100 (%s), %s", r.OverallScore, r.ClassificationLabel, drink)
		rep.Recommendations = r.Recommendations
		hints = waterHints(r)
		hints = append(hints, trendHints(s.History)...)
	}

	if len(hints) == 0 {
		hints = append(hints, ReportHint{
			Key:    "all_clear",
			Level:  "ok",
			Title:  "All clear",
			Detail: "Every scored reading is inside its optimal range. Try changing one parameter to see how the grade reacts.",
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	rep.Hints = hints
	return rep
}

type namedParam struct {
	key, name, unit string
	p               quality.ParameterResult
}

func waterHints(r quality.Result) []ReportHint {
	params := []namedParam{
		{"ph", "pH", "", r.Parameters.PH},
		{"turbidity", "Turbidity", " NTU", r.Parameters.Turbidity},
		{"tds", "TDS", " ppm", r.Parameters.TDS},
		{"dissolved_oxygen", "Dissolved oxygen", " mg/L", r.Parameters.DissolvedOxygen},
	}
	hints := parameterHints(params)

	if !r.Potable {
		var failing []string
		for _, np := range params[:3] {
			if np.p.Status > quality.TierAcceptable {
				failing = append(failing, np.name)
			}
		}
		hints = append(hints, ReportHint{
			Key:   "not_potable",
			Level: "critical",
			Title: "Not drinkable",
			Detail: fmt.Sprintf(
				"Drinking water needs pH, turbidity and TDS all within acceptable limits. "+
					"Out of limits here: %s. Treat the sample before use.",
				strings.Join(failing, ", "),
			),
		})
	} else if r.Parameters.DissolvedOxygen.Status == quality.TierPoor {
		hints = append(hints, ReportHint{
			Key:   "oxygen_only",
			Level: "info",
			Title: "Drinkable, poor habitat",
			Detail: "Dissolved oxygen does not affect drinkability, so this sample still passes. " +
				"Fish and other aquatic life would struggle at this oxygen level though.",
		})
	}
	return hints
}

func airHints(r quality.AirResult) []ReportHint {
	return parameterHints([]namedParam{
		{"co2", "CO2", " ppm", r.Parameters.CO2},
		{"pm25", "PM2.5", " µg/m³", r.Parameters.PM25},
		{"pm10", "PM10", " µg/m³", r.Parameters.PM10},
	})
}

// parameterHints emits one hint per reading outside its optimal tier.
func parameterHints(params []namedParam) []ReportHint {
	var hints []ReportHint
	for _, np := range params {
		if np.p.Status == quality.TierOptimal {
			continue
		}
		v := np.p.Value
		hints = append(hints, ReportHint{
			Key:   "param_" + np.key,
			Level: levelForTier(np.p.Status),
			Title: fmt.Sprintf("%s %s", np.name, strings.ToLower(np.p.Status.String())),
			Detail: fmt.Sprintf(
				"%s reads %g%s, graded %s (score %d). Target range: %s.",
				np.name, v, np.unit, np.p.StatusLabel, np.p.Score, np.p.Range,
			),
			Value: &v,
		})
	}
	return hints
}

// trendHints compares the first and last recorded water samples.
func trendHints(hist []types.Measurement) []ReportHint {
	if len(hist) < 2 {
		return nil
	}
	first, last := hist[0], hist[len(hist)-1]

	var hints []ReportHint
	for _, t := range []struct {
		key, name string
		from, to  float64
	}{
		{"tds", "TDS", first.TDS, last.TDS},
		{"turbidity", "Turbidity", first.Turbidity, last.Turbidity},
	} {
		if t.from <= 0 {
			continue
		}
		rise := (t.to - t.from) / t.from * 100
		if rise <= trendRisePct {
			continue
		}
		v := rise
		hints = append(hints, ReportHint{
			Key:   "trend_" + t.key,
			Level: "warning",
			Title: fmt.Sprintf("%s rising", t.name),
			Detail: fmt.Sprintf(
				"%s went from %g to %g over the last %d samples, a %.0f%% rise. "+
					"Look for a contamination source upstream of the sampling point.",
				t.name, t.from, t.to, len(hist), rise,
			),
			Value: &v,
		})
	}
	return hints
}
