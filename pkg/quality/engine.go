package quality

import "github.com/ecolab/ecolab/pkg/types"

// Result is the full assessment of one water sample.
type Result struct {
	OverallScore        int             `json:"overall_score"`
	Classification      Classification  `json:"classification"`
	ClassificationLabel string          `json:"classification_label"`
	Parameters          WaterParameters `json:"parameters"`
	Potable             bool            `json:"potable"`
	Recommendations     []string        `json:"recommendations"`
}

// Evaluator grades readings and renders labels in one locale.
// The zero value uses DefaultLocale.
type Evaluator struct {
	locale Locale
}

// New returns an Evaluator for locale. Unsupported locales fall back to
// DefaultLocale when rendering.
func New(locale Locale) Evaluator {
	return Evaluator{locale: locale}
}

// Locale returns the locale labels are rendered in.
func (e Evaluator) Locale() Locale {
	if _, ok := catalogs[e.locale]; !ok {
		return DefaultLocale
	}
	return e.locale
}

// Parameter grades a single reading of the given kind.
func (e Evaluator) Parameter(kind Kind, v float64) ParameterResult {
	return evaluateKind(kind, v, e.locale.catalog())
}

// Water grades a water sample. Temperature and the timestamp are ignored.
func (e Evaluator) Water(m types.Measurement) Result {
	params := WaterParameters{
		PH:              e.Parameter(KindPH, m.PH),
		Turbidity:       e.Parameter(KindTurbidity, m.Turbidity),
		TDS:             e.Parameter(KindTDS, m.TDS),
		DissolvedOxygen: e.Parameter(KindDissolvedOxygen, m.DissolvedOxygen),
	}
	c := Score(params)

	r := Result{
		OverallScore:        c.OverallScore,
		Classification:      c.Classification,
		ClassificationLabel: e.locale.catalog().class(c.Classification),
		Parameters:          params,
		Potable:             c.Potable,
	}
	r.Recommendations = e.Recommend(m, r)
	return r
}

// Recommend returns the advisory messages for m given its graded result r,
// in the order the lab UI presents them.
func (e Evaluator) Recommend(m types.Measurement, r Result) []string {
	cat := e.locale.catalog()
	msgs := advise(m, r)
	out := make([]string, len(msgs))
	for i, id := range msgs {
		out[i] = cat.msgs[id]
	}
	return out
}

var defaultEvaluator = New(DefaultLocale)

// Evaluate grades a water sample with DefaultLocale labels.
func Evaluate(m types.Measurement) Result {
	return defaultEvaluator.Water(m)
}

// EvaluateParameter grades a single reading with DefaultLocale labels.
func EvaluateParameter(kind Kind, v float64) ParameterResult {
	return defaultEvaluator.Parameter(kind, v)
}
