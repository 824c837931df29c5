package quality

import (
	"math"
	"testing"
)

func TestEvaluateParameter_Tables(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		value     float64
		wantTier  Tier
		wantScore int
	}{
		// pH: [6.5,8.5] optimal, asymmetric shoulders on both sides.
		{"ph neutral", KindPH, 7.0, TierOptimal, 100},
		{"ph lower optimal edge", KindPH, 6.5, TierOptimal, 100},
		{"ph upper optimal edge", KindPH, 8.5, TierOptimal, 100},
		{"ph just below optimal", KindPH, 6.49, TierAcceptable, 75},
		{"ph acceptable low edge", KindPH, 6.0, TierAcceptable, 75},
		{"ph just above optimal", KindPH, 8.51, TierAcceptable, 75},
		{"ph acceptable high edge", KindPH, 9.0, TierAcceptable, 75},
		{"ph marginal low edge", KindPH, 5.5, TierMarginal, 50},
		{"ph just below acceptable", KindPH, 5.99, TierMarginal, 50},
		{"ph just above acceptable", KindPH, 9.01, TierMarginal, 50},
		{"ph marginal high edge", KindPH, 9.5, TierMarginal, 50},
		{"ph just below marginal", KindPH, 5.49, TierPoor, 25},
		{"ph just above marginal", KindPH, 9.51, TierPoor, 25},
		{"ph 9.6 is poor, not an error", KindPH, 9.6, TierPoor, 25},
		{"ph 0", KindPH, 0, TierPoor, 25},
		{"ph 20 out of physical range", KindPH, 20, TierPoor, 25},
		{"ph negative", KindPH, -1, TierPoor, 25},

		{"turbidity clear", KindTurbidity, 0, TierOptimal, 100},
		{"turbidity just under 1", KindTurbidity, 0.99, TierOptimal, 100},
		{"turbidity 1", KindTurbidity, 1, TierAcceptable, 85},
		{"turbidity just under 5", KindTurbidity, 4.99, TierAcceptable, 85},
		{"turbidity 5 is marginal", KindTurbidity, 5, TierMarginal, 60},
		{"turbidity just under 25", KindTurbidity, 24.99, TierMarginal, 60},
		{"turbidity 25", KindTurbidity, 25, TierPoor, 30},
		{"turbidity 1000", KindTurbidity, 1000, TierPoor, 30},
		{"turbidity negative follows the < 1 band", KindTurbidity, -3, TierOptimal, 100},

		{"tds low", KindTDS, 0, TierOptimal, 100},
		{"tds 299", KindTDS, 299, TierOptimal, 100},
		{"tds 300", KindTDS, 300, TierAcceptable, 80},
		{"tds 599.9", KindTDS, 599.9, TierAcceptable, 80},
		{"tds 600", KindTDS, 600, TierMarginal, 55},
		{"tds 999", KindTDS, 999, TierMarginal, 55},
		{"tds 1000", KindTDS, 1000, TierPoor, 25},

		{"do 8", KindDissolvedOxygen, 8, TierOptimal, 100},
		{"do 12", KindDissolvedOxygen, 12, TierOptimal, 100},
		{"do 7.99", KindDissolvedOxygen, 7.99, TierAcceptable, 80},
		{"do 6", KindDissolvedOxygen, 6, TierAcceptable, 80},
		{"do 5.99", KindDissolvedOxygen, 5.99, TierMarginal, 50},
		{"do 4", KindDissolvedOxygen, 4, TierMarginal, 50},
		{"do 3.99", KindDissolvedOxygen, 3.99, TierPoor, 20},
		{"do 0", KindDissolvedOxygen, 0, TierPoor, 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateParameter(tc.kind, tc.value)
			if got.Status != tc.wantTier {
				t.Errorf("Status = %v, want %v", got.Status, tc.wantTier)
			}
			if got.Score != tc.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tc.wantScore)
			}
			if got.Value != tc.value {
				t.Errorf("Value = %v, want %v", got.Value, tc.value)
			}
			if got.Range == "" {
				t.Error("Range is empty")
			}
		})
	}
}

func TestEvaluateParameter_PHOptimalBand(t *testing.T) {
	for i := 650; i <= 850; i++ {
		v := float64(i) / 100
		got := EvaluateParameter(KindPH, v)
		if got.Status != TierOptimal || got.Score != 100 {
			t.Fatalf("pH %.2f: got %v/%d, want Optimal/100", v, got.Status, got.Score)
		}
	}
}

func TestEvaluateParameter_TurbidityPoorFrom25(t *testing.T) {
	for _, v := range []float64{25, 25.01, 30, 99.5, 250, 1e6} {
		got := EvaluateParameter(KindTurbidity, v)
		if got.Status != TierPoor || got.Score != 30 {
			t.Errorf("turbidity %.2f: got %v/%d, want Poor/30", v, got.Status, got.Score)
		}
	}
}

func TestEvaluateParameter_TurbidityMonotonic(t *testing.T) {
	prev := EvaluateParameter(KindTurbidity, -10).Score
	for i := -1000; i <= 5000; i++ {
		v := float64(i) / 100
		score := EvaluateParameter(KindTurbidity, v).Score
		if score > prev {
			t.Fatalf("turbidity %.2f: score rose from %d to %d", v, prev, score)
		}
		prev = score
	}
}

func TestEvaluateParameter_NaNIsPoor(t *testing.T) {
	for _, k := range []Kind{KindPH, KindTurbidity, KindTDS, KindDissolvedOxygen, KindCO2, KindPM25, KindPM10} {
		if got := EvaluateParameter(k, math.NaN()); got.Status != TierPoor {
			t.Errorf("%s NaN: Status = %v, want Poor", k, got.Status)
		}
	}
}

func TestEvaluateParameter_UnknownKind(t *testing.T) {
	got := EvaluateParameter(Kind("salinity"), 35)
	if got.Status != TierPoor {
		t.Errorf("Status = %v, want Poor", got.Status)
	}
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if got.Value != 35 {
		t.Errorf("Value = %v, want 35", got.Value)
	}
}

func TestEvaluateParameter_Labels(t *testing.T) {
	if got := EvaluateParameter(KindPH, 7).StatusLabel; got != "Tối ưu" {
		t.Errorf("default label: got %q, want Tối ưu", got)
	}
	if got := New(LocaleEN).Parameter(KindPH, 3).StatusLabel; got != "Poor" {
		t.Errorf("en label: got %q, want Poor", got)
	}
}

func TestInterval_Contains(t *testing.T) {
	tests := []struct {
		name string
		iv   Interval
		v    float64
		want bool
	}{
		{"closed lower bound", closed(1, 2), 1, true},
		{"closed upper bound", closed(1, 2), 2, true},
		{"half-open upper bound excluded", span(1, 2), 2, false},
		{"half-open lower bound included", span(1, 2), 1, true},
		{"open lower bound excluded", openClosed(1, 2), 1, false},
		{"below", below(1), math.Inf(-1), true},
		{"at least", atLeast(1), math.Inf(1), true},
		{"outside", closed(1, 2), 3, false},
	}
	for _, tc := range tests {
		if got := tc.iv.Contains(tc.v); got != tc.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", tc.name, tc.v, got, tc.want)
		}
	}
}
