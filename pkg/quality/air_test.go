package quality

import (
	"testing"

	"github.com/ecolab/ecolab/pkg/types"
)

func air(co2, pm25, pm10 float64) types.AirMeasurement {
	return types.AirMeasurement{CO2: co2, PM25: pm25, PM10: pm10, Temperature: 25, Humidity: 60}
}

func TestEvaluateAir(t *testing.T) {
	tests := []struct {
		name  string
		in    types.AirMeasurement
		want  AQILevel
		label string
	}{
		{"defaults", air(400, 12, 20), AQIGood, "Tốt"},
		{"pm25 just over good", air(400, 12.5, 20), AQIModerate, "Trung bình"},
		{"co2 1000 inclusive", air(1000, 5, 5), AQIUnhealthy, "Kém"},
		{"co2 1001", air(1001, 5, 5), AQIHazardous, "Nguy hại"},
		{"pm10 250 inclusive", air(400, 5, 250), AQIUnhealthy, "Kém"},
		{"pm10 251", air(400, 5, 251), AQIHazardous, "Nguy hại"},
		{"worst parameter wins", air(600, 40, 20), AQIUnhealthy, "Kém"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := EvaluateAir(tc.in)
			if r.Level != tc.want {
				t.Errorf("Level = %v, want %v", r.Level, tc.want)
			}
			if r.LevelLabel != tc.label {
				t.Errorf("LevelLabel = %q, want %q", r.LevelLabel, tc.label)
			}
		})
	}
}

// cascade is the lab's AQI ladder: each rung checks every pollutant against
// its inclusive bound before moving to the next.
func cascade(m types.AirMeasurement) AQILevel {
	switch {
	case m.PM25 <= 12 && m.PM10 <= 50 && m.CO2 <= 500:
		return AQIGood
	case m.PM25 <= 35 && m.PM10 <= 150 && m.CO2 <= 800:
		return AQIModerate
	case m.PM25 <= 55 && m.PM10 <= 250 && m.CO2 <= 1000:
		return AQIUnhealthy
	default:
		return AQIHazardous
	}
}

func TestEvaluateAir_MatchesCascade(t *testing.T) {
	for co2 := 300.0; co2 <= 1200; co2 += 50 {
		for pm25 := 0.0; pm25 <= 70; pm25 += 3.5 {
			for pm10 := 0.0; pm10 <= 300; pm10 += 25 {
				m := air(co2, pm25, pm10)
				if got, want := EvaluateAir(m).Level, cascade(m); got != want {
					t.Fatalf("%+v: Level = %v, want %v", m, got, want)
				}
			}
		}
	}
}

func TestEvaluateAir_EnglishLabels(t *testing.T) {
	r := New(LocaleEN).Air(air(1500, 80, 400))
	if r.LevelLabel != "Hazardous" {
		t.Errorf("LevelLabel = %q, want Hazardous", r.LevelLabel)
	}
	if r.Parameters.CO2.StatusLabel != "Poor" {
		t.Errorf("co2 StatusLabel = %q, want Poor", r.Parameters.CO2.StatusLabel)
	}
}
