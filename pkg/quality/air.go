package quality

import "github.com/ecolab/ecolab/pkg/types"

// AirParameters holds one result per scored air reading.
type AirParameters struct {
	CO2  ParameterResult `json:"co2"`
	PM25 ParameterResult `json:"pm25"`
	PM10 ParameterResult `json:"pm10"`
}

// AirResult is the full assessment of one air sample.
type AirResult struct {
	Level      AQILevel      `json:"level"`
	LevelLabel string        `json:"level_label"`
	Parameters AirParameters `json:"parameters"`
}

// Air grades an air sample. The AQI level is the worst tier among PM2.5,
// PM10 and CO2, so one bad reading is enough to downgrade the whole sample.
// Temperature and humidity are informational.
func (e Evaluator) Air(m types.AirMeasurement) AirResult {
	params := AirParameters{
		CO2:  e.Parameter(KindCO2, m.CO2),
		PM25: e.Parameter(KindPM25, m.PM25),
		PM10: e.Parameter(KindPM10, m.PM10),
	}

	worst := params.CO2.Status
	for _, t := range []Tier{params.PM25.Status, params.PM10.Status} {
		if t > worst {
			worst = t
		}
	}
	level := aqiFromTier(worst)

	return AirResult{
		Level:      level,
		LevelLabel: e.locale.catalog().level(level),
		Parameters: params,
	}
}

// EvaluateAir grades an air sample with DefaultLocale labels.
func EvaluateAir(m types.AirMeasurement) AirResult {
	return defaultEvaluator.Air(m)
}
