package types

import (
	"math"
	"time"
)

// Lab identifies which virtual experiment a reading belongs to.
type Lab string

const (
	LabWater Lab = "water"
	LabAir   Lab = "air"
)

// Valid reports whether l is a known lab.
func (l Lab) Valid() bool {
	return l == LabWater || l == LabAir
}

// Measurement is one set of water readings taken together.
type Measurement struct {
	PH              float64   `json:"ph" yaml:"ph"`
	Turbidity       float64   `json:"turbidity" yaml:"turbidity"`               // NTU
	TDS             float64   `json:"tds" yaml:"tds"`                           // ppm
	Temperature     float64   `json:"temperature" yaml:"temperature"`           // °C, informational
	DissolvedOxygen float64   `json:"dissolved_oxygen" yaml:"dissolved_oxygen"` // mg/L
	Timestamp       time.Time `json:"timestamp" yaml:"-"`
}

// Finite reports whether every numeric reading is a finite number.
func (m Measurement) Finite() bool {
	return allFinite(m.PH, m.Turbidity, m.TDS, m.Temperature, m.DissolvedOxygen)
}

// AirMeasurement is one set of air readings taken together.
type AirMeasurement struct {
	CO2         float64   `json:"co2" yaml:"co2"`   // ppm
	PM25        float64   `json:"pm25" yaml:"pm25"` // µg/m³
	PM10        float64   `json:"pm10" yaml:"pm10"` // µg/m³
	Temperature float64   `json:"temperature" yaml:"temperature"`
	Humidity    float64   `json:"humidity" yaml:"humidity"` // %
	Timestamp   time.Time `json:"timestamp" yaml:"-"`
}

// Finite reports whether every numeric reading is a finite number.
func (m AirMeasurement) Finite() bool {
	return allFinite(m.CO2, m.PM25, m.PM10, m.Temperature, m.Humidity)
}

// DefaultMeasurement returns the reading a fresh water lab starts from.
func DefaultMeasurement(now time.Time) Measurement {
	return Measurement{
		PH:              7.0,
		Turbidity:       5,
		TDS:             250,
		Temperature:     25,
		DissolvedOxygen: 8,
		Timestamp:       now,
	}
}

// DefaultAirMeasurement returns the reading a fresh air lab starts from.
func DefaultAirMeasurement(now time.Time) AirMeasurement {
	return AirMeasurement{
		CO2:         400,
		PM25:        12,
		PM10:        20,
		Temperature: 25,
		Humidity:    60,
		Timestamp:   now,
	}
}

func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
