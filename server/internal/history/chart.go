package history

import (
	"time"

	"github.com/ecolab/ecolab/pkg/types"
)

// tdsChartScale brings TDS (hundreds of ppm) onto the same axis as the
// other water readings.
const tdsChartScale = 10

// ChartPoint is one sample on the water trend chart.
type ChartPoint struct {
	Time            string    `json:"time"`
	Timestamp       time.Time `json:"timestamp"`
	PH              float64   `json:"ph"`
	Turbidity       float64   `json:"turbidity"`
	TDS             float64   `json:"tds"`
	DissolvedOxygen float64   `json:"dissolved_oxygen"`
}

// Chart converts water readings to chart points in the same order.
// TDS is divided by 10; the label is the reading's wall-clock time (HH:MM:SS).
func Chart(readings []types.Measurement) []ChartPoint {
	out := make([]ChartPoint, len(readings))
	for i, m := range readings {
		out[i] = ChartPoint{
			Time:            m.Timestamp.Format(time.TimeOnly),
			Timestamp:       m.Timestamp,
			PH:              m.PH,
			Turbidity:       m.Turbidity,
			TDS:             m.TDS / tdsChartScale,
			DissolvedOxygen: m.DissolvedOxygen,
		}
	}
	return out
}
