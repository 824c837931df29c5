package simulator

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/ecolab/ecolab/agent/internal/config"
	"github.com/ecolab/ecolab/pkg/labrpc"
	"github.com/ecolab/ecolab/pkg/types"
)

// maxExcursion bounds the walk to this fraction of the baseline either side.
const maxExcursion = 0.5

// limits are the physical bounds of each reading.
type limits struct{ lo, hi float64 }

var (
	nonNegative = limits{0, math.Inf(1)}
	phScale     = limits{0, 14}
	percent     = limits{0, 100}
	anyValue    = limits{math.Inf(-1), math.Inf(1)}
)

// Meter produces successive readings for one session. It is not safe for
// concurrent use.
type Meter struct {
	cfg config.Meter
	rng *rand.Rand

	waterBase, water types.Measurement
	airBase, air     types.AirMeasurement
}

// NewMeter starts a meter at its baseline. A missing baseline falls back to
// the lab defaults.
func NewMeter(cfg config.Meter) *Meter {
	seed := cfg.Seed
	if seed == 0 {
		seed = seedFor(cfg.SessionID)
	}
	m := &Meter{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // simulation, not crypto
		waterBase: types.DefaultMeasurement(time.Time{}),
		airBase:   types.DefaultAirMeasurement(time.Time{}),
	}
	if cfg.Water != nil {
		m.waterBase = *cfg.Water
	}
	if cfg.Air != nil {
		m.airBase = *cfg.Air
	}
	m.water, m.air = m.waterBase, m.airBase
	return m
}

// seedFor derives a stable seed from the session ID.
func seedFor(session string) int64 {
	h := fnv.New64a()
	h.Write([]byte(session)) //nolint:errcheck
	return int64(h.Sum64() >> 1)
}

// Config returns the settings the meter was built from.
func (m *Meter) Config() config.Meter {
	return m.cfg
}

// Next advances the walk one step and returns the reading, stamped at now.
func (m *Meter) Next(now time.Time) *labrpc.ReadingRequest {
	req := &labrpc.ReadingRequest{
		SessionID: m.cfg.SessionID,
		MeterID:   m.cfg.ID,
		Lab:       m.cfg.Lab,
	}

	switch m.cfg.Lab {
	case types.LabAir:
		base := m.airBase
		m.air.CO2 = m.step(m.air.CO2, base.CO2, nonNegative)
		m.air.PM25 = m.step(m.air.PM25, base.PM25, nonNegative)
		m.air.PM10 = m.step(m.air.PM10, base.PM10, nonNegative)
		m.air.Temperature = m.step(m.air.Temperature, base.Temperature, anyValue)
		m.air.Humidity = m.step(m.air.Humidity, base.Humidity, percent)
		m.air.Timestamp = now
		air := m.air
		req.Air = &air

	default:
		base := m.waterBase
		m.water.PH = m.step(m.water.PH, base.PH, phScale)
		m.water.Turbidity = m.step(m.water.Turbidity, base.Turbidity, nonNegative)
		m.water.TDS = m.step(m.water.TDS, base.TDS, nonNegative)
		m.water.Temperature = m.step(m.water.Temperature, base.Temperature, anyValue)
		m.water.DissolvedOxygen = m.step(m.water.DissolvedOxygen, base.DissolvedOxygen, nonNegative)
		m.water.Timestamp = now
		water := m.water
		req.Water = &water
	}
	return req
}

// step moves v by a random amount of at most drift×|base| and clamps it to
// the excursion band and the physical limits. A zero baseline walks in
// absolute units instead.
func (m *Meter) step(v, base float64, lim limits) float64 {
	scale := math.Abs(base)
	if scale == 0 {
		scale = 1
	}
	v += (m.rng.Float64()*2 - 1) * m.cfg.Drift * scale

	lo := math.Max(base-maxExcursion*scale, lim.lo)
	hi := math.Min(base+maxExcursion*scale, lim.hi)
	return math.Min(math.Max(v, lo), hi)
}
