package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
)

const namespace = "ecolab"

// Transports a reading can arrive on.
const (
	TransportREST = "rest"
	TransportGRPC = "grpc"
)

// Recorder owns the server's Prometheus registry.
// All methods are safe for concurrent use.
type Recorder struct {
	reg         *prometheus.Registry
	evaluations *prometheus.CounterVec
	score       *prometheus.HistogramVec
	readings    *prometheus.CounterVec
	alerts      *prometheus.CounterVec
}

// New builds a Recorder. sessions is sampled at scrape time for the
// ecolab_sessions gauge; nil leaves the gauge out.
func New(sessions func() float64) *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Samples graded, by lab and resulting classification or AQI level.",
		}, []string{"lab", "classification"}),
		score: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_score",
			Help:      "Overall water score, or the lowest air parameter score.",
			Buckets:   []float64{20, 40, 60, 75, 90, 100},
		}, []string{"lab"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Readings accepted, by transport.",
		}, []string{"transport"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Alerts fired, by rule and severity.",
		}, []string{"rule", "severity"}),
	}

	r.reg.MustRegister(
		r.evaluations, r.score, r.readings, r.alerts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if sessions != nil {
		r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Lab sessions currently held in memory.",
		}, sessions))
	}
	return r
}

// ObserveWater records one graded water sample.
func (r *Recorder) ObserveWater(res quality.Result) {
	r.evaluations.WithLabelValues(string(types.LabWater), res.Classification.Key()).Inc()
	r.score.WithLabelValues(string(types.LabWater)).Observe(float64(res.OverallScore))
}

// ObserveAir records one graded air sample.
func (r *Recorder) ObserveAir(res quality.AirResult) {
	r.evaluations.WithLabelValues(string(types.LabAir), res.Level.Key()).Inc()

	p := res.Parameters
	lowest := p.CO2.Score
	for _, s := range []int{p.PM25.Score, p.PM10.Score} {
		if s < lowest {
			lowest = s
		}
	}
	r.score.WithLabelValues(string(types.LabAir)).Observe(float64(lowest))
}

// Reading counts one accepted reading on transport.
func (r *Recorder) Reading(transport string) {
	r.readings.WithLabelValues(transport).Inc()
}

// AlertFired counts one fired alert.
func (r *Recorder) AlertFired(rule, severity string) {
	r.alerts.WithLabelValues(rule, severity).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
