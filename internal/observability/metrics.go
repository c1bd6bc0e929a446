package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reversesingularity/phobetron-orbital/model"
)

// PropagationCollector bundles Prometheus metrics for the ephemeris engine
// and provides a ready-to-serve /metrics handler. It satisfies the engine's
// PropagationRecorder interface so the engine can drive metric values
// directly from its tick loop.
type PropagationCollector struct {
	gatherer prometheus.Gatherer

	Propagations *prometheus.CounterVec
	Durations    *prometheus.HistogramVec

	EpochJD prometheus.Gauge
	Bodies  prometheus.Gauge
}

// NewPropagationCollector registers propagation Prometheus metrics against
// the provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewPropagationCollector(reg prometheus.Registerer) (*PropagationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	propagations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephemeris_propagations_total",
		Help: "Total number of per-body propagation calls, labeled by body kind and outcome.",
	}, []string{"kind", "outcome"})
	propagations, err := registerCounterVec(reg, propagations, "ephemeris_propagations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ephemeris_propagation_duration_seconds",
		Help:    "Per-body propagation latency in seconds.",
		Buckets: []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
	}, []string{"kind"})
	durations, err = registerHistogramVec(reg, durations, "ephemeris_propagation_duration_seconds")
	if err != nil {
		return nil, err
	}

	epoch, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ephemeris_epoch_jd",
		Help: "Simulated epoch of the most recent tick, as a Julian date.",
	}), "ephemeris_epoch_jd")
	if err != nil {
		return nil, err
	}
	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ephemeris_registry_bodies",
		Help: "Current number of bodies in the registry.",
	}), "ephemeris_registry_bodies")
	if err != nil {
		return nil, err
	}

	return &PropagationCollector{
		gatherer:     gatherer,
		Propagations: propagations,
		Durations:    durations,
		EpochJD:      epoch,
		Bodies:       bodies,
	}, nil
}

// RecordPropagation counts one propagation call and, for successful calls,
// observes its latency.
func (c *PropagationCollector) RecordPropagation(kind model.Kind, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.Propagations != nil {
		c.Propagations.WithLabelValues(kind.String(), outcome).Inc()
	}
	if c.Durations != nil && elapsed > 0 {
		c.Durations.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
	}
}

// SetEpoch records the simulated epoch of the current tick.
func (c *PropagationCollector) SetEpoch(epochJD float64) {
	if c == nil || c.EpochJD == nil {
		return
	}
	c.EpochJD.Set(epochJD)
}

// SetBodyCount records the registry size seen by the current tick.
func (c *PropagationCollector) SetBodyCount(n int) {
	if c == nil || c.Bodies == nil {
		return
	}
	c.Bodies.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PropagationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
