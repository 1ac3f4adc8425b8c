package monitoring

import (
	"errors"
	"net/http"
	"time"

	"estimahome/ml"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "estimahome"

// Outcome labels for served estimates.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	predictions     *prometheus.CounterVec
	failures        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	price           prometheus.Histogram
	artifactsLoaded prometheus.Gauge
	artifactsStale  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Estimates requested, by transport and outcome.",
		}, []string{"transport", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Pipeline failures by stage.",
		}, []string{"stage"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent running the estimate pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.000005, 4, 10),
		}, []string{"transport"}),
		price: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predicted_price_dollars",
			Help:      "Distribution of served price estimates.",
			Buckets:   []float64{50000, 100000, 150000, 200000, 300000, 400000, 500000, 750000, 1000000},
		}),
		artifactsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifacts_loaded",
			Help:      "1 when the model artifacts loaded and prediction is available.",
		}),
		artifactsStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifacts_stale",
			Help:      "1 when an artifact changed on disk after load.",
		}),
	}
	m.registry.MustRegister(m.predictions, m.failures, m.latency, m.price, m.artifactsLoaded, m.artifactsStale)
	return m
}

// ObservePrediction records one estimate attempt.
func (m *Metrics) ObservePrediction(transport string, elapsed time.Duration, estimate ml.Estimate, err error) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(transport).Observe(elapsed.Seconds())
	switch {
	case err == nil:
		m.predictions.WithLabelValues(transport, OutcomeOK).Inc()
		m.price.Observe(estimate.Price)
	case errors.Is(err, ml.ErrUnavailable):
		m.predictions.WithLabelValues(transport, OutcomeUnavailable).Inc()
	default:
		m.predictions.WithLabelValues(transport, OutcomeFailed).Inc()
		if stage, ok := ml.FailedStage(err); ok {
			m.failures.WithLabelValues(string(stage)).Inc()
		}
	}
}

func (m *Metrics) SetArtifactsLoaded(loaded bool) {
	if m == nil {
		return
	}
	m.artifactsLoaded.Set(boolGauge(loaded))
}

func (m *Metrics) SetArtifactsStale(stale bool) {
	if m == nil {
		return
	}
	m.artifactsStale.Set(boolGauge(stale))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
