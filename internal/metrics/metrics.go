// Package metrics provides Prometheus metrics collection for the candidate predictor.
// It defines and manages the prediction, training and HTTP metrics that are
// exposed via the Prometheus metrics endpoint for monitoring and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor.
type Metrics struct {
	// ML and prediction metrics
	MLPredictions      prometheus.Counter   // Total number of predictions served
	MLFailures         prometheus.Counter   // Total number of failed predictions and trainings
	MLModelAge         prometheus.Gauge     // Age of the serving model generation in seconds
	MLLatency          prometheus.Histogram // Prediction latency in seconds
	MLAccuracy         prometheus.Histogram // Held-out accuracy of trained models
	MLPredictionScores prometheus.Histogram // Distribution of predicted success probabilities
	MLTimeouts         prometheus.Counter   // Total number of predictions abandoned on deadline
	MLTrainings        prometheus.Counter   // Total number of successful trainings
	MLBootstraps       prometheus.Counter   // Total number of cold-start bootstraps

	// Record store metrics
	SurveyRecords prometheus.Counter // Total number of surveys stored

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec   // Requests by route and status code
	HTTPDuration *prometheus.HistogramVec // Request duration by route

	gatherer prometheus.Gatherer
}

// New creates and registers all Prometheus metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	m := &Metrics{
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of success probabilities served",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions and trainings",
		}),
		MLModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the serving model generation in seconds",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction latency in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		MLAccuracy: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "model_accuracy",
			Help:    "Held-out accuracy of trained models",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 10),
		}),
		MLPredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of predicted success probabilities",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		MLTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_timeouts_total",
			Help: "Total number of predictions abandoned on deadline",
		}),
		MLTrainings: factory.NewCounter(prometheus.CounterOpts{
			Name: "trainings_total",
			Help: "Total number of successful model trainings",
		}),
		MLBootstraps: factory.NewCounter(prometheus.CounterOpts{
			Name: "bootstrap_total",
			Help: "Total number of cold-start bootstraps on the synthetic set",
		}),
		SurveyRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "survey_records_total",
			Help: "Total number of candidate surveys stored",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Gatherer returns the registry the metrics were registered with, or the
// default gatherer when that registry cannot be gathered.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return m.gatherer
}

// GetErrorRate returns failures divided by served predictions, or 0 when
// nothing has been served or the registry cannot be gathered.
func (m *Metrics) GetErrorRate() float64 {
	if m.gatherer == nil {
		return 0
	}

	var total, failures float64

	metricFamilies, err := m.gatherer.Gather()
	if err != nil {
		return 0
	}

	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "predictions_total":
			for _, metric := range mf.Metric {
				total = metric.GetCounter().GetValue()
			}
		case "prediction_failures_total":
			for _, metric := range mf.Metric {
				failures = metric.GetCounter().GetValue()
			}
		}
	}

	// Avoid division by zero
	if total == 0 {
		return 0
	}

	return failures / total
}
