package metrics

import "candidate-predictor/internal/ml"

// MetricsWrapper adapts Metrics to the predictor's metrics interface.
type MetricsWrapper struct {
	m *Metrics
}

var _ ml.MetricsInterface = (*MetricsWrapper)(nil)

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) MLPredictionsInc() {
	w.m.MLPredictions.Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	w.m.MLFailures.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(v float64) {
	w.m.MLLatency.Observe(v)
}

func (w *MetricsWrapper) MLModelAgeSet(v float64) {
	w.m.MLModelAge.Set(v)
}

func (w *MetricsWrapper) MLAccuracyObserve(v float64) {
	w.m.MLAccuracy.Observe(v)
}

func (w *MetricsWrapper) MLPredictionScoresObserve(v float64) {
	w.m.MLPredictionScores.Observe(v)
}

func (w *MetricsWrapper) MLTimeoutsInc() {
	w.m.MLTimeouts.Inc()
}

func (w *MetricsWrapper) MLTrainingsInc() {
	w.m.MLTrainings.Inc()
}

func (w *MetricsWrapper) MLBootstrapInc() {
	w.m.MLBootstraps.Inc()
}

// SurveysAdd records n newly stored surveys.
func (w *MetricsWrapper) SurveysAdd(n int) {
	w.m.SurveyRecords.Add(float64(n))
}

// ObserveRequest records one HTTP request.
func (w *MetricsWrapper) ObserveRequest(route, code string, seconds float64) {
	w.m.HTTPRequests.WithLabelValues(route, code).Inc()
	w.m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}
