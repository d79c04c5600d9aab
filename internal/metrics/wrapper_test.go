package metrics

import (
	"context"
	"testing"

	"candidate-predictor/internal/features"
	"candidate-predictor/internal/ml"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWrapper(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != metrics {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_CounterOperations(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	// Initial value should be 0
	if v := testutil.ToFloat64(metrics.MLPredictions); v != 0 {
		t.Errorf("Expected initial counter value 0, got %f", v)
	}

	wrapper.MLPredictionsInc()
	wrapper.MLPredictionsInc()
	if v := testutil.ToFloat64(metrics.MLPredictions); v != 2 {
		t.Errorf("Expected counter value 2 after two increments, got %f", v)
	}

	wrapper.MLFailuresInc()
	wrapper.MLTimeoutsInc()
	wrapper.MLTrainingsInc()
	wrapper.MLBootstrapInc()
	wrapper.SurveysAdd(3)

	checks := map[string]prometheus.Collector{
		"failures":   metrics.MLFailures,
		"timeouts":   metrics.MLTimeouts,
		"trainings":  metrics.MLTrainings,
		"bootstraps": metrics.MLBootstraps,
	}
	for name, c := range checks {
		if v := testutil.ToFloat64(c); v != 1 {
			t.Errorf("Expected %s to be 1, got %f", name, v)
		}
	}
	if v := testutil.ToFloat64(metrics.SurveyRecords); v != 3 {
		t.Errorf("Expected 3 survey records, got %f", v)
	}
}

func TestMetricsWrapper_GaugeAndHistograms(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	wrapper.MLModelAgeSet(42)
	if v := testutil.ToFloat64(metrics.MLModelAge); v != 42 {
		t.Errorf("Expected model age 42, got %f", v)
	}

	wrapper.MLLatencyObserve(0.002)
	wrapper.MLAccuracyObserve(0.8)
	wrapper.MLPredictionScoresObserve(0.6)
	wrapper.ObserveRequest("/predict", "200", 0.01)

	if n := testutil.CollectAndCount(metrics.MLLatency); n != 1 {
		t.Errorf("Expected one latency series, got %d", n)
	}
	if v := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/predict", "200")); v != 1 {
		t.Errorf("Expected one /predict request, got %f", v)
	}
}

func TestMetrics_GetErrorRate(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)

	if rate := metrics.GetErrorRate(); rate != 0 {
		t.Errorf("Expected error rate 0 with no predictions, got %f", rate)
	}

	for i := 0; i < 4; i++ {
		metrics.MLPredictions.Inc()
	}
	metrics.MLFailures.Inc()

	if rate := metrics.GetErrorRate(); rate != 0.25 {
		t.Errorf("Expected error rate 0.25, got %f", rate)
	}
}

func TestMetricsWrapper_DrivenByPredictor(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)

	p, err := ml.NewPredictor(ml.DefaultConfig(), nil, NewWrapper(metrics))
	if err != nil {
		t.Fatalf("NewPredictor failed: %v", err)
	}

	candidate := features.Candidate{Years: 5, Education: 3, Skills: 5, JobChanges: 2, Certs: 2, Language: 0.6, InterviewPrep: 0.8}
	if _, err := p.Predict(context.Background(), candidate); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if v := testutil.ToFloat64(metrics.MLPredictions); v != 1 {
		t.Errorf("Expected 1 prediction, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.MLBootstraps); v != 1 {
		t.Errorf("Expected 1 bootstrap, got %f", v)
	}
	if n := testutil.CollectAndCount(metrics.MLPredictionScores); n != 1 {
		t.Errorf("Expected prediction score histogram to be collected, got %d", n)
	}
}
