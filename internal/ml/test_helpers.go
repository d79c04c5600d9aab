package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu               sync.Mutex
	predictions      int
	failures         int
	latencySum       float64
	accuracySum      float64
	timeouts         int
	trainings        int
	bootstraps       int
	modelAge         float64
	predictionScores []float64
}

func (m *MockMetrics) MLPredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

func (m *MockMetrics) MLAccuracyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accuracySum += v
}

func (m *MockMetrics) MLPredictionScoresObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionScores = append(m.predictionScores, v)
}

func (m *MockMetrics) MLTimeoutsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts++
}

func (m *MockMetrics) MLTrainingsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainings++
}

func (m *MockMetrics) MLBootstrapInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bootstraps++
}

// Counts returns predictions, failures, trainings and bootstraps so far.
func (m *MockMetrics) Counts() (predictions, failures, trainings, bootstraps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions, m.failures, m.trainings, m.bootstraps
}

// Scores returns a copy of the observed prediction scores.
func (m *MockMetrics) Scores() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.predictionScores))
	copy(out, m.predictionScores)
	return out
}

// MemoryStore is a ModelStore that keeps the saved pair in memory.
type MemoryStore struct {
	mu           sync.Mutex
	classifier   *ClassifierState
	standardizer *StandardizerState
	saves        int
	SaveErr      error
	LoadErr      error
}

func (s *MemoryStore) Save(c ClassifierState, st StandardizerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.classifier, s.standardizer = &c, &st
	s.saves++
	return nil
}

func (s *MemoryStore) Load() (ClassifierState, StandardizerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return ClassifierState{}, StandardizerState{}, s.LoadErr
	}
	if s.classifier == nil || s.standardizer == nil {
		return ClassifierState{}, StandardizerState{}, ErrNotFound
	}
	return *s.classifier, *s.standardizer, nil
}

func (s *MemoryStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classifier != nil && s.standardizer != nil
}

// Saves returns the number of successful saves.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
