package ml

import (
	"sync"
	"time"
)

// DefaultHistoryLimit bounds the number of generations kept in ModelHistory.
const DefaultHistoryLimit = 20

// ModelVersion describes one model generation served by a Predictor.
type ModelVersion struct {
	Version   string       `json:"version"`
	Source    Source       `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
	Metrics   ModelMetrics `json:"metrics"`
	IsActive  bool         `json:"is_active"`
}

// ModelMetrics contains the held-out performance of a trained generation.
// Loaded and bootstrapped generations carry only the sample count.
type ModelMetrics struct {
	Accuracy        float64 `json:"accuracy"`
	F1Score         float64 `json:"f1_score"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	ApprovalRate    float64 `json:"approval_rate"`
	TrainingSamples int     `json:"training_samples"`
	TestSamples     int     `json:"test_samples"`
}

// ModelHistory records generations newest first, with at most one active.
type ModelHistory struct {
	mu       sync.Mutex
	limit    int
	versions []ModelVersion
}

func NewModelHistory(limit int) *ModelHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ModelHistory{limit: limit}
}

// Record adds v as the active version.
func (h *ModelHistory) Record(v ModelVersion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.versions {
		h.versions[i].IsActive = false
	}
	v.IsActive = true
	h.versions = append([]ModelVersion{v}, h.versions...)
	if len(h.versions) > h.limit {
		h.versions = h.versions[:h.limit]
	}
}

// Deactivate clears the active flag on every version.
func (h *ModelHistory) Deactivate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.versions {
		h.versions[i].IsActive = false
	}
}

// Current returns the active version, if any.
func (h *ModelHistory) Current() (ModelVersion, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, v := range h.versions {
		if v.IsActive {
			return v, true
		}
	}
	return ModelVersion{}, false
}

// List returns a copy of all recorded versions, newest first.
func (h *ModelHistory) List() []ModelVersion {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]ModelVersion, len(h.versions))
	copy(out, h.versions)
	return out
}
