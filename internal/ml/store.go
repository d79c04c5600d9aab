package ml

import (
	"fmt"

	"candidate-predictor/internal/features"
)

// ClassifierState is the persisted form of a Classifier.
type ClassifierState struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// StandardizerState is the persisted form of a fitted Standardizer.
type StandardizerState struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// ModelStore persists a trained classifier and its standardizer as a pair.
// Save must never leave a single half that a later Load accepts.
type ModelStore interface {
	Save(classifier ClassifierState, standardizer StandardizerState) error
	// Load returns ErrNotFound when no complete pair exists.
	Load() (ClassifierState, StandardizerState, error)
	// Exists reports whether both halves are present.
	Exists() bool
}

// ValidateStates checks both states against the feature layout.
func ValidateStates(c ClassifierState, s StandardizerState) error {
	if len(c.Weights) != features.Count {
		return fmt.Errorf("%w: classifier has %d weights, expected %d", ErrInvalidInput, len(c.Weights), features.Count)
	}
	if len(s.Mean) != features.Count || len(s.Std) != features.Count {
		return fmt.Errorf("%w: standardizer has %d means and %d deviations, expected %d", ErrInvalidInput, len(s.Mean), len(s.Std), features.Count)
	}
	return nil
}
