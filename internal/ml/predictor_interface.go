// Package ml estimates the probability that a candidate's job application
// succeeds. It includes the feature standardizer, a logistic regression
// classifier trained by full-batch gradient descent, weight-based feature
// importance, and the Predictor that trains, loads or bootstraps a model
// generation and serves probabilities from it.
//
// The package never touches durable storage directly; persistence goes
// through the ModelStore interface implemented by internal/storage.
package ml

import (
	"context"

	"candidate-predictor/internal/features"
)

// PredictorInterface is the surface other subsystems depend on.
type PredictorInterface interface {
	// Predict returns the probability in [0,1] that the application succeeds.
	Predict(ctx context.Context, record features.Record) (float64, error)

	// Approve reports whether the success probability reaches threshold.
	Approve(ctx context.Context, record features.Record, threshold float64) (bool, error)

	// FeatureImportance ranks features by the magnitude of their weights.
	FeatureImportance() ([]Importance, error)
}

var _ PredictorInterface = (*Predictor)(nil)
