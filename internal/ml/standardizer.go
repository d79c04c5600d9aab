package ml

import (
	"fmt"
	"math"

	"candidate-predictor/internal/features"

	"gonum.org/v1/gonum/stat"
)

// Epsilon replaces a zero standard deviation so degenerate features
// transform to finite values.
const Epsilon = 1e-8

// MaxScaled bounds every standardized value so the classifier's linear
// term stays finite for any finite input.
const MaxScaled = 1e150

// Standardizer scales each feature to zero mean and unit variance using
// statistics frozen at Fit time.
type Standardizer struct {
	mean   features.Vector
	std    features.Vector
	fitted bool
}

func NewStandardizer() *Standardizer {
	return &Standardizer{}
}

// Fit computes the population mean and standard deviation of every feature.
func (s *Standardizer) Fit(rows []features.Vector) error {
	if len(rows) == 0 {
		return ErrEmptyDataset
	}

	column := make([]float64, len(rows))
	for i := 0; i < features.Count; i++ {
		for r, row := range rows {
			column[r] = row[i]
		}
		s.mean[i], s.std[i] = stat.PopMeanStdDev(column, nil)
	}
	s.fitted = true
	return nil
}

// Transform returns (v - mean) / std clamped to [-MaxScaled, MaxScaled].
// v is not modified.
func (s *Standardizer) Transform(v features.Vector) (features.Vector, error) {
	if !s.fitted {
		return features.Vector{}, ErrNotFitted
	}

	var out features.Vector
	for i := range v {
		std := s.std[i]
		if std == 0 {
			std = Epsilon
		}
		out[i] = math.Max(-MaxScaled, math.Min(MaxScaled, (v[i]-s.mean[i])/std))
	}
	return out, nil
}

func (s *Standardizer) TransformAll(rows []features.Vector) ([]features.Vector, error) {
	out := make([]features.Vector, len(rows))
	for i, row := range rows {
		t, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (s *Standardizer) Fitted() bool {
	return s.fitted
}

func (s *Standardizer) State() StandardizerState {
	return StandardizerState{
		Mean: s.mean.Slice(),
		Std:  s.std.Slice(),
	}
}

// RestoreStandardizer rebuilds a fitted Standardizer from persisted state.
func RestoreStandardizer(state StandardizerState) (*Standardizer, error) {
	if len(state.Mean) != features.Count || len(state.Std) != features.Count {
		return nil, fmt.Errorf("%w: standardizer state has %d means and %d deviations", ErrInvalidInput, len(state.Mean), len(state.Std))
	}

	s := &Standardizer{fitted: true}
	copy(s.mean[:], state.Mean)
	copy(s.std[:], state.Std)
	return s, nil
}
