package ml

import (
	"math"
	"testing"

	"candidate-predictor/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func sampleVectors() []features.Vector {
	return []features.Vector{
		{5, 3, 5, 2, 2, 0.6, 0.8},
		{1, 1, 2, 0, 0, 0.2, 0.3},
		{3, 2, 4, 1, 1, 0.4, 0.6},
		{7, 4, 6, 3, 3, 0.8, 0.9},
		{2, 2, 3, 1, 1, 0.4, 0.5},
		{12, 5, 14, 4, 6, 1.0, 0.7},
	}
}

func TestStandardizer_ZeroMeanUnitVariance(t *testing.T) {
	rows := sampleVectors()
	s := NewStandardizer()
	require.NoError(t, s.Fit(rows))
	assert.True(t, s.Fitted())

	scaled, err := s.TransformAll(rows)
	require.NoError(t, err)

	column := make([]float64, len(scaled))
	for i := 0; i < features.Count; i++ {
		for r, row := range scaled {
			column[r] = row[i]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		assert.InDelta(t, 0, mean, 1e-9, "feature %d mean", i)
		assert.InDelta(t, 1, std, 1e-9, "feature %d std", i)
	}
}

func TestStandardizer_DegenerateFeatureStaysFinite(t *testing.T) {
	rows := []features.Vector{
		{1, 3, 0, 0, 0, 0.5, 0.5},
		{2, 3, 0, 0, 0, 0.5, 0.5},
	}
	s := NewStandardizer()
	require.NoError(t, s.Fit(rows))

	out, err := s.Transform(features.Vector{1.5, 4, 0, 0, 0, 0.5, 0.5})
	require.NoError(t, err)
	assert.True(t, out.Finite())
	assert.Equal(t, 0.0, out[0])
	assert.InDelta(t, 1/Epsilon, out[1], 1)
	assert.Equal(t, 0.0, out[2])
}

func TestStandardizer_Errors(t *testing.T) {
	s := NewStandardizer()

	_, err := s.Transform(features.Vector{})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, s.Fit(nil), ErrEmptyDataset)
	assert.False(t, s.Fitted())
}

func TestStandardizer_TransformDoesNotModifyInput(t *testing.T) {
	s := NewStandardizer()
	require.NoError(t, s.Fit(sampleVectors()))

	in := features.Vector{5, 3, 5, 2, 2, 0.6, 0.8}
	orig := in
	_, err := s.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, orig, in)
}

func TestStandardizer_StateRoundTrip(t *testing.T) {
	s := NewStandardizer()
	require.NoError(t, s.Fit(sampleVectors()))

	restored, err := RestoreStandardizer(s.State())
	require.NoError(t, err)
	assert.Equal(t, s.State(), restored.State())

	v := features.Vector{4, 2, 7, 1, 2, 0.3, 0.9}
	want, _ := s.Transform(v)
	got, err := restored.Transform(v)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = RestoreStandardizer(StandardizerState{Mean: []float64{1}, Std: []float64{1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStandardizer_ClampsExtremeValues(t *testing.T) {
	s := NewStandardizer()
	require.NoError(t, s.Fit(sampleVectors()))

	out, err := s.Transform(features.Vector{5, 3, 5, 2, 2, 1e308, -1e308})
	require.NoError(t, err)
	assert.Equal(t, MaxScaled, out[5])
	assert.Equal(t, -MaxScaled, out[6])

	// Finite results beyond the bound are clamped too.
	out, err = s.Transform(features.Vector{math.MaxFloat64, -math.MaxFloat64})
	require.NoError(t, err)
	assert.Equal(t, MaxScaled, out[0])
	assert.Equal(t, -MaxScaled, out[1])
	for _, v := range out {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
}
