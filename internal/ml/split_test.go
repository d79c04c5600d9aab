package ml

import (
	"sort"
	"testing"

	"candidate-predictor/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedExamples(n int) []features.LabeledExample {
	out := make([]features.LabeledExample, n)
	for i := range out {
		out[i] = features.LabeledExample{
			Features:  features.Vector{float64(i)},
			Succeeded: i%2 == 0,
		}
	}
	return out
}

func ids(examples []features.LabeledExample) []int {
	out := make([]int, len(examples))
	for i, ex := range examples {
		out[i] = int(ex.Features[0])
	}
	return out
}

func TestTrainTestSplit_Sizes(t *testing.T) {
	tests := []struct {
		n, train, test int
		fraction       float64
	}{
		{n: 5, train: 4, test: 1, fraction: 0.2},
		{n: 10, train: 8, test: 2, fraction: 0.2},
		{n: 11, train: 8, test: 3, fraction: 0.2},
		{n: 2, train: 1, test: 1, fraction: 0.2},
		{n: 3, train: 1, test: 2, fraction: 0.9},
	}

	for _, tt := range tests {
		train, test, err := TrainTestSplit(numberedExamples(tt.n), tt.fraction, 42)
		require.NoError(t, err)
		assert.Len(t, train, tt.train, "n=%d", tt.n)
		assert.Len(t, test, tt.test, "n=%d", tt.n)

		all := append(ids(train), ids(test)...)
		sort.Ints(all)
		for i, id := range all {
			assert.Equal(t, i, id, "partitions must cover every example once")
		}
	}
}

func TestTrainTestSplit_SingleExample(t *testing.T) {
	train, test, err := TrainTestSplit(numberedExamples(1), 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, test)
	assert.Len(t, train, 1)
}

func TestTrainTestSplit_Seeded(t *testing.T) {
	examples := numberedExamples(30)

	trainA, testA, err := TrainTestSplit(examples, 0.2, 42)
	require.NoError(t, err)
	trainB, testB, err := TrainTestSplit(examples, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, ids(trainA), ids(trainB))
	assert.Equal(t, ids(testA), ids(testB))
	assert.Equal(t, ids(numberedExamples(30)), ids(examples), "input order must not change")
}

func TestTrainTestSplit_Errors(t *testing.T) {
	_, _, err := TrainTestSplit(nil, 0.2, 42)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	for _, f := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := TrainTestSplit(numberedExamples(5), f, 42)
		assert.ErrorIs(t, err, ErrInvalidInput, "fraction %v", f)
	}
}
