package ml

import (
	"fmt"
	"math"
	"math/rand"

	"candidate-predictor/internal/features"
)

// TrainTestSplit partitions examples with a seeded permutation. The test
// partition holds ceil(testFraction*n) rows, clamped so at least one row is
// left for training. A single example is used for both partitions.
func TrainTestSplit(examples []features.LabeledExample, testFraction float64, seed int64) (train, test []features.LabeledExample, err error) {
	n := len(examples)
	if n == 0 {
		return nil, nil, ErrEmptyDataset
	}
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, fmt.Errorf("%w: test fraction %v must be in (0, 1)", ErrInvalidInput, testFraction)
	}

	if n == 1 {
		only := []features.LabeledExample{examples[0]}
		return only, []features.LabeledExample{examples[0]}, nil
	}

	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	test = make([]features.LabeledExample, 0, nTest)
	for _, idx := range perm[:nTest] {
		test = append(test, examples[idx])
	}
	train = make([]features.LabeledExample, 0, n-nTest)
	for _, idx := range perm[nTest:] {
		train = append(train, examples[idx])
	}
	return train, test, nil
}
