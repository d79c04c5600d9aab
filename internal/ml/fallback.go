package ml

import "candidate-predictor/internal/features"

// bootstrapSet is the hand-labeled cold-start training set, used when no
// persisted model exists. Vectors follow features.Vector field order.
var bootstrapSet = [...]features.LabeledExample{
	{Features: features.Vector{5, 3, 5, 2, 2, 0.6, 0.8}, Succeeded: true},
	{Features: features.Vector{1, 1, 2, 0, 0, 0.2, 0.3}, Succeeded: false},
	{Features: features.Vector{3, 2, 4, 1, 1, 0.4, 0.6}, Succeeded: true},
	{Features: features.Vector{7, 4, 6, 3, 3, 0.8, 0.9}, Succeeded: true},
	{Features: features.Vector{2, 2, 3, 1, 1, 0.4, 0.5}, Succeeded: false},
}

// BootstrapExamples returns a copy of the cold-start training set.
func BootstrapExamples() []features.LabeledExample {
	out := make([]features.LabeledExample, len(bootstrapSet))
	copy(out, bootstrapSet[:])
	return out
}

// fitBootstrap trains a standardizer and classifier on every bootstrap row.
// No split is made; the set is too small to hold rows out.
func fitBootstrap(learningRate float64, iterations int) (*Standardizer, *Classifier, FitResult, error) {
	return fitModel(BootstrapExamples(), learningRate, iterations)
}

func fitModel(examples []features.LabeledExample, learningRate float64, iterations int) (*Standardizer, *Classifier, FitResult, error) {
	std := NewStandardizer()
	if err := std.Fit(features.Vectors(examples)); err != nil {
		return nil, nil, FitResult{}, err
	}

	scaled, err := std.TransformAll(features.Vectors(examples))
	if err != nil {
		return nil, nil, FitResult{}, err
	}

	clf := NewClassifier(features.Count)
	res, err := clf.Fit(VectorsToDense(scaled), features.Labels(examples), learningRate, iterations)
	if err != nil {
		return nil, nil, FitResult{}, err
	}
	return std, clf, res, nil
}
