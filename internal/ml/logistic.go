package ml

import (
	"fmt"
	"math"

	"candidate-predictor/internal/features"

	"gonum.org/v1/gonum/mat"
)

// CostEpsilon keeps log() finite in the cross-entropy cost.
const CostEpsilon = 1e-15

// Classifier is a binary logistic regression model:
// p(y=1|x) = sigmoid(w·x + b).
type Classifier struct {
	n       int
	weights *mat.VecDense
	bias    float64
}

// FitResult summarizes a gradient descent run.
type FitResult struct {
	Iterations int     `json:"iterations"`
	FinalCost  float64 `json:"final_cost"`
}

func NewClassifier(nFeatures int) *Classifier {
	c := &Classifier{n: nFeatures}
	c.Initialize()
	return c
}

// Initialize zeroes the weights and bias.
func (c *Classifier) Initialize() {
	c.weights = mat.NewVecDense(c.n, nil)
	c.bias = 0
}

// Fit runs exactly iterations steps of full-batch gradient descent on X
// (one row per example) and 0/1 labels y. Parameters are re-initialized
// first, so every call trains from scratch.
func (c *Classifier) Fit(X mat.Matrix, y []float64, learningRate float64, iterations int) (FitResult, error) {
	m, n := dims(X)
	if m == 0 {
		return FitResult{}, ErrEmptyDataset
	}
	if n != c.n {
		return FitResult{}, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, c.n, n)
	}
	if len(y) != m {
		return FitResult{}, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidInput, m, len(y))
	}
	if learningRate <= 0 || iterations <= 0 {
		return FitResult{}, fmt.Errorf("%w: learning rate %v and iterations %d must be positive", ErrInvalidInput, learningRate, iterations)
	}

	c.Initialize()

	z := mat.NewVecDense(m, nil)
	dz := mat.NewVecDense(m, nil)
	dw := mat.NewVecDense(n, nil)
	scale := learningRate / float64(m)

	for it := 0; it < iterations; it++ {
		z.MulVec(X, c.weights)
		for i := 0; i < m; i++ {
			dz.SetVec(i, sigmoid(z.AtVec(i)+c.bias)-y[i])
		}
		dw.MulVec(X.T(), dz)
		db := mat.Sum(dz) / float64(m)

		c.weights.AddScaledVec(c.weights, -scale, dw)
		c.bias -= learningRate * db
	}

	return FitResult{Iterations: iterations, FinalCost: c.Cost(X, y)}, nil
}

// Cost is the mean binary cross-entropy of the current parameters on X, y.
func (c *Classifier) Cost(X mat.Matrix, y []float64) float64 {
	p := c.proba(X)
	if len(p) == 0 {
		return 0
	}

	var sum float64
	for i, pi := range p {
		sum += y[i]*math.Log(pi+CostEpsilon) + (1-y[i])*math.Log(1-pi+CostEpsilon)
	}
	return -sum / float64(len(p))
}

// PredictProba returns sigmoid(Xw + b) for every row of X. A row whose
// linear term is NaN fails with ErrInvalidInput.
func (c *Classifier) PredictProba(X mat.Matrix) ([]float64, error) {
	if _, n := dims(X); n != 0 && n != c.n {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, c.n, n)
	}

	probs := c.proba(X)
	for i, p := range probs {
		if math.IsNaN(p) {
			return nil, fmt.Errorf("%w: row %d has an undefined linear term", ErrInvalidInput, i)
		}
	}
	return probs, nil
}

// proba is PredictProba without the NaN check.
func (c *Classifier) proba(X mat.Matrix) []float64 {
	m, _ := dims(X)
	if m == 0 {
		return nil
	}

	z := mat.NewVecDense(m, nil)
	z.MulVec(X, c.weights)

	out := make([]float64, m)
	for i := range out {
		out[i] = sigmoid(z.AtVec(i) + c.bias)
	}
	return out
}

// Probability scores a single row. An infinite linear term saturates to 0
// or 1; a NaN one fails with ErrInvalidInput.
func (c *Classifier) Probability(x []float64) (float64, error) {
	if len(x) != c.n {
		return 0, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, c.n, len(x))
	}

	z := mat.Dot(c.weights, mat.NewVecDense(c.n, x)) + c.bias
	if math.IsNaN(z) {
		return 0, fmt.Errorf("%w: undefined linear term", ErrInvalidInput)
	}
	return sigmoid(z), nil
}

// Predict returns 1 where PredictProba >= threshold, else 0.
func (c *Classifier) Predict(X mat.Matrix, threshold float64) ([]int, error) {
	probs, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(probs))
	for i, p := range probs {
		if p >= threshold {
			out[i] = 1
		}
	}
	return out, nil
}

// Trained reports whether any weight is non-zero.
func (c *Classifier) Trained() bool {
	for i := 0; i < c.n; i++ {
		if c.weights.AtVec(i) != 0 {
			return true
		}
	}
	return false
}

// FeatureImportance ranks names by |weight|, largest first.
func (c *Classifier) FeatureImportance(names []string) ([]Importance, error) {
	if !c.Trained() {
		return nil, ErrNotTrained
	}
	if len(names) != c.n {
		return nil, fmt.Errorf("%w: %d names for %d weights", ErrInvalidInput, len(names), c.n)
	}

	ranking := make([]Importance, c.n)
	for i, name := range names {
		ranking[i] = Importance{Name: name, Magnitude: math.Abs(c.weights.AtVec(i))}
	}
	sortImportance(ranking)
	return ranking, nil
}

func (c *Classifier) Weights() []float64 {
	out := make([]float64, c.n)
	copy(out, c.weights.RawVector().Data)
	return out
}

func (c *Classifier) Bias() float64 {
	return c.bias
}

func (c *Classifier) State() ClassifierState {
	return ClassifierState{Weights: c.Weights(), Bias: c.bias}
}

// RestoreClassifier rebuilds a Classifier from persisted state.
func RestoreClassifier(state ClassifierState) (*Classifier, error) {
	if len(state.Weights) == 0 {
		return nil, fmt.Errorf("%w: classifier state has no weights", ErrInvalidInput)
	}

	w := make([]float64, len(state.Weights))
	copy(w, state.Weights)
	return &Classifier{
		n:       len(w),
		weights: mat.NewVecDense(len(w), w),
		bias:    state.Bias,
	}, nil
}

// VectorsToDense packs feature vectors into an m×features.Count matrix.
// It returns nil for no rows; Fit, PredictProba and Cost treat that as empty.
func VectorsToDense(rows []features.Vector) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	data := make([]float64, 0, len(rows)*features.Count)
	for _, r := range rows {
		data = append(data, r[:]...)
	}
	return mat.NewDense(len(rows), features.Count, data)
}

// dims is X.Dims() with a nil or typed-nil *mat.Dense treated as empty.
func dims(X mat.Matrix) (int, int) {
	if X == nil {
		return 0, 0
	}
	if d, ok := X.(*mat.Dense); ok && d == nil {
		return 0, 0
	}
	return X.Dims()
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
