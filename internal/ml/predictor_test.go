package ml

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"candidate-predictor/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var positiveRow = features.CandidateFromVector(features.Vector{5, 3, 5, 2, 2, 0.6, 0.8})

func newTestPredictor(t *testing.T, store ModelStore) (*Predictor, *MockMetrics) {
	t.Helper()
	metrics := &MockMetrics{}
	p, err := NewPredictor(DefaultConfig(), store, metrics)
	require.NoError(t, err)
	return p, metrics
}

// experienceExamples labels candidates by years of experience only; every
// other feature is constant.
func experienceExamples(n int) []features.LabeledExample {
	out := make([]features.LabeledExample, n)
	for i := range out {
		out[i] = features.LabeledExample{
			Features:  features.Vector{float64(i), 3, 5, 1, 1, 0.5, 0.5},
			Succeeded: i >= n/2,
		}
	}
	return out
}

func TestNewPredictor_RejectsInvalidConfig(t *testing.T) {
	mutations := []func(c *Config){
		func(c *Config) { c.LearningRate = 0 },
		func(c *Config) { c.Iterations = 0 },
		func(c *Config) { c.TestFraction = 1 },
		func(c *Config) { c.Threshold = 1.5 },
		func(c *Config) { c.LearningRate = math.NaN() },
	}
	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		_, err := NewPredictor(cfg, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestPredictor_FeatureImportanceBeforeTraining(t *testing.T) {
	p, _ := newTestPredictor(t, nil)

	_, err := p.FeatureImportance()
	assert.ErrorIs(t, err, ErrNotTrained)
	assert.Equal(t, SourceNone, p.Status().Source)
}

func TestPredictor_BootstrapsOnColdStart(t *testing.T) {
	store := &MemoryStore{}
	p, metrics := newTestPredictor(t, store)

	prob, err := p.Predict(context.Background(), positiveRow)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, prob, 0.5)

	st := p.Status()
	assert.Equal(t, SourceBootstrapped, st.Source)
	assert.Equal(t, 5, st.Samples)
	assert.NotEmpty(t, st.Generation)

	assert.False(t, store.Exists(), "bootstrap must not persist")

	_, _, _, bootstraps := metrics.Counts()
	assert.Equal(t, 1, bootstraps)

	ranking, err := p.FeatureImportance()
	require.NoError(t, err)
	assert.Len(t, ranking, features.Count)

	approved, err := p.Approve(context.Background(), positiveRow, 0.5)
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestPredictor_LoadFailureFallsBackToBootstrap(t *testing.T) {
	store := &MemoryStore{LoadErr: &PersistenceError{Op: "load", Err: errors.New("disk gone")}}
	p, _ := newTestPredictor(t, store)

	require.NoError(t, p.Warm(context.Background()))
	assert.Equal(t, SourceBootstrapped, p.Status().Source)
}

func TestPredictor_TrainPersistsAndReloads(t *testing.T) {
	store := &MemoryStore{}
	trainer, metrics := newTestPredictor(t, store)

	res, err := trainer.Train(context.Background(), experienceExamples(50))
	require.NoError(t, err)

	assert.Equal(t, 40, res.TrainSamples)
	assert.Equal(t, 10, res.TestSamples)
	assert.Equal(t, 10, res.Report.Negative.Support+res.Report.Positive.Support)
	assert.GreaterOrEqual(t, res.Accuracy, 0.7)
	assert.LessOrEqual(t, res.Accuracy, 1.0)
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, SourceTrained, trainer.Status().Source)
	assert.Equal(t, res.Generation, trainer.Status().Generation)

	_, _, trainings, _ := metrics.Counts()
	assert.Equal(t, 1, trainings)

	ranking, err := trainer.FeatureImportance()
	require.NoError(t, err)
	assert.Equal(t, "Years of Experience", ranking[0].Name)

	veteran := features.Candidate{Years: 45, Education: 3, Skills: 5, JobChanges: 1, Certs: 1, Language: 0.5, InterviewPrep: 0.5}
	want, err := trainer.Predict(context.Background(), veteran)
	require.NoError(t, err)

	reader, _ := newTestPredictor(t, store)
	got, err := reader.Predict(context.Background(), veteran)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, SourceLoaded, reader.Status().Source)
}

func TestPredictor_TrainEmptyLeavesStoreUntouched(t *testing.T) {
	store := &MemoryStore{}
	p, _ := newTestPredictor(t, store)

	_, err := p.Train(context.Background(), experienceExamples(20))
	require.NoError(t, err)
	before, _, err := store.Load()
	require.NoError(t, err)
	gen := p.Status().Generation

	_, err = p.Train(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	after, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, gen, p.Status().Generation)
}

func TestPredictor_SaveFailureKeepsPreviousGeneration(t *testing.T) {
	store := &MemoryStore{}
	p, metrics := newTestPredictor(t, store)

	require.NoError(t, p.Warm(context.Background()))
	gen := p.Status().Generation

	store.SaveErr = &PersistenceError{Op: "save", Path: "models", Err: errors.New("read-only")}
	_, err := p.Train(context.Background(), experienceExamples(20))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.Equal(t, gen, p.Status().Generation)
	assert.Equal(t, SourceBootstrapped, p.Status().Source)

	_, failures, _, _ := metrics.Counts()
	assert.Equal(t, 1, failures)
}

func TestPredictor_RejectsNonFiniteInput(t *testing.T) {
	p, _ := newTestPredictor(t, nil)

	bad := positiveRow
	bad.Skills = math.Inf(1)
	_, err := p.Predict(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.Train(context.Background(), []features.LabeledExample{{Features: features.Vector{math.NaN()}}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPredictor_DeterministicAndBounded(t *testing.T) {
	p, metrics := newTestPredictor(t, nil)
	ctx := context.Background()

	first, err := p.Predict(ctx, positiveRow)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Predict(ctx, positiveRow)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	records := []features.Record{
		features.Candidate{},
		features.Candidate{Years: 50, Education: 5, Skills: 100, JobChanges: 20, Certs: 20, Language: 1, InterviewPrep: 1},
		features.CandidateFromVector(features.Vector{1e9, -1e9, 1e9, -1e9, 1e9, -1e9, 1e9}),
	}
	scored, err := p.PredictBatch(ctx, records)
	require.NoError(t, err)
	require.Len(t, scored, len(records))
	for _, s := range scored {
		assert.GreaterOrEqual(t, s.Probability, 0.0)
		assert.LessOrEqual(t, s.Probability, 1.0)
		assert.Equal(t, p.Status().Generation, s.Generation)
	}

	for _, s := range metrics.Scores() {
		assert.False(t, math.IsNaN(s))
	}
}

func TestPredictor_ExtremeFiniteInputStaysInRange(t *testing.T) {
	p, metrics := newTestPredictor(t, nil)
	ctx := context.Background()

	rows := []features.Vector{
		{5, 3, 5, 2, 2, 1e308, -1e308},
		{math.MaxFloat64, -math.MaxFloat64, math.MaxFloat64, -math.MaxFloat64, math.MaxFloat64, -math.MaxFloat64, math.MaxFloat64},
		{-math.MaxFloat64, 0, 0, 0, 0, 0, math.MaxFloat64},
	}
	for _, row := range rows {
		prob, err := p.Predict(ctx, features.CandidateFromVector(row))
		require.NoError(t, err, "%v", row)
		assert.False(t, math.IsNaN(prob), "%v", row)
		assert.GreaterOrEqual(t, prob, 0.0)
		assert.LessOrEqual(t, prob, 1.0)
	}

	for _, s := range metrics.Scores() {
		assert.False(t, math.IsNaN(s))
	}
}

func TestPredictor_ScoreReportsServingGeneration(t *testing.T) {
	p, _ := newTestPredictor(t, &MemoryStore{})
	ctx := context.Background()

	cold, err := p.Score(ctx, positiveRow)
	require.NoError(t, err)
	assert.Equal(t, SourceBootstrapped, cold.Source)
	assert.Equal(t, p.Status().Generation, cold.Generation)

	result, err := p.Train(ctx, experienceExamples(20))
	require.NoError(t, err)

	warm, err := p.Score(ctx, positiveRow)
	require.NoError(t, err)
	assert.Equal(t, SourceTrained, warm.Source)
	assert.Equal(t, result.Generation, warm.Generation)
	assert.NotEqual(t, cold.Generation, warm.Generation)
}

func TestPredictor_PredictDoesNotMutateRecord(t *testing.T) {
	p, _ := newTestPredictor(t, nil)

	c := positiveRow
	_, err := p.Predict(context.Background(), &c)
	require.NoError(t, err)
	assert.Equal(t, positiveRow, c)
}

func TestPredictor_InvalidateReloads(t *testing.T) {
	store := &MemoryStore{}
	p, _ := newTestPredictor(t, store)

	_, err := p.Train(context.Background(), experienceExamples(20))
	require.NoError(t, err)
	trained := p.Status().Generation

	p.Invalidate()
	assert.Equal(t, SourceNone, p.Status().Source)
	_, err = p.FeatureImportance()
	assert.ErrorIs(t, err, ErrNotTrained)

	require.NoError(t, p.Warm(context.Background()))
	st := p.Status()
	assert.Equal(t, SourceLoaded, st.Source)
	assert.NotEqual(t, trained, st.Generation)

	history := p.History()
	require.Len(t, history, 2)
	assert.Equal(t, SourceLoaded, history[0].Source)
	assert.True(t, history[0].IsActive)
	assert.Equal(t, SourceTrained, history[1].Source)
	assert.False(t, history[1].IsActive)
}

func TestPredictor_CancelledContext(t *testing.T) {
	p, _ := newTestPredictor(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Predict(ctx, positiveRow)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = p.Train(ctx, experienceExamples(10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, SourceNone, p.Status().Source)
}

func TestPredictor_ConcurrentPredictDuringTrain(t *testing.T) {
	store := &MemoryStore{}
	p, _ := newTestPredictor(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := p.Train(ctx, experienceExamples(20+n)); err != nil {
				errs <- err
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				prob, err := p.Predict(ctx, positiveRow)
				if err != nil {
					errs <- err
					return
				}
				if prob < 0 || prob > 1 || math.IsNaN(prob) {
					errs <- errors.New("probability out of range")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, 3, store.Saves())
	assert.Equal(t, SourceTrained, p.Status().Source)
}
