package ml

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"candidate-predictor/internal/features"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc()
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
	MLAccuracyObserve(float64)
	MLPredictionScoresObserve(float64)
	MLTimeoutsInc()
	MLTrainingsInc()
	MLBootstrapInc()
}

// Source tells where the serving generation came from.
type Source string

const (
	SourceNone         Source = "uninitialized"
	SourceTrained      Source = "trained"
	SourceLoaded       Source = "loaded"
	SourceBootstrapped Source = "bootstrapped"
)

// Config holds the training hyperparameters and decision threshold.
type Config struct {
	LearningRate float64
	Iterations   int
	TestFraction float64
	SplitSeed    int64
	Threshold    float64
}

func DefaultConfig() Config {
	return Config{
		LearningRate: 0.01,
		Iterations:   1000,
		TestFraction: 0.2,
		SplitSeed:    42,
		Threshold:    0.5,
	}
}

func (c Config) validate() error {
	if !(c.LearningRate > 0) {
		return fmt.Errorf("%w: learning rate must be positive, got %v", ErrInvalidInput, c.LearningRate)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidInput, c.Iterations)
	}
	if !(c.TestFraction > 0 && c.TestFraction < 1) {
		return fmt.Errorf("%w: test fraction must be in (0, 1), got %v", ErrInvalidInput, c.TestFraction)
	}
	if !(c.Threshold >= 0 && c.Threshold <= 1) {
		return fmt.Errorf("%w: threshold must be in [0, 1], got %v", ErrInvalidInput, c.Threshold)
	}
	return nil
}

// generation is an immutable trained model. It is replaced as a whole and
// never modified after being published.
type generation struct {
	id           uuid.UUID
	source       Source
	classifier   *Classifier
	standardizer *Standardizer
	createdAt    time.Time
	metrics      ModelMetrics
}

// TrainResult is returned by a successful Train.
type TrainResult struct {
	Accuracy     float64              `json:"accuracy"`
	Report       ClassificationReport `json:"report"`
	TrainSamples int                  `json:"train_samples"`
	TestSamples  int                  `json:"test_samples"`
	FinalCost    float64              `json:"final_cost"`
	Generation   string               `json:"generation"`
}

// Status describes the generation currently served.
type Status struct {
	Source     Source    `json:"source"`
	Generation string    `json:"generation,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	Accuracy   float64   `json:"accuracy"`
	Samples    int       `json:"training_samples"`
	Threshold  float64   `json:"threshold"`
	Persistent bool      `json:"persistent"`
}

// Predictor serves probabilities from the current model generation. It is
// safe for concurrent use. Train calls are serialized; predictions keep using
// the previous generation until a new one is published.
type Predictor struct {
	config  Config
	store   ModelStore
	metrics MetricsInterface
	history *ModelHistory

	mu      sync.RWMutex
	current *generation

	trainMu sync.Mutex
}

// NewPredictor creates a predictor. store may be nil, in which case trained
// models are kept in memory only and cold start always bootstraps.
func NewPredictor(config Config, store ModelStore, metrics MetricsInterface) (*Predictor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Predictor{
		config:  config,
		store:   store,
		metrics: metrics,
		history: NewModelHistory(DefaultHistoryLimit),
	}, nil
}

// Train fits a new generation on examples, persists it and, on success,
// makes it the serving generation. On any failure the previous generation
// and the persisted model are left untouched.
func (p *Predictor) Train(ctx context.Context, examples []features.LabeledExample) (TrainResult, error) {
	if len(examples) == 0 {
		return TrainResult{}, ErrEmptyDataset
	}
	for i, ex := range examples {
		if !ex.Features.Finite() {
			return TrainResult{}, fmt.Errorf("%w: example %d has non-finite features", ErrInvalidInput, i)
		}
	}

	p.trainMu.Lock()
	defer p.trainMu.Unlock()

	if err := ctx.Err(); err != nil {
		return TrainResult{}, err
	}

	start := time.Now()
	gen, result, err := p.fit(examples)
	if err != nil {
		p.failure()
		return TrainResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return TrainResult{}, err
	}

	if p.store != nil {
		if err := p.store.Save(gen.classifier.State(), gen.standardizer.State()); err != nil {
			log.Error().Err(err).Str("generation", gen.id.String()).Msg("Failed to persist trained model")
			p.failure()
			return TrainResult{}, err
		}
	}

	p.publish(gen)

	if p.metrics != nil {
		p.metrics.MLTrainingsInc()
		p.metrics.MLAccuracyObserve(result.Accuracy)
		p.metrics.MLModelAgeSet(0)
	}

	log.Info().
		Str("generation", result.Generation).
		Int("train_samples", result.TrainSamples).
		Int("test_samples", result.TestSamples).
		Float64("accuracy", result.Accuracy).
		Float64("final_cost", result.FinalCost).
		Dur("took", time.Since(start)).
		Msg("Model trained")

	return result, nil
}

func (p *Predictor) fit(examples []features.LabeledExample) (*generation, TrainResult, error) {
	train, test, err := TrainTestSplit(examples, p.config.TestFraction, p.config.SplitSeed)
	if err != nil {
		return nil, TrainResult{}, err
	}

	std, clf, fitRes, err := fitModel(train, p.config.LearningRate, p.config.Iterations)
	if err != nil {
		return nil, TrainResult{}, err
	}
	log.Debug().Float64("final_cost", fitRes.FinalCost).Int("iterations", fitRes.Iterations).Msg("Gradient descent finished")

	scaledTest, err := std.TransformAll(features.Vectors(test))
	if err != nil {
		return nil, TrainResult{}, err
	}

	yPred, err := clf.Predict(VectorsToDense(scaledTest), p.config.Threshold)
	if err != nil {
		return nil, TrainResult{}, err
	}
	yTrue := make([]int, len(test))
	approved := 0
	for i, ex := range test {
		yTrue[i] = int(ex.Label())
		approved += yPred[i]
	}

	accuracy, report, err := Evaluate(yTrue, yPred)
	if err != nil {
		return nil, TrainResult{}, err
	}

	gen := &generation{
		id:           uuid.New(),
		source:       SourceTrained,
		classifier:   clf,
		standardizer: std,
		createdAt:    time.Now(),
		metrics: ModelMetrics{
			Accuracy:        accuracy,
			F1Score:         report.Positive.F1,
			Precision:       report.Positive.Precision,
			Recall:          report.Positive.Recall,
			ApprovalRate:    float64(approved) / float64(len(test)),
			TrainingSamples: len(train),
			TestSamples:     len(test),
		},
	}

	return gen, TrainResult{
		Accuracy:     accuracy,
		Report:       report,
		TrainSamples: len(train),
		TestSamples:  len(test),
		FinalCost:    fitRes.FinalCost,
		Generation:   gen.id.String(),
	}, nil
}

func (p *Predictor) publish(gen *generation) {
	p.mu.Lock()
	p.current = gen
	p.mu.Unlock()

	p.history.Record(gen.version())
}

// Scored is a probability together with the generation that produced it.
type Scored struct {
	Probability float64 `json:"probability"`
	Generation  string  `json:"generation"`
	Source      Source  `json:"model_source"`
}

// Predict returns the probability that the candidate described by record
// succeeds. An uninitialized predictor loads the persisted model first and
// falls back to the bootstrap set when none is available.
func (p *Predictor) Predict(ctx context.Context, record features.Record) (float64, error) {
	s, err := p.Score(ctx, record)
	if err != nil {
		return 0, err
	}
	return s.Probability, nil
}

// Score is Predict reporting which generation served the request.
func (p *Predictor) Score(ctx context.Context, record features.Record) (Scored, error) {
	if p == nil {
		return Scored{}, fmt.Errorf("predictor is nil")
	}

	start := time.Now()
	defer p.observeLatency(start)

	gen, err := p.ensure(ctx)
	if err != nil {
		p.failure()
		return Scored{}, err
	}

	prob, err := gen.predict(record)
	if err != nil {
		p.failure()
		return Scored{}, err
	}

	if p.metrics != nil {
		p.metrics.MLPredictionsInc()
		p.metrics.MLPredictionScoresObserve(prob)
		p.metrics.MLModelAgeSet(time.Since(gen.createdAt).Seconds())
	}

	log.Debug().Str("generation", gen.id.String()).Float64("probability", prob).Msg("Prediction served")
	return gen.scored(prob), nil
}

// PredictBatch scores every record against a single generation. Either all
// records are scored or none are.
func (p *Predictor) PredictBatch(ctx context.Context, records []features.Record) ([]Scored, error) {
	if p == nil {
		return nil, fmt.Errorf("predictor is nil")
	}

	start := time.Now()
	defer p.observeLatency(start)

	gen, err := p.ensure(ctx)
	if err != nil {
		p.failure()
		return nil, err
	}

	out := make([]Scored, len(records))
	for i, r := range records {
		prob, err := gen.predict(r)
		if err != nil {
			p.failure()
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = gen.scored(prob)
	}

	if p.metrics != nil {
		for _, s := range out {
			p.metrics.MLPredictionsInc()
			p.metrics.MLPredictionScoresObserve(s.Probability)
		}
	}
	return out, nil
}

// Approve reports whether the predicted probability reaches threshold.
func (p *Predictor) Approve(ctx context.Context, record features.Record, threshold float64) (bool, error) {
	prob, err := p.Predict(ctx, record)
	if err != nil {
		return false, err
	}
	return prob >= threshold, nil
}

// Threshold is the configured default decision threshold.
func (p *Predictor) Threshold() float64 {
	return p.config.Threshold
}

// FeatureImportance ranks the features of the serving generation. It does
// not trigger a load or bootstrap.
func (p *Predictor) FeatureImportance() ([]Importance, error) {
	p.mu.RLock()
	gen := p.current
	p.mu.RUnlock()

	if gen == nil {
		return nil, ErrNotTrained
	}
	return gen.classifier.FeatureImportance(features.Names[:])
}

// Warm initializes the predictor ahead of the first request.
func (p *Predictor) Warm(ctx context.Context) error {
	_, err := p.ensure(ctx)
	return err
}

// Invalidate drops the serving generation. The next prediction reloads the
// persisted model, or bootstraps.
func (p *Predictor) Invalidate() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.history.Deactivate()
	log.Info().Msg("Model generation invalidated")
}

func (p *Predictor) Status() Status {
	p.mu.RLock()
	gen := p.current
	p.mu.RUnlock()

	st := Status{
		Source:     SourceNone,
		Threshold:  p.config.Threshold,
		Persistent: p.store != nil,
	}
	if gen == nil {
		return st
	}

	st.Source = gen.source
	st.Generation = gen.id.String()
	st.CreatedAt = gen.createdAt
	st.Accuracy = gen.metrics.Accuracy
	st.Samples = gen.metrics.TrainingSamples
	return st
}

// History lists the generations served so far, newest first.
func (p *Predictor) History() []ModelVersion {
	return p.history.List()
}

// Active returns the version currently serving, if any.
func (p *Predictor) Active() (ModelVersion, bool) {
	return p.history.Current()
}

// ensure returns the serving generation, initializing it under the write
// lock when absent.
func (p *Predictor) ensure(ctx context.Context) (*generation, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && p.metrics != nil {
			p.metrics.MLTimeoutsInc()
		}
		return nil, err
	}

	p.mu.RLock()
	gen := p.current
	p.mu.RUnlock()
	if gen != nil {
		return gen, nil
	}

	p.mu.Lock()
	if p.current != nil {
		gen = p.current
		p.mu.Unlock()
		return gen, nil
	}

	gen, err := p.loadOrBootstrap()
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.current = gen
	p.mu.Unlock()

	p.history.Record(gen.version())
	return gen, nil
}

func (p *Predictor) loadOrBootstrap() (*generation, error) {
	if p.store != nil {
		gen, err := p.load()
		if err == nil {
			log.Info().Str("generation", gen.id.String()).Msg("Persisted model loaded")
			return gen, nil
		}
		if errors.Is(err, ErrNotFound) {
			log.Info().Msg("No persisted model found, bootstrapping")
		} else {
			log.Warn().Err(err).Msg("Failed to load persisted model, bootstrapping")
		}
	}

	std, clf, res, err := fitBootstrap(p.config.LearningRate, p.config.Iterations)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	if p.metrics != nil {
		p.metrics.MLBootstrapInc()
	}

	gen := &generation{
		id:           uuid.New(),
		source:       SourceBootstrapped,
		classifier:   clf,
		standardizer: std,
		createdAt:    time.Now(),
		metrics:      ModelMetrics{TrainingSamples: len(bootstrapSet)},
	}
	log.Info().
		Str("generation", gen.id.String()).
		Float64("final_cost", res.FinalCost).
		Msg("Model bootstrapped from synthetic examples")
	return gen, nil
}

func (p *Predictor) load() (*generation, error) {
	cs, ss, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	if err := ValidateStates(cs, ss); err != nil {
		return nil, err
	}

	clf, err := RestoreClassifier(cs)
	if err != nil {
		return nil, err
	}
	std, err := RestoreStandardizer(ss)
	if err != nil {
		return nil, err
	}

	return &generation{
		id:           uuid.New(),
		source:       SourceLoaded,
		classifier:   clf,
		standardizer: std,
		createdAt:    time.Now(),
	}, nil
}

func (p *Predictor) failure() {
	if p.metrics != nil {
		p.metrics.MLFailuresInc()
	}
}

func (p *Predictor) observeLatency(start time.Time) {
	if p.metrics != nil {
		p.metrics.MLLatencyObserve(time.Since(start).Seconds())
	}
}

func (g *generation) predict(record features.Record) (float64, error) {
	if record == nil {
		return 0, fmt.Errorf("%w: nil record", ErrInvalidInput)
	}

	v := features.FromRecord(record)
	if !v.Finite() {
		return 0, fmt.Errorf("%w: non-finite feature value", ErrInvalidInput)
	}

	scaled, err := g.standardizer.Transform(v)
	if err != nil {
		return 0, err
	}
	return g.classifier.Probability(scaled[:])
}

func (g *generation) scored(prob float64) Scored {
	return Scored{Probability: prob, Generation: g.id.String(), Source: g.source}
}

func (g *generation) version() ModelVersion {
	return ModelVersion{
		Version:   g.id.String(),
		Source:    g.source,
		CreatedAt: g.createdAt,
		Metrics:   g.metrics,
	}
}
