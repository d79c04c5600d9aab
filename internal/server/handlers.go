package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"candidate-predictor/internal/features"
	"candidate-predictor/internal/ml"
	"candidate-predictor/internal/storage"

	"github.com/rs/zerolog/log"
)

// PredictionRequest represents the incoming prediction request
type PredictionRequest struct {
	Candidate features.Candidate `json:"candidate"`
	Threshold *float64           `json:"threshold,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
}

// PredictionResponse represents the prediction result
type PredictionResponse struct {
	Probability float64   `json:"probability"`
	Approved    bool      `json:"approved"`
	Threshold   float64   `json:"threshold"`
	RequestID   string    `json:"request_id,omitempty"`
	Source      ml.Source `json:"model_source"`
	Generation  string    `json:"generation"`
	Latency     float64   `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// BatchRequest scores several candidates against one generation.
type BatchRequest struct {
	Candidates []features.Candidate `json:"candidates"`
	Threshold  *float64             `json:"threshold,omitempty"`
	RequestID  string               `json:"request_id,omitempty"`
}

// BatchPrediction is one scored candidate of a batch.
type BatchPrediction struct {
	Probability float64 `json:"probability"`
	Approved    bool    `json:"approved"`
}

// BatchResponse carries results in request order.
type BatchResponse struct {
	Predictions []BatchPrediction `json:"predictions"`
	Threshold   float64           `json:"threshold"`
	RequestID   string            `json:"request_id,omitempty"`
	Source      ml.Source         `json:"model_source"`
	Generation  string            `json:"generation"`
	Latency     float64           `json:"latency_ms"`
	Timestamp   time.Time         `json:"timestamp"`
}

// MaxBatchSize bounds the candidates accepted by /predict/batch.
const MaxBatchSize = 1000

// ImportanceResponse is the ranking served by /importance.
type ImportanceResponse struct {
	Source     ml.Source       `json:"model_source"`
	Generation string          `json:"generation"`
	Features   []ml.Importance `json:"features"`
}

// SurveyRequest is one submitted survey.
type SurveyRequest struct {
	UserID    string             `json:"user_id"`
	Candidate features.Candidate `json:"candidate"`
	Success   *bool              `json:"success,omitempty"`
	Public    bool               `json:"public"`
}

// ModelInfo describes the serving generation and its predecessors.
type ModelInfo struct {
	Status  ml.Status         `json:"status"`
	Active  *ml.ModelVersion  `json:"active,omitempty"`
	History []ml.ModelVersion `json:"history"`
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PredictionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Candidate.Validate(); err != nil {
		writeError(w, r, &ErrValidation{Field: "candidate", Message: err.Error()})
		return
	}

	threshold, err := ms.threshold(req.Threshold)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ms.timeout)
	defer cancel()

	scored, err := ms.predictor.Score(ctx, req.Candidate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{
		Probability: scored.Probability,
		Approved:    scored.Probability >= threshold,
		Threshold:   threshold,
		RequestID:   req.RequestID,
		Source:      scored.Source,
		Generation:  scored.Generation,
		Latency:     float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:   time.Now().UTC(),
	})
}

// handlePredictBatch scores every candidate or none: one invalid candidate
// rejects the whole request.
func (ms *ModelServer) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Candidates) == 0 || len(req.Candidates) > MaxBatchSize {
		writeError(w, r, &ErrValidation{Field: "candidates", Message: fmt.Sprintf("must hold between 1 and %d candidates", MaxBatchSize)})
		return
	}

	records := make([]features.Record, len(req.Candidates))
	for i, c := range req.Candidates {
		if err := c.Validate(); err != nil {
			writeError(w, r, &ErrValidation{Field: fmt.Sprintf("candidates[%d]", i), Message: err.Error()})
			return
		}
		records[i] = c
	}

	threshold, err := ms.threshold(req.Threshold)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ms.timeout)
	defer cancel()

	scored, err := ms.predictor.PredictBatch(ctx, records)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := BatchResponse{
		Predictions: make([]BatchPrediction, len(scored)),
		Threshold:   threshold,
		RequestID:   req.RequestID,
		Source:      scored[0].Source,
		Generation:  scored[0].Generation,
		Timestamp:   time.Now().UTC(),
	}
	for i, s := range scored {
		resp.Predictions[i] = BatchPrediction{Probability: s.Probability, Approved: s.Probability >= threshold}
	}
	resp.Latency = float64(time.Since(start).Microseconds()) / 1000
	writeJSON(w, http.StatusOK, resp)
}

// threshold resolves an optional per-request override.
func (ms *ModelServer) threshold(override *float64) (float64, error) {
	if override == nil {
		return ms.predictor.Threshold(), nil
	}
	if t := *override; !(t >= 0 && t <= 1) {
		return 0, &ErrValidation{Field: "threshold", Message: "must be between 0 and 1"}
	}
	return *override, nil
}

// handleImportance serves the ranking of the current generation. ?top=n
// truncates it; ?shares=true normalizes magnitudes to sum to 1.
func (ms *ModelServer) handleImportance(w http.ResponseWriter, r *http.Request) {
	ranking, err := ms.predictor.FeatureImportance()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("shares") == "true" {
		ranking = ml.Shares(ranking)
	}
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, &ErrValidation{Field: "top", Message: "must be a positive integer"})
			return
		}
		if n < len(ranking) {
			ranking = ranking[:n]
		}
	}

	status := ms.predictor.Status()
	writeJSON(w, http.StatusOK, ImportanceResponse{
		Source:     status.Source,
		Generation: status.Generation,
		Features:   ranking,
	})
}

// handleTrain retrains on every labeled survey in the record store.
func (ms *ModelServer) handleTrain(w http.ResponseWriter, r *http.Request) {
	if ms.surveys == nil {
		writeError(w, r, &ErrUnavailable{Feature: "training"})
		return
	}

	examples, err := ms.surveys.LabeledExamples()
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := ms.predictor.Train(r.Context(), examples)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ms *ModelServer) handleSurvey(w http.ResponseWriter, r *http.Request) {
	if ms.surveys == nil {
		writeError(w, r, &ErrUnavailable{Feature: "survey storage"})
		return
	}

	var req SurveyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Candidate.Validate(); err != nil {
		writeError(w, r, &ErrValidation{Field: "candidate", Message: err.Error()})
		return
	}

	rec, err := ms.surveys.StoreSurvey(storage.SurveyRecord{
		UserID:    req.UserID,
		Candidate: req.Candidate,
		Success:   req.Success,
		Public:    req.Public,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ms.recorder != nil {
		ms.recorder.SurveysAdd(1)
	}

	log.Info().Str("survey_id", rec.ID.String()).Bool("labeled", rec.Labeled()).Msg("survey stored")
	writeJSON(w, http.StatusCreated, rec)
}

func (ms *ModelServer) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info := ModelInfo{
		Status:  ms.predictor.Status(),
		History: ms.predictor.History(),
	}
	if v, ok := ms.predictor.Active(); ok {
		info.Active = &v
	}
	writeJSON(w, http.StatusOK, info)
}

// handleInvalidate drops the serving generation so the next request reloads
// the persisted model.
func (ms *ModelServer) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	ms.predictor.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := ms.predictor.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_source": status.Source,
		"ready":        status.Source != ml.SourceNone,
		"timestamp":    time.Now().UTC(),
	})
}
