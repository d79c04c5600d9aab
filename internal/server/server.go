// Package server exposes the predictor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"candidate-predictor/internal/features"
	"candidate-predictor/internal/metrics"
	"candidate-predictor/internal/ml"
	"candidate-predictor/internal/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// DefaultRequestTimeout bounds a single prediction.
const DefaultRequestTimeout = 5 * time.Second

// SurveyStore is the record store used by /train and /surveys.
type SurveyStore interface {
	StoreSurvey(rec storage.SurveyRecord) (storage.SurveyRecord, error)
	LabeledExamples() ([]features.LabeledExample, error)
}

// Options configures a ModelServer. Surveys and Metrics may be nil.
type Options struct {
	Port           int
	RequestTimeout time.Duration
	Surveys        SurveyStore
	Metrics        *metrics.Metrics
}

// ModelServer provides HTTP API for model predictions
type ModelServer struct {
	predictor *ml.Predictor
	surveys   SurveyStore
	metrics   *metrics.Metrics
	recorder  *metrics.MetricsWrapper
	timeout   time.Duration
	router    chi.Router
	server    *http.Server
}

// NewModelServer creates a new HTTP server for model serving
func NewModelServer(predictor *ml.Predictor, opts Options) *ModelServer {
	ms := &ModelServer{
		predictor: predictor,
		surveys:   opts.Surveys,
		metrics:   opts.Metrics,
		timeout:   opts.RequestTimeout,
	}
	if ms.timeout <= 0 {
		ms.timeout = DefaultRequestTimeout
	}
	if ms.metrics != nil {
		ms.recorder = metrics.NewWrapper(ms.metrics)
	}

	ms.router = ms.routes()
	ms.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      ms.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return ms
}

func (ms *ModelServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(ms.observe)

	r.Get("/health", ms.handleHealth)
	r.Post("/predict", ms.handlePredict)
	r.Post("/predict/batch", ms.handlePredictBatch)
	r.Get("/importance", ms.handleImportance)
	r.Post("/train", ms.handleTrain)
	r.Post("/surveys", ms.handleSurvey)
	r.Route("/model", func(r chi.Router) {
		r.Get("/info", ms.handleModelInfo)
		r.Post("/invalidate", ms.handleInvalidate)
	})

	r.Handle("/metrics", promhttp.HandlerFor(ms.gatherer(), promhttp.HandlerOpts{}))

	return r
}

func (ms *ModelServer) gatherer() prometheus.Gatherer {
	if ms.metrics == nil {
		return prometheus.DefaultGatherer
	}
	return ms.metrics.Gatherer()
}

// Handler returns the routed handler, for embedding or tests.
func (ms *ModelServer) Handler() http.Handler {
	return ms.router
}

// Addr is the listen address.
func (ms *ModelServer) Addr() string {
	return ms.server.Addr
}

// Start begins serving HTTP requests
func (ms *ModelServer) Start() error {
	log.Info().Str("addr", ms.server.Addr).Msg("starting model server")
	return ms.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (ms *ModelServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

// observe records per-route request counts and latency.
func (ms *ModelServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		if ms.recorder != nil {
			ms.recorder.ObserveRequest(route, fmt.Sprint(status), time.Since(start).Seconds())
		}
		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}
