package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"candidate-predictor/internal/ml"

	"github.com/rs/zerolog/log"
)

// ErrValidation indicates a malformed or out of range request.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates the server was started without a collaborator
// the route needs.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		verr  *ErrValidation
		unavl *ErrUnavailable
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, ml.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrNotTrained):
		return http.StatusConflict
	case errors.Is(err, ml.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavl):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Status: status})
}
