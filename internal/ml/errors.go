package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when fitting or training on zero examples.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrNotFitted is returned by Standardizer.Transform before Fit.
	ErrNotFitted = errors.New("standardizer is not fitted")
	// ErrNotTrained is returned when importance is requested from an
	// untrained classifier or predictor.
	ErrNotTrained = errors.New("model is not trained")
	// ErrNotFound is returned by ModelStore.Load when no complete model was saved.
	ErrNotFound = errors.New("no persisted model found")
	// ErrInvalidInput is returned for non-finite or mis-shaped inputs.
	ErrInvalidInput = errors.New("invalid input")
)

// PersistenceError wraps an I/O or decoding failure in a ModelStore.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("model store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("model store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
