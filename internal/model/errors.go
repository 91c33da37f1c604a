package model

import "fmt"

// ValidationError marks malformed or out-of-range input data, e.g. an
// observation with an impossible temperature.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError marks a missing session/farm/variety reference.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// ExternalServiceError is raised when every weather provider in the chain has
// been exhausted for a call whose contract requires a result.
type ExternalServiceError struct {
	Service   string
	Providers []string
	Err       error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: all providers exhausted %v: %v", e.Service, e.Providers, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// PredictionError wraps any unexpected failure inside a scoring run, carrying
// the original cause.
type PredictionError struct {
	SessionID uint
	Err       error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction for session %d failed: %v", e.SessionID, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
