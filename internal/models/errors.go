package models

import "fmt"

// ValidationError marks malformed input: missing team or venue
// references, duplicate game ids, unknown game references. Fatal —
// the request aborts immediately.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// NotFoundError marks a reference to a schedule that does not exist
// in the store.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// VersionConflictError is returned when a modification was built
// against a stale schedule version.
type VersionConflictError struct {
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("schedule version changed: modification built against v%d, schedule is v%d", e.Expected, e.Actual)
}

// EvaluationError records a failure inside one constraint's
// evaluator. It is isolated to that constraint and never aborts the
// batch; the engine converts it into a single evaluation_error
// violation with score 0.
type EvaluationError struct {
	ConstraintID string
	Cause        any
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("constraint %s evaluator failed: %v", e.ConstraintID, e.Cause)
}
