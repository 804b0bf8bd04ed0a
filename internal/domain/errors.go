package domain

import (
	"fmt"
	"time"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

// ErrValidation marks invalid field values caught before any write.
func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

// ErrNotFound marks a missing entity.
func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

// ErrConflict marks an attempt to create a second outstanding bonus for a
// bookmaker that already has one. Never silently merged or auto-corrected.
func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

// ErrInternal wraps persistence or backend failures. The triggering action
// surfaces them verbatim; nothing is retried automatically.
func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// StaleReadWarning is an advisory, non-blocking signal that a rollover
// progress or balance read may lag the external wagering feed. It is
// attached to responses, never returned as a failure.
type StaleReadWarning struct {
	Resource string    `json:"resource"`
	AsOf     time.Time `json:"as_of"`
}

func (w StaleReadWarning) String() string {
	return fmt.Sprintf("%s read may be stale (as of %s)", w.Resource, w.AsOf.Format(time.RFC3339))
}
