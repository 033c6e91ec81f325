package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation             ErrorType = "validation"
	ErrorTypeNotFound               ErrorType = "not_found"
	ErrorTypeInvalidState           ErrorType = "invalid_state"
	ErrorTypeSequence               ErrorType = "sequence"
	ErrorTypeContentConstraint      ErrorType = "content_constraint"
	ErrorTypeCitationRequired       ErrorType = "citation_required"
	ErrorTypeConcurrentModification ErrorType = "concurrent_modification"
	ErrorTypeAmbiguousCategory      ErrorType = "ambiguous_category"
	ErrorTypeConflict               ErrorType = "conflict"
	ErrorTypeInternal               ErrorType = "internal"
	ErrorTypeExternal               ErrorType = "external"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

// NewInvalidStateError reports a workflow transition that is not legal from
// the current state. Both states are carried in Details so callers can see
// exactly which rule failed.
func NewInvalidStateError(current, attempted string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       "INVALID_STATE_TRANSITION",
		Message:    fmt.Sprintf("cannot transition from %s to %s", current, attempted),
		Retryable:  false,
		StatusCode: 409,
		Details: map[string]interface{}{
			"current_state":   current,
			"attempted_state": attempted,
		},
	}
}

// NewSequenceError reports a workflow step invoked before its prerequisite
// step completed (e.g. approve without review).
func NewSequenceError(step, missing string) *AppError {
	return &AppError{
		Type:       ErrorTypeSequence,
		Code:       "WORKFLOW_SEQUENCE_VIOLATION",
		Message:    fmt.Sprintf("%s requires %s to have completed first", step, missing),
		Retryable:  false,
		StatusCode: 409,
		Details: map[string]interface{}{
			"step":         step,
			"missing_step": missing,
		},
	}
}

// NewContentConstraintError reports a structural content rule violation,
// identifying the specific limit that was breached.
func NewContentConstraintError(rule string, limit, actual int) *AppError {
	return &AppError{
		Type:       ErrorTypeContentConstraint,
		Code:       "CONTENT_CONSTRAINT_VIOLATION",
		Message:    fmt.Sprintf("%s: limit %d, got %d", rule, limit, actual),
		Retryable:  false,
		StatusCode: 422,
		Details: map[string]interface{}{
			"rule":   rule,
			"limit":  limit,
			"actual": actual,
		},
	}
}

// NewCitationRequiredError reports AI-origin content lacking provenance.
// Placeholder citations are never synthesized on the caller's behalf.
func NewCitationRequiredError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeCitationRequired,
		Code:       "CITATION_REQUIRED",
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

// NewConcurrentModificationError reports a stale base hash or version on an
// update; the caller must re-fetch and retry explicitly.
func NewConcurrentModificationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConcurrentModification,
		Code:       "CONCURRENT_MODIFICATION",
		Message:    message,
		Retryable:  false,
		StatusCode: 409,
	}
}

// NewAmbiguousCategoryError reports a disagreement between a requirement's
// category foreign key and its denormalized category text. Never resolved by
// guessing.
func NewAmbiguousCategoryError(fkCategory, textCategory string) *AppError {
	return &AppError{
		Type:       ErrorTypeAmbiguousCategory,
		Code:       "AMBIGUOUS_CATEGORY",
		Message:    fmt.Sprintf("category mismatch: foreign key resolves to %q but text reads %q", fkCategory, textCategory),
		Retryable:  false,
		StatusCode: 409,
		Details: map[string]interface{}{
			"fk_category":   fkCategory,
			"text_category": textCategory,
		},
	}
}

// NewCategoryUnresolvedError reports a requirement whose category cannot be
// determined by either resolution path (no FK, no name match for the text).
func NewCategoryUnresolvedError(textCategory string) *AppError {
	return &AppError{
		Type:       ErrorTypeAmbiguousCategory,
		Code:       "CATEGORY_UNRESOLVED",
		Message:    fmt.Sprintf("category text %q matches no unified category and no foreign key is set", textCategory),
		Retryable:  false,
		StatusCode: 409,
		Details: map[string]interface{}{
			"text_category": textCategory,
		},
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       "CONFLICT",
		Message:    message,
		Retryable:  false,
		StatusCode: 409,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

func NewExternalError(service, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       "EXTERNAL_SERVICE_ERROR",
		Message:    fmt.Sprintf("%s service error: %s", service, message),
		Retryable:  true,
		StatusCode: 502,
		Details:    map[string]interface{}{"service": service},
	}
}

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsNotFound checks if an error indicates a missing entity
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
