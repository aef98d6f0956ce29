// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by failure class.
const (
	// Infrastructure errors (5xx)
	CodeInternal              = "INTERNAL_ERROR"
	CodeDataSourceUnavailable = "DATA_SOURCE_UNAVAILABLE"
	CodeTimeout               = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Stock resolution errors (422) - structural problems of one article
	CodeNoUnitsDefined          = "NO_UNITS_DEFINED"
	CodeInvalidConversionFactor = "INVALID_CONVERSION_FACTOR"
	CodeAnchorUnitUnresolvable  = "ANCHOR_UNIT_UNRESOLVABLE"

	// Business rule violations (422)
	CodeBusinessRule = "BUSINESS_RULE_VIOLATION"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the service.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, ids, quantities)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewNoUnitsDefined signals an article without any unit rows.
// Resolution for such an article is impossible; there is no base unit.
func NewNoUnitsDefined(articleID any) *AppError {
	return &AppError{
		Code:       CodeNoUnitsDefined,
		Message:    "article has no units defined",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"article_id": articleID},
	}
}

// NewInvalidConversionFactor signals a unit with a non-positive conversion
// factor. Resolution must fail loudly instead of producing 0 or +Inf.
func NewInvalidConversionFactor(articleID, unitID any, factor string) *AppError {
	return &AppError{
		Code:       CodeInvalidConversionFactor,
		Message:    "unit has a non-positive conversion factor",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"article_id": articleID,
			"unit_id":    unitID,
			"factor":     factor,
		},
	}
}

// NewAnchorUnitUnresolvable signals a physical count whose article code does
// not match any known unit of the article.
func NewAnchorUnitUnresolvable(articleCode string, warehouseID any) *AppError {
	return &AppError{
		Code:       CodeAnchorUnitUnresolvable,
		Message:    "inventory count references an unknown article code",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"article_code": articleCode,
			"warehouse_id": warehouseID,
		},
	}
}

// NewDataSourceUnavailable wraps a connectivity failure. Callers must abort;
// retry policy belongs to them, never to the engine.
func NewDataSourceUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeDataSourceUnavailable,
		Message:    "data source unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewBusinessRule creates a business rule violation error (422).
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsDataSourceUnavailable checks if error is CodeDataSourceUnavailable.
func IsDataSourceUnavailable(err error) bool {
	return HasCode(err, CodeDataSourceUnavailable)
}

// IsRowStructural reports whether the error is one of the per-article
// structural codes that flag a row in bulk mode instead of aborting it.
func IsRowStructural(err error) bool {
	return HasCode(err, CodeNoUnitsDefined) ||
		HasCode(err, CodeInvalidConversionFactor) ||
		HasCode(err, CodeAnchorUnitUnresolvable)
}

// HasCode checks the AppError code in the chain.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
