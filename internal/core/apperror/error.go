// Package apperror provides structured errors for the ledger core.
// Every business failure carries a machine-readable code plus the
// offending quantities, so callers can render a precise message without
// parsing error strings.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	// Infrastructure (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Input validation (400)
	CodeValidation = "VALIDATION_ERROR"

	// Ledger rule violations (422)
	CodePrecondition            = "PRECONDITION_VIOLATION"
	CodeInsufficientLot         = "INSUFFICIENT_LOT_QUANTITY"
	CodeInsufficientSerialized  = "INSUFFICIENT_SERIALIZED_AVAILABILITY"
	CodeInvalidLotState         = "INVALID_LOT_STATE"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeProductConfiguration    = "PRODUCT_CONFIGURATION_ERROR"

	// Uniqueness / conflicts (409)
	CodeConflict        = "CONFLICT"
	CodeDuplicateSerial = "DUPLICATE_SERIAL_NUMBER"

	// Authorization (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the ledger.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable description
	Message string `json:"message"`

	// Details carries structured context (quantities, identifiers)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (never exposed in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to the error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a request validation error (400).
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

// NewPrecondition signals that a bucket adjustment would violate its
// precondition (negative bucket, direction mismatch). No mutation has
// been applied when this error is returned.
func NewPrecondition(message string) *AppError {
	return &AppError{
		Code:       CodePrecondition,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInsufficientLot signals a lot pool shortfall.
func NewInsufficientLot(requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientLot,
		Message:    "Insufficient lot quantity",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"requested": requested,
			"available": available,
		},
	}
}

// NewInsufficientSerialized signals that no serialized unit can satisfy
// the request.
func NewInsufficientSerialized(productID string, requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientSerialized,
		Message:    "Insufficient serialized units available",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewInvalidLotState signals an operation on a lot in a terminal or
// incompatible state.
func NewInvalidLotState(lotNumber, status string) *AppError {
	return &AppError{
		Code:       CodeInvalidLotState,
		Message:    fmt.Sprintf("lot %s is in state %s", lotNumber, status),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"lot_number": lotNumber, "status": status},
	}
}

// NewInvalidStatusTransition signals a disallowed serialized-unit
// status transition.
func NewInvalidStatusTransition(serialNumber, from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidStatusTransition,
		Message:    fmt.Sprintf("cannot transition from %s to %s", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"serial_number": serialNumber,
			"from":          from,
			"to":            to,
		},
	}
}

// NewDuplicateSerial signals a serial number uniqueness violation.
func NewDuplicateSerial(productID, serialNumber string) *AppError {
	return &AppError{
		Code:       CodeDuplicateSerial,
		Message:    "Serial number already exists for this product",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"product_id":    productID,
			"serial_number": serialNumber,
		},
	}
}

// NewProductConfiguration signals a lot/serial operation on a product
// not configured for that tracking mode.
func NewProductConfiguration(message string) *AppError {
	return &AppError{
		Code:       CodeProductConfiguration,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
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

// NewInternal creates an internal error, hiding details from clients.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403).
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helpers ---

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts an AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a CodeNotFound error.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}
