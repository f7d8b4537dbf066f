package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors forming the ledger error taxonomy. Services wrap these with
// operation-specific context via fmt.Errorf("%w: ..."); handlers translate
// them to HTTP statuses with errors.Is.
var (
	// ErrValidation indicates malformed input: unbalanced entries, bad account
	// codes, negative amounts. Validation failures never mutate state.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates that a requested account, transaction or entry
	// does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates an illegal state transition: posting a non-pending
	// transaction, reversing a non-posted one, closing an account that still
	// carries a balance.
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrDuplicate indicates a uniqueness violation: duplicate account code or
	// reference number. Callers retrying with the same reference number rely
	// on this to detect replays.
	ErrDuplicate = errors.New("resource already exists")

	// ErrForbidden indicates the authorization oracle refused the caller.
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates a storage or infrastructure failure. Surfaced
	// untouched; the engine never silently retries a write.
	ErrInternal = errors.New("internal error")
)

// AppError carries an HTTP-mappable code alongside the wrapped cause so the
// repository layer can report storage failures without importing transport
// packages.
type AppError struct {
	Code    int    // HTTP status code equivalent
	Message string // Human-readable reason usable for audit and support
	Err     error  // Underlying cause, may be nil
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, falling back to the taxonomy sentinel
// matching the code so that errors.Is works on bare AppErrors.
func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return sentinelForCode(e.Code)
}

func sentinelForCode(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return ErrInternal
	}
}

// NewAppError constructs an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError constructs a 404-class AppError.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewBadRequestError constructs a 400-class AppError.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewConflictError constructs a 409-class AppError.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrConflict}
}

// NewDuplicateError constructs a 409-class AppError for uniqueness violations.
func NewDuplicateError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrDuplicate}
}

// NewInternalServerError constructs a 500-class AppError.
func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: ErrInternal}
}

// HTTPStatus maps any error to the HTTP status of its taxonomy class.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
