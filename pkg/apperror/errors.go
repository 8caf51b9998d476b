package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Order Business Logic (ORD) ----

func ErrDuplicateReference() *AppError {
	return New("ORD_001", "Reference number already used", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("ORD_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrNotCancellable() *AppError {
	return New("ORD_003", "Order is not in a cancellable state", http.StatusConflict)
}

// Validation returns a request-validation error with the given message.
func Validation(message string) *AppError {
	return New("ORD_004", message, http.StatusBadRequest)
}

// ---- Exchange Integration (BSE) ----

func ErrExchangeAuth(err error) *AppError {
	return Wrap("BSE_001", "Exchange rejected authentication", http.StatusBadGateway, err)
}

func ErrExchangeSessionExpired(err error) *AppError {
	return Wrap("BSE_002", "Exchange session expired, re-authentication required", http.StatusServiceUnavailable, err)
}

func ErrExchangeUnreachable(err error) *AppError {
	return Wrap("BSE_003", "Exchange unreachable, request may be retried", http.StatusGatewayTimeout, err)
}

func ErrExchangeRejected(message string, err error) *AppError {
	return Wrap("BSE_004", message, http.StatusUnprocessableEntity, err)
}

func ErrExchangeProtocol(err error) *AppError {
	return Wrap("BSE_005", "Malformed exchange reply", http.StatusBadGateway, err)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
