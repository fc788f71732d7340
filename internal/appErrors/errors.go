package appErrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

// AppError is the application error carried across service boundaries.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predeclared errors.
var (
	// Authentication
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
	ErrWeakPassword       = New(CodeWeakPassword, "Password must be at least 6 characters", http.StatusBadRequest)
	ErrEmailAlreadyExists = New("EMAIL_ALREADY_EXISTS", "Email already exists", http.StatusConflict)

	// Resources
	ErrUserNotFound    = New(CodeUserNotFound, "User not found", http.StatusNotFound)
	ErrRequestNotFound = New(CodeRequestNotFound, "Payment request not found", http.StatusNotFound)
	ErrRouteNotFound   = New(CodeRouteNotFound, "Payment link not found or expired", http.StatusNotFound)
	ErrPaymentNotFound = New(CodePaymentNotFound, "Outgoing payment not found", http.StatusNotFound)

	// Payment lifecycle
	ErrVerificationRejected = New(CodeVerificationRejected, "Payment proof rejected", http.StatusPaymentRequired)
	ErrVerificationTimeout  = New(CodeVerificationTimeout, "Payment verification timed out", http.StatusGatewayTimeout)
	ErrNoWallet             = New(CodeNoWallet, "Recipient has no receiving address configured", http.StatusConflict)
	ErrSendFailure          = New(CodeSendFailure, "Outgoing payment execution failed", http.StatusBadGateway)
	ErrInvalidTransition    = New(CodeInvalidTransition, "Payment request is not in a state that allows this operation", http.StatusConflict)
	ErrCancelAfterPaid      = New(CodeCancelAfterPaid, "Cannot cancel a request that was already paid; issue a refund instead", http.StatusConflict)

	// Validation
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
)

func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

func DatabaseError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "Database operation failed", http.StatusInternalServerError)
}

func ExternalServiceError(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "External service call failed", http.StatusBadGateway)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func NewNotFoundError(message string) *AppError {
	return New(CodeRequestNotFound, message, http.StatusNotFound)
}
