package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a wire code, a message
// and the HTTP status it maps to. The same code may surface with different
// statuses (the attack code is 400 on a token mismatch but 401 once the
// daily block has tripped), so the status is part of the error itself.
type DomainError struct {
	Code    string
	Message string
	Status  int
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Status:  domainErr.Status,
		Err:     err,
	}
}

// Wire error codes
const (
	CodeInvalid         = "Error_Invalid"
	CodeUnauthenticated = "Error_Unauthenticated"
	CodeUnauthorised    = "Error_Unauthorised"
	CodeAttack          = "Error_Attack"
	CodeAccountFreeze   = "Error_AccountFreeze"
	CodeOverLimit       = "Error_OverLimit"
	CodeOtpExpired      = "Error_OtpExpired"
	CodeRequestExpired  = "Error_RequestExpired"
	CodeUserExist       = "Error_UserExist"
	CodeNotFound        = "Error_NotFound"
	CodeServer          = "Error_Server"
)

// Predefined domain errors
var (
	// Registration / lookup
	ErrUserExist    = NewDomainError(CodeUserExist, "This email has already been registered", http.StatusConflict)
	ErrUserNotFound = NewDomainError(CodeUnauthenticated, "This user has not registered", http.StatusUnauthorized)
	ErrNotFound     = NewDomainError(CodeNotFound, "resource not found", http.StatusNotFound)

	// Login / session
	ErrInvalidCredentials = NewDomainError(CodeUnauthenticated, "Email or password is incorrect", http.StatusUnauthorized)
	ErrAccountFreeze      = NewDomainError(CodeAccountFreeze, "Your account is temporarily locked. Please contact us", http.StatusUnauthorized)
	ErrUnauthenticated    = NewDomainError(CodeUnauthenticated, "Not authenticated", http.StatusUnauthorized)
	ErrInvalidRefresh     = NewDomainError(CodeUnauthenticated, "Invalid refresh token", http.StatusUnauthorized)
	ErrTamperedToken      = NewDomainError(CodeAttack, "Invalid access token", http.StatusUnauthorized)
	ErrForbidden          = NewDomainError(CodeUnauthorised, "This action is not allowed", http.StatusForbidden)

	// OTP state machine
	ErrOtpRequestLimit = NewDomainError(CodeOverLimit, "OTP is allowed to request 5 times per day", http.StatusMethodNotAllowed)
	ErrOtpWrongLimit   = NewDomainError(CodeOverLimit, "OTP is wrong for 5 times. Please try again tomorrow", http.StatusUnauthorized)
	ErrOtpTokenInvalid = NewDomainError(CodeInvalid, "Invalid token", http.StatusBadRequest)
	ErrOtpIncorrect    = NewDomainError(CodeInvalid, "OTP is incorrect", http.StatusUnauthorized)
	ErrOtpExpired      = NewDomainError(CodeOtpExpired, "OTP is expired", http.StatusForbidden)
	ErrRequestExpired  = NewDomainError(CodeRequestExpired, "Your request is expired. Please try again", http.StatusForbidden)
	ErrRequestAttack   = NewDomainError(CodeAttack, "This request may be an attack. Please try again tomorrow", http.StatusUnauthorized)
	ErrTokenMismatch   = NewDomainError(CodeAttack, "Token is invalid", http.StatusBadRequest)
	ErrOldPassword     = NewDomainError(CodeInvalid, "Old password is incorrect", http.StatusForbidden)

	// Input / system
	ErrInvalidInput = NewDomainError(CodeInvalid, "invalid input", http.StatusBadRequest)
	ErrInternal     = NewDomainError(CodeServer, "internal server error", http.StatusInternalServerError)
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Status != 0 {
		return domainErr.Status
	}

	return http.StatusInternalServerError
}

// ToErrorCode extracts the wire code, defaulting to the server error code so
// unexpected failures never leak internals to the client.
func ToErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeServer
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
