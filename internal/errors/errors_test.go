package errors

import (
	"errors"
	"net/http"
	"testing"
)

// The same wire code maps to different statuses depending on which rule
// tripped; these pairs are part of the API contract.
func TestStatusMappings(t *testing.T) {
	tests := []struct {
		name       string
		err        *DomainError
		wantCode   string
		wantStatus int
	}{
		{"request cap", ErrOtpRequestLimit, CodeOverLimit, http.StatusMethodNotAllowed},
		{"wrong-attempt block", ErrOtpWrongLimit, CodeOverLimit, http.StatusUnauthorized},
		{"token mismatch attack", ErrTokenMismatch, CodeAttack, http.StatusBadRequest},
		{"exhausted attack block", ErrRequestAttack, CodeAttack, http.StatusUnauthorized},
		{"tampered access token", ErrTamperedToken, CodeAttack, http.StatusUnauthorized},
		{"old password", ErrOldPassword, CodeInvalid, http.StatusForbidden},
		{"otp expired", ErrOtpExpired, CodeOtpExpired, http.StatusForbidden},
		{"request expired", ErrRequestExpired, CodeRequestExpired, http.StatusForbidden},
		{"account freeze", ErrAccountFreeze, CodeAccountFreeze, http.StatusUnauthorized},
		{"duplicate email", ErrUserExist, CodeUserExist, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if got := ToHTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := WrapError(ErrInternal, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error lost its cause")
	}
	if ToHTTPStatus(wrapped) != http.StatusInternalServerError {
		t.Errorf("status = %d", ToHTTPStatus(wrapped))
	}
	if ToErrorCode(wrapped) != CodeServer {
		t.Errorf("code = %q", ToErrorCode(wrapped))
	}
}

func TestToErrorCodeDefaultsToServer(t *testing.T) {
	if got := ToErrorCode(errors.New("plain")); got != CodeServer {
		t.Errorf("code = %q, want %q", got, CodeServer)
	}
}
