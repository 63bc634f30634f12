package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"gamehub/internal/model"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"wrapped unauthenticated", fmt.Errorf("guard: %w", ErrUnauthenticated), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"no otp", ErrNoOTPFound, http.StatusBadRequest, "OTP_NOT_FOUND"},
		{"bad otp", ErrInvalidOrExpiredOTP, http.StatusBadRequest, "OTP_INVALID"},
		{"duplicate", ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"suspended", &AccountStatusError{Status: model.StatusSuspended}, http.StatusForbidden, "ACCOUNT_SUSPENDED"},
		{"inactive wrapped", fmt.Errorf("sign in: %w", &AccountStatusError{Status: model.StatusInactive}), http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{"validation", &ValidationError{Fields: []string{"email is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("Error 1045: Access denied for user 'root'"))
	assert.Equal(t, "internal server error", httpErr.Message)
	assert.Equal(t, ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}, httpErr.ToErrorResponse())
}

func TestAccountStatusError_Message(t *testing.T) {
	err := &AccountStatusError{Status: model.StatusSuspended}
	assert.Equal(t, "account is SUSPENDED", err.Error())
}

func TestNewValidationError(t *testing.T) {
	type request struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
		OTP      string `validate:"required,len=6,numeric"`
	}

	err := validator.New().Struct(&request{Email: "nope", Password: "abc", OTP: "12"})
	verr := NewValidationError(err)

	assert.ElementsMatch(t, []string{
		"email must be a valid email address",
		"password must be at least 6 characters",
		"otp must be exactly 6 characters",
	}, verr.Fields)
}

func TestNewValidationError_NonValidatorError(t *testing.T) {
	verr := NewValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "invalid request body", verr.Error())
}
