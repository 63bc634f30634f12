package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"gamehub/internal/model"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUnauthenticated is returned when the session token is missing, invalid, expired or revoked.
	ErrUnauthenticated = errors.New("invalid or expired token")
	// ErrForbidden is returned when the account's role does not permit the action.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrNoOTPFound is returned when no one-time passcode is outstanding.
	ErrNoOTPFound = errors.New("no OTP found, please request a new one")
	// ErrInvalidOrExpiredOTP is returned for a wrong or expired one-time passcode.
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a user lookup by id or email has no match.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidStatus is returned for an unknown account status value.
	ErrInvalidStatus = errors.New("invalid account status")
	// ErrInvalidRole is returned for an unknown role value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidID is returned when a path id is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
)

// AccountStatusError reports that an account exists but is not allowed in.
type AccountStatusError struct {
	Status model.AccountStatus
}

func (e *AccountStatusError) Error() string {
	return fmt.Sprintf("account is %s", e.Status)
}

// ValidationError carries field level messages for a rejected request body.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request body"
	}
	return strings.Join(e.Fields, "; ")
}

// NewValidationError converts validator output into a ValidationError.
func NewValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldMessage(fe))
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", name, fe.Param())
	case "numeric":
		return name + " must contain digits only"
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 so that no internal detail reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	var statusErr *AccountStatusError
	if errors.As(err, &statusErr) {
		return NewHTTPError(http.StatusForbidden, statusErr.Error(), "ACCOUNT_"+string(statusErr.Status))
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Error(), "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNoOTPFound):
		return NewHTTPError(http.StatusBadRequest, ErrNoOTPFound.Error(), "OTP_NOT_FOUND")
	case errors.Is(err, ErrInvalidOrExpiredOTP):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidOrExpiredOTP.Error(), "OTP_INVALID")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidStatus.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRole.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidID.Error(), "INVALID_ID")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
