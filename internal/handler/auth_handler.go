package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"gamehub/internal/auth"
	apperrors "gamehub/internal/errors"
	"gamehub/internal/middleware"
	"gamehub/internal/model"
	"gamehub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	production  bool
	now         func() time.Time
}

// NewAuthHandler creates a new auth handler. production switches the session
// cookie to Secure and SameSite=Strict.
func NewAuthHandler(authService service.AuthService, production bool, now func() time.Time) *AuthHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthHandler{authService: authService, production: production, now: now}
}

// AddUserRequest represents an account creation request.
type AddUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"max=255"`
}

// SignInRequest represents a password sign-in request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest represents a passcode submission.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResendOTPRequest represents a request for a new passcode.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserResponse wraps a single account.
type UserResponse struct {
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AddUser godoc
// @Summary Create an account
// @Description Creates an active account with role "user" and signs it in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AddUserRequest true "Account data"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/user-management/add-user [post]
func (h *AuthHandler) AddUser(c echo.Context) error {
	var req AddUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	session, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return respondError(c, err)
	}

	c.SetCookie(auth.SessionCookie(session.Token, h.production, h.now()))
	return c.JSON(http.StatusCreated, UserResponse{
		Message: "user created successfully",
		User:    session.User,
	})
}

// SignIn godoc
// @Summary Sign in with email and password
// @Description Checks the password and emails a one-time passcode valid for 5 minutes.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signIn [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent"})
}

// VerifyOTP godoc
// @Summary Verify the one-time passcode
// @Description Consumes the passcode and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and passcode"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	session, err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return respondError(c, err)
	}

	c.SetCookie(auth.SessionCookie(session.Token, h.production, h.now()))
	return c.JSON(http.StatusOK, SessionResponse{
		Token: session.Token.Token,
		User:  session.User,
	})
}

// ResendOTP godoc
// @Summary Send a new one-time passcode
// @Description Replaces any outstanding passcode.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResendOTPRequest true "Email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req ResendOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.ResendOTP(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP resent"})
}

// SignOut godoc
// @Summary Sign out
// @Description Revokes the session if the cookie still holds a valid token and always expires the cookie.
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Success 200 {object} MessageResponse
// @Router /auth/signOut [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.authService.SignOut(c.Request().Context(), claims); err != nil {
			return respondError(c, err)
		}
	}

	c.SetCookie(auth.ExpiredSessionCookie(h.production))
	return c.JSON(http.StatusOK, MessageResponse{Message: "signed out successfully"})
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/me [post]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}
