package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"gamehub/internal/auth"
	apperrors "gamehub/internal/errors"
	"gamehub/internal/metrics"
	"gamehub/internal/model"
	"gamehub/internal/repository"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Session is a freshly minted session together with its account.
type Session struct {
	Token *auth.SessionToken
	User  *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) (*Session, error)
	ResendOTP(ctx context.Context, email string) error
	SignOut(ctx context.Context, claims *auth.Claims) error
	ResolveSession(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

// AuthOption customizes an AuthService.
type AuthOption func(*authService)

// WithAuthLogger sets the logger.
func WithAuthLogger(logger *slog.Logger) AuthOption {
	return func(s *authService) { s.logger = logger }
}

// WithAuthMetrics sets the metrics recorder.
func WithAuthMetrics(rec metrics.AuthRecorder) AuthOption {
	return func(s *authService) { s.metrics = rec }
}

type authService struct {
	userRepo   repository.UserRepository
	otp        OTPService
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	sanitizer  *bluemonday.Policy
	logger     *slog.Logger
	metrics    metrics.AuthRecorder
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	otp OTPService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	opts ...AuthOption,
) AuthService {
	s := &authService{
		userRepo:   userRepo,
		otp:        otp,
		jwtService: jwtService,
		tokenStore: tokenStore,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     slog.Default(),
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dummyHash is compared against when the email is unknown so that a missing
// account costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, err := auth.HashPassword("not-a-real-password")
	if err != nil {
		return ""
	}
	return h
})

var passwordTooLong = fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active account with the default role and signs it in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, &apperrors.ValidationError{Fields: []string{passwordTooLong}}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(s.sanitizer.Sanitize(in.Name)),
		PasswordHash: hash,
		Status:       model.StatusActive,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.mintSession(user)
}

// SignIn checks the password and, for an active account, issues an OTP.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *authService) SignIn(ctx context.Context, email, password string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.CheckPassword(password, dummyHash())
			s.metrics.RecordSignIn(metrics.ResultInvalid)
			return apperrors.ErrInvalidCredentials
		}
		s.metrics.RecordSignIn(metrics.ResultError)
		return fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.metrics.RecordSignIn(metrics.ResultInvalid)
		return apperrors.ErrInvalidCredentials
	}

	if !user.Status.IsUsable() {
		s.metrics.RecordSignIn(metrics.ResultAccountBlocked)
		return &apperrors.AccountStatusError{Status: user.Status}
	}

	if err := s.otp.Issue(ctx, user); err != nil {
		s.metrics.RecordSignIn(metrics.ResultError)
		return err
	}
	s.metrics.RecordSignIn(metrics.ResultSuccess)
	return nil
}

// VerifyOTP consumes the passcode and mints a session.
func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	user, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.mintSession(user)
}

// ResendOTP replaces the outstanding passcode with a new one.
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	return s.otp.Resend(ctx, email)
}

// SignOut revokes the token until it would have expired. A revocation store
// failure is logged; the session then ends with its own expiry.
func (s *authService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrUnauthenticated
	}
	if err := s.tokenStore.RevokeSession(ctx, claims.ID, s.jwtService.RemainingLifetime(claims)); err != nil {
		s.logger.WarnContext(ctx, "revoke session failed",
			slog.Uint64("user_id", uint64(claims.UserID)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ResolveSession maps validated claims to the live account. The account is
// re-read on every call so that status changes take effect immediately.
func (s *authService) ResolveSession(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil {
		s.metrics.RecordSessionRejected(metrics.ReasonInvalidToken)
		return nil, apperrors.ErrUnauthenticated
	}

	revoked, err := s.tokenStore.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "revocation check failed, allowing",
			slog.String("error", err.Error()))
	}
	if revoked {
		s.metrics.RecordSessionRejected(metrics.ReasonRevoked)
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordSessionRejected(metrics.ReasonUnknownAccount)
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Status.IsUsable() {
		s.metrics.RecordSessionRejected(metrics.ReasonAccountBlocked)
		return nil, &apperrors.AccountStatusError{Status: user.Status}
	}
	return user, nil
}

func (s *authService) mintSession(user *model.User) (*Session, error) {
	if !user.Status.IsUsable() {
		return nil, &apperrors.AccountStatusError{Status: user.Status}
	}
	token, err := s.jwtService.GenerateSessionToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	s.metrics.RecordSessionIssued()
	return &Session{Token: token, User: user}, nil
}
