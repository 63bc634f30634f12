package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"gamehub/internal/auth"
	apperrors "gamehub/internal/errors"
	"gamehub/internal/metrics"
	"gamehub/internal/model"
	"gamehub/internal/notify"
	"gamehub/internal/repository"
)

// OTPTTL is how long an issued passcode stays valid.
const OTPTTL = 5 * time.Minute

// OTPService issues and verifies one-time passcodes.
type OTPService interface {
	Issue(ctx context.Context, user *model.User) error
	Resend(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (*model.User, error)
}

// OTPOption customizes an OTPService.
type OTPOption func(*otpService)

// WithOTPClock replaces the time source.
func WithOTPClock(now func() time.Time) OTPOption {
	return func(s *otpService) { s.now = now }
}

// WithOTPLogger sets the logger.
func WithOTPLogger(logger *slog.Logger) OTPOption {
	return func(s *otpService) { s.logger = logger }
}

// WithCodeLogging writes issued codes to the log. Never enable in production.
func WithCodeLogging(enabled bool) OTPOption {
	return func(s *otpService) { s.logCodes = enabled }
}

// WithOTPMetrics sets the metrics recorder.
func WithOTPMetrics(rec metrics.AuthRecorder) OTPOption {
	return func(s *otpService) { s.metrics = rec }
}

// WithCodeGenerator replaces the passcode generator.
func WithCodeGenerator(gen func() (string, error)) OTPOption {
	return func(s *otpService) { s.generate = gen }
}

type otpService struct {
	repo     repository.UserRepository
	sender   notify.Sender
	now      func() time.Time
	generate func() (string, error)
	logger   *slog.Logger
	logCodes bool
	metrics  metrics.AuthRecorder
}

// NewOTPService creates an OTPService.
func NewOTPService(repo repository.UserRepository, sender notify.Sender, opts ...OTPOption) OTPService {
	s := &otpService{
		repo:     repo,
		sender:   sender,
		now:      time.Now,
		generate: auth.GenerateOTP,
		logger:   slog.Default(),
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue stores a fresh code for the user, replacing any outstanding one, and
// delivers it. The code stays stored when delivery fails.
func (s *otpService) Issue(ctx context.Context, user *model.User) error {
	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiry := s.now().Add(OTPTTL)

	if err := s.repo.SetOTP(ctx, user.ID, &code, &expiry); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if s.logCodes {
		s.logger.WarnContext(ctx, "otp issued",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("otp", code),
		)
	}

	if err := s.sender.SendOTP(ctx, user.Email, code, expiry); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	s.metrics.RecordOTPIssued()
	return nil
}

// Resend issues a new code to an existing active account.
func (s *otpService) Resend(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !user.Status.IsUsable() {
		return &apperrors.AccountStatusError{Status: user.Status}
	}
	return s.Issue(ctx, user)
}

// Verify checks the submitted code against the stored one and consumes it.
// A code matches only while now is strictly before its expiry.
func (s *otpService) Verify(ctx context.Context, email, code string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordOTPVerification(metrics.ResultNotFound)
			return nil, apperrors.ErrNoOTPFound
		}
		s.metrics.RecordOTPVerification(metrics.ResultError)
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Status.IsUsable() {
		s.metrics.RecordOTPVerification(metrics.ResultAccountBlocked)
		return nil, &apperrors.AccountStatusError{Status: user.Status}
	}
	if !user.HasPendingOTP() {
		s.metrics.RecordOTPVerification(metrics.ResultNotFound)
		return nil, apperrors.ErrNoOTPFound
	}

	matches := subtle.ConstantTimeCompare([]byte(code), []byte(*user.OTPCode)) == 1
	if !matches || !s.now().Before(*user.OTPExpiry) {
		s.metrics.RecordOTPVerification(metrics.ResultInvalid)
		return nil, apperrors.ErrInvalidOrExpiredOTP
	}

	consumed, err := s.repo.ConsumeOTP(ctx, user.ID, code)
	if err != nil {
		s.metrics.RecordOTPVerification(metrics.ResultError)
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		// another request consumed or replaced the code since it was read
		s.metrics.RecordOTPVerification(metrics.ResultNotFound)
		return nil, apperrors.ErrNoOTPFound
	}

	user.OTPCode = nil
	user.OTPExpiry = nil
	s.metrics.RecordOTPVerification(metrics.ResultSuccess)
	return user, nil
}
