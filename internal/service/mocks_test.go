package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gamehub/internal/auth"
	"gamehub/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) SetOTP(ctx context.Context, id uint, code *string, expiry *time.Time) error {
	args := m.Called(ctx, id, code, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeOTP(ctx context.Context, id uint, code string) (bool, error) {
	args := m.Called(ctx, id, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id uint, status model.AccountStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uint, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// MockSender is a mock implementation of notify.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendOTP(ctx context.Context, to, code string, expiresAt time.Time) error {
	args := m.Called(ctx, to, code, expiresAt)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockOTPService is a mock implementation of OTPService.
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Issue(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockOTPService) Resend(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockOTPService) Verify(ctx context.Context, email, code string) (*model.User, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

var _ auth.TokenStoreInterface = (*MockTokenStore)(nil)
