package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamehub/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to ":memory:" would get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}))
	return db
}

func createUser(t *testing.T, repo UserRepository, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "hash", Status: model.StatusActive, Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	created := createUser(t, repo, "a@x.com")

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, model.StatusActive, byEmail.Status)
	assert.Nil(t, byEmail.OTPCode)
	assert.Nil(t, byEmail.OTPExpiry)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	createUser(t, repo, "dup@x.com")

	err := repo.Create(context.Background(), &model.User{Email: "dup@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_FindByEmailReturnsAnyStatus(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "s@x.com")
	require.NoError(t, repo.UpdateStatus(ctx, u.ID, model.StatusSuspended))

	got, err := repo.FindByEmail(ctx, "s@x.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuspended, got.Status)
}

func TestUserRepository_SetOTPAndClear(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "otp@x.com")

	code := "123456"
	expiry := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	require.NoError(t, repo.SetOTP(ctx, u.ID, &code, &expiry))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.HasPendingOTP())
	assert.Equal(t, "123456", *got.OTPCode)
	assert.True(t, got.OTPExpiry.Equal(expiry))

	require.NoError(t, repo.SetOTP(ctx, u.ID, nil, nil))
	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OTPCode)
	assert.Nil(t, got.OTPExpiry)
}

func TestUserRepository_SetOTPHalfNilClearsBoth(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "half@x.com")

	code := "123456"
	require.NoError(t, repo.SetOTP(ctx, u.ID, &code, nil))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OTPCode)
	assert.Nil(t, got.OTPExpiry)
}

func TestUserRepository_SetOTPUnknownUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	code := "123456"
	expiry := time.Now()

	err := repo.SetOTP(context.Background(), 404, &code, &expiry)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ConsumeOTP(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "c@x.com")

	code := "654321"
	expiry := time.Now().Add(5 * time.Minute)
	require.NoError(t, repo.SetOTP(ctx, u.ID, &code, &expiry))

	ok, err := repo.ConsumeOTP(ctx, u.ID, "111111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ConsumeOTP(ctx, u.ID, "654321")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPendingOTP())

	ok, err = repo.ConsumeOTP(ctx, u.ID, "654321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_UpdateStatusAndRole(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "r@x.com")

	require.NoError(t, repo.UpdateRole(ctx, u.ID, model.RoleAdmin))
	require.NoError(t, repo.UpdateStatus(ctx, u.ID, model.StatusInactive))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.Equal(t, model.StatusInactive, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 999, model.StatusActive), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateRole(ctx, 999, model.RoleUser), gorm.ErrRecordNotFound)
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	createUser(t, repo, "1@x.com")
	createUser(t, repo, "2@x.com")

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "1@x.com", users[0].Email)
	assert.Equal(t, "2@x.com", users[1].Email)
}

func TestUserRepository_DefaultsApplied(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := &model.User{Email: "d@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(context.Background(), u))

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.Equal(t, model.RoleUser, got.Role)
}

func TestUserRepository_UpdateToSameValue(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := createUser(t, repo, "same@x.com")

	assert.NoError(t, repo.UpdateStatus(context.Background(), u.ID, model.StatusActive))
	assert.NoError(t, repo.UpdateRole(context.Background(), u.ID, model.RoleUser))
}
