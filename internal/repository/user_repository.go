package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gamehub/internal/model"
)

// UserRepository is the credential store. Lookups always read the current
// row; nothing is cached.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// SetOTP stores or clears the outstanding code and its expiry together.
	SetOTP(ctx context.Context, id uint, code *string, expiry *time.Time) error
	// ConsumeOTP clears the code only if it still matches, reporting whether it did.
	ConsumeOTP(ctx context.Context, id uint, code string) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status model.AccountStatus) error
	UpdateRole(ctx context.Context, id uint, role model.Role) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user. A duplicate email yields gorm.ErrDuplicatedKey when
// the connection was opened with TranslateError.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) SetOTP(ctx context.Context, id uint, code *string, expiry *time.Time) error {
	values := map[string]interface{}{"otp_code": nil, "otp_expiry": nil}
	if code != nil && expiry != nil {
		values["otp_code"] = *code
		values["otp_expiry"] = *expiry
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

func (r *userRepository) ConsumeOTP(ctx context.Context, id uint, code string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND otp_code = ?", id, code).
		Updates(map[string]interface{}{"otp_code": nil, "otp_expiry": nil})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uint, status model.AccountStatus) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role model.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// ensureExists tells a missing row apart from an update that changed nothing;
// MySQL reports only changed rows as affected.
func (r *userRepository) ensureExists(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
