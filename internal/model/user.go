package model

import "time"

// AccountStatus is the lifecycle state of a user account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusInactive  AccountStatus = "INACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
)

// IsUsable reports whether an account in this status may sign in or keep a session.
func (s AccountStatus) IsUsable() bool {
	return s == StatusActive
}

// Valid reports whether s is one of the known statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Role is the authorization tier of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a CMS account. Credentials and OTP state never leave the server.
type User struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Email        string        `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string        `json:"name" gorm:"size:255"`
	PasswordHash string        `json:"-" gorm:"column:password;size:255;not null"`
	Status       AccountStatus `json:"status" gorm:"size:20;not null;default:'ACTIVE';index"`
	Role         Role          `json:"role" gorm:"size:50;not null;default:'user'"`
	OTPCode      *string       `json:"-" gorm:"column:otp_code;size:6"`
	OTPExpiry    *time.Time    `json:"-" gorm:"column:otp_expiry"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TableName keeps the table name used by the rest of the platform.
func (User) TableName() string {
	return "auth"
}

// HasPendingOTP reports whether a one-time passcode is outstanding.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiry != nil
}
