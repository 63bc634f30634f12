// Package notify delivers one-time passcodes to users.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Sender delivers an OTP to an email address. Implementations must return
// only after delivery was handed off successfully, or return an error.
type Sender interface {
	SendOTP(ctx context.Context, to, code string, expiresAt time.Time) error
}

func otpSubject() string {
	return "Your GameHub sign-in code"
}

func otpBody(code string, expiresAt time.Time) string {
	return fmt.Sprintf(
		"Your sign-in code is %s.\n\nIt expires at %s. If you did not try to sign in, you can ignore this email.\n",
		code, expiresAt.UTC().Format("15:04 MST, 02 Jan 2006"),
	)
}
