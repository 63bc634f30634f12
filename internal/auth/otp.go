package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

var otpRange = big.NewInt(otpMax - otpMin + 1)

// GenerateOTP returns a 6 digit code drawn uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
