package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode returns a numeric code with exactly digits characters,
// drawn from crypto/rand. Leading zeros are preserved.
func GenerateCode(digits int) (string, error) {
	if digits < 1 {
		return "", fmt.Errorf("otp: digits must be positive, got %d", digits)
	}
	max := big.NewInt(10)
	max.Exp(max, big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
