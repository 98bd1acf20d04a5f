package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_LengthAndDigits(t *testing.T) {
	for _, digits := range []int{4, 6, 8} {
		for i := 0; i < 50; i++ {
			code, err := GenerateCode(digits)
			require.NoError(t, err)
			require.Len(t, code, digits)
			for _, c := range code {
				assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit", code)
			}
		}
	}
}

func TestGenerateCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		seen[code] = true
	}
	// 100 draws from a million values colliding down to a handful would
	// indicate a broken source.
	assert.Greater(t, len(seen), 90)
}

func TestGenerateCode_InvalidLength(t *testing.T) {
	_, err := GenerateCode(0)
	assert.Error(t, err)
}
