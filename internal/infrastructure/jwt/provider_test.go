package jwtinfra

import (
	"testing"
	"time"

	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, secret string, ttl time.Duration) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{JWTSecret: secret, AccessTokenTTL: ttl})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresSecret(t *testing.T) {
	_, err := NewProvider(&config.Config{})
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	p := newProvider(t, "secret", time.Hour)

	signed, err := p.Sign("u1")
	require.NoError(t, err)

	claims, err := p.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestVerify_ExpiredToken(t *testing.T) {
	p := newProvider(t, "secret", -time.Minute)

	signed, err := p.Sign("u1")
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	signer := newProvider(t, "secret-a", time.Hour)
	verifier := newProvider(t, "secret-b", time.Hour)

	signed, err := signer.Sign("u1")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	p := newProvider(t, "secret", time.Hour)
	_, err := p.Verify("nonsense")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
