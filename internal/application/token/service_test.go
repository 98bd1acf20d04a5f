package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/infrastructure/memory"
	pkgtoken "github.com/go-otp-auth/internal/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-123"

func newTestService(t *testing.T, accessTTL time.Duration) (Service, *memory.RefreshTokenRepo) {
	t.Helper()
	provider, err := jwtinfra.NewProvider(&config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: accessTTL,
	})
	require.NoError(t, err)
	repo := memory.NewRefreshTokenRepo()
	return NewService(repo, provider, 24*time.Hour), repo
}

func TestIssue_PairRoundTrip(t *testing.T) {
	svc, repo := newTestService(t, time.Hour)

	pair, err := svc.Issue(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	userID, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)

	// The store is keyed by hash; the raw token must not be a key.
	_, err = repo.GetByHash(context.Background(), pkgtoken.Hash(pair.RefreshToken))
	assert.NoError(t, err)
	_, err = repo.GetByHash(context.Background(), pair.RefreshToken)
	assert.Error(t, err)
}

func TestVerifyAccess_Expired(t *testing.T) {
	svc, _ := newTestService(t, -time.Minute)

	pair, err := svc.Issue(context.Background(), testUserID)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyAccess_Garbage(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	_, err := svc.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRefresh_RotatesAndKillsOldToken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, testUserID)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Rotation is single-use: the exchanged token never works again.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	// The replacement is live.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_UnknownToken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	_, err := svc.Refresh(context.Background(), "completely-unknown")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	svc, repo := newTestService(t, time.Hour)
	ctx := context.Background()

	raw, err := pkgtoken.New()
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, &domain.RefreshTokenRecord{
		TokenHash: pkgtoken.Hash(raw),
		UserID:    testUserID,
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}))

	_, err = svc.Refresh(ctx, raw)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

// failingTokenRepo simulates a store outage: every operation fails.
type failingTokenRepo struct{ err error }

func (r *failingTokenRepo) Save(context.Context, *domain.RefreshTokenRecord) error { return r.err }
func (r *failingTokenRepo) GetByHash(context.Context, string) (*domain.RefreshTokenRecord, error) {
	return nil, r.err
}
func (r *failingTokenRepo) Revoke(context.Context, string) (bool, error) { return false, r.err }

func TestRefresh_StoreFailureIsNotADomainError(t *testing.T) {
	storeErr := errors.New("connection refused")
	provider, err := jwtinfra.NewProvider(&config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	svc := NewService(&failingTokenRepo{err: storeErr}, provider, 24*time.Hour)

	_, err = svc.Refresh(context.Background(), "opaque-refresh-token")
	require.ErrorIs(t, err, storeErr)
	_, ok := domain.AsError(err)
	assert.False(t, ok, "a store outage must not surface as TOKEN_INVALID")
}

func TestRevoke_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, testUserID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, "never-issued"))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRefresh_ConcurrentSameToken_SingleWinner(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, testUserID)
	require.NoError(t, err)

	const workers = 20
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
		}
	}
	assert.Equal(t, 1, successes, "one refresh token must never mint two pairs")
}
