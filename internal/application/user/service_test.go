package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertOnLogin_CreatesThenReuses(t *testing.T) {
	svc := NewService(memory.NewUserRepo())
	ctx := context.Background()

	first, err := svc.UpsertOnLogin(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, first.UserID)
	assert.Equal(t, "a@b.com", first.Email)

	time.Sleep(10 * time.Millisecond)
	second, err := svc.UpsertOnLogin(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.True(t, second.LastLoginAt.After(first.LastLoginAt))
}

func TestGet_UnknownUser(t *testing.T) {
	svc := NewService(memory.NewUserRepo())
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// failingUserRepo simulates a store outage: every operation fails.
type failingUserRepo struct{ err error }

func (r *failingUserRepo) Get(context.Context, string) (*domain.User, error) { return nil, r.err }
func (r *failingUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, r.err
}
func (r *failingUserRepo) Put(context.Context, *domain.User) error { return r.err }
func (r *failingUserRepo) UpdateLastLogin(context.Context, string, time.Time) error {
	return r.err
}

func TestGet_StoreFailureIsNotNotFound(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewService(&failingUserRepo{err: storeErr})

	_, err := svc.Get(context.Background(), "u1")
	require.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	_, ok := domain.AsError(err)
	assert.False(t, ok, "a store outage must not surface as NOT_FOUND")
}

// lookupFailRepo fails lookups but would accept writes, to show that an
// outage during the email lookup never reaches the create path.
type lookupFailRepo struct {
	err       error
	putCalled bool
}

func (r *lookupFailRepo) Get(context.Context, string) (*domain.User, error) { return nil, r.err }
func (r *lookupFailRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, r.err
}
func (r *lookupFailRepo) Put(context.Context, *domain.User) error {
	r.putCalled = true
	return nil
}
func (r *lookupFailRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func TestUpsertOnLogin_StoreFailureDoesNotCreate(t *testing.T) {
	repo := &lookupFailRepo{err: errors.New("connection refused")}
	svc := NewService(repo)

	_, err := svc.UpsertOnLogin(context.Background(), "a@b.com")
	require.ErrorIs(t, err, repo.err)
	assert.False(t, repo.putCalled, "an outage during lookup must not mint a fresh user")
}
