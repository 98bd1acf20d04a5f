package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/pkg/keylock"
	pkgtoken "github.com/go-otp-auth/internal/pkg/token"
)

// Repository is the store contract for refresh token records, keyed by token
// hash. Revoke must be one-winner: it returns true only for the call that
// actually transitioned the record from live to revoked.
type Repository interface {
	Save(ctx context.Context, rec *domain.RefreshTokenRecord) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshTokenRecord, error)
	Revoke(ctx context.Context, hash string) (bool, error)
}

// Signer is what the service needs from the JWT provider.
type Signer interface {
	Sign(userID string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type Service interface {
	// Issue mints an access/refresh pair for userID and registers the
	// refresh token as live.
	Issue(ctx context.Context, userID string) (*domain.TokenPair, error)
	// VerifyAccess validates an access token and returns the user id claim.
	VerifyAccess(tokenStr string) (string, error)
	// Refresh rotates a live refresh token into a new pair. Exactly one of
	// two concurrent calls with the same token succeeds; the loser gets
	// TOKEN_INVALID.
	Refresh(ctx context.Context, rawRefresh string) (*domain.TokenPair, error)
	// Revoke marks a refresh token dead. Idempotent: unknown and
	// already-revoked tokens are not errors at this layer.
	Revoke(ctx context.Context, rawRefresh string) error
}

type service struct {
	repo       Repository
	signer     Signer
	locks      *keylock.KeyLock
	refreshTTL time.Duration
}

func NewService(repo Repository, signer Signer, refreshTTL time.Duration) Service {
	return &service{
		repo:       repo,
		signer:     signer,
		locks:      keylock.New(),
		refreshTTL: refreshTTL,
	}
}

func (s *service) Issue(ctx context.Context, userID string) (*domain.TokenPair, error) {
	access, err := s.signer.Sign(userID)
	if err != nil {
		return nil, err
	}
	raw, err := pkgtoken.New()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := &domain.RefreshTokenRecord{
		TokenHash: pkgtoken.Hash(raw),
		UserID:    userID,
		ExpiresAt: now.Add(s.refreshTTL).Unix(),
		Revoked:   false,
		CreatedAt: now,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("register refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

func (s *service) VerifyAccess(tokenStr string) (string, error) {
	claims, err := s.signer.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *service) Refresh(ctx context.Context, rawRefresh string) (*domain.TokenPair, error) {
	hash := pkgtoken.Hash(rawRefresh)
	s.locks.Lock(hash)
	defer s.locks.Unlock(hash)

	rec, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("load refresh token record: %w", err)
	}
	if rec.Revoked {
		return nil, domain.ErrTokenInvalid
	}
	if rec.ExpiresAt < time.Now().Unix() {
		return nil, domain.ErrTokenExpired
	}
	// First successful revocation wins; a racing refresh that lost the store
	// transition is rejected even though it passed the checks above.
	ok, err := s.repo.Revoke(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return s.Issue(ctx, rec.UserID)
}

func (s *service) Revoke(ctx context.Context, rawRefresh string) error {
	hash := pkgtoken.Hash(rawRefresh)
	s.locks.Lock(hash)
	defer s.locks.Unlock(hash)

	if _, err := s.repo.Revoke(ctx, hash); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
