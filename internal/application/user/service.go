package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/id"
)

// Repository is the store contract for user records.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

type Service interface {
	// UpsertOnLogin returns the user for email, creating it on first
	// successful verification, and bumps lastLoginAt either way.
	UpsertOnLogin(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) UpsertOnLogin(ctx context.Context, email string) (*domain.User, error) {
	now := time.Now().UTC()
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load user by email: %w", err)
		}
		u = &domain.User{
			UserID:      id.New(),
			Email:       email,
			LastLoginAt: now,
			CreatedAt:   now,
		}
		if err := s.repo.Put(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return u, nil
	}
	if err := s.repo.UpdateLastLogin(ctx, u.UserID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	u.LastLoginAt = now
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
