package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user_email:"
)

// UserRepo stores user records as JSON values keyed by id, with a plain
// email -> id index key. Users never expire.
type UserRepo struct {
	rdb *redis.Client
}

func NewUserRepo(rdb *redis.Client) *UserRepo {
	return &UserRepo{rdb: rdb}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	data, err := r.rdb.Get(ctx, userKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	userID, err := r.rdb.Get(ctx, userEmailKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("user by email: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load user email index: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKeyPrefix+u.UserID, data, 0)
		pipe.Set(ctx, userEmailKeyPrefix+u.Email, u.UserID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	u.LastLoginAt = at
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.rdb.Set(ctx, userKeyPrefix+userID, data, 0).Err()
}
