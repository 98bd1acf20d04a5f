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

const refreshKeyPrefix = "rt:"

// RefreshTokenRepo stores refresh token records as JSON values keyed by the
// sha256 hex of the token.
type RefreshTokenRepo struct {
	rdb *redis.Client
}

func NewRefreshTokenRepo(rdb *redis.Client) *RefreshTokenRepo {
	return &RefreshTokenRepo{rdb: rdb}
}

func refreshKey(hash string) string { return refreshKeyPrefix + hash }

func (r *RefreshTokenRepo) Save(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode refresh token record: %w", err)
	}
	ttl := time.Until(time.Unix(rec.ExpiresAt, 0)) + expiryGrace
	if err := r.rdb.Set(ctx, refreshKey(rec.TokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token record: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) GetByHash(ctx context.Context, hash string) (*domain.RefreshTokenRecord, error) {
	data, err := r.rdb.Get(ctx, refreshKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("refresh token record: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load refresh token record: %w", err)
	}
	var rec domain.RefreshTokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode refresh token record: %w", err)
	}
	return &rec, nil
}

// Revoke flips a live record to revoked inside an optimistic WATCH
// transaction, so concurrent revocations get exactly one winner. Unknown or
// already-revoked hashes return (false, nil).
func (r *RefreshTokenRepo) Revoke(ctx context.Context, hash string) (bool, error) {
	const maxRetries = 4
	key := refreshKey(hash)

	for i := 0; i < maxRetries; i++ {
		var won bool
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return nil
				}
				return err
			}
			var rec domain.RefreshTokenRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			if rec.Revoked {
				return nil
			}
			rec.Revoked = true
			updated, err := json.Marshal(&rec)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, redis.KeepTTL)
				return nil
			})
			if err == nil {
				won = true
			}
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("revoke refresh token: %w", err)
		}
		return won, nil
	}
	return false, fmt.Errorf("revoke refresh token: transaction contention")
}
