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

const otpKeyPrefix = "otp:"

// expiryGrace keeps records in Redis past their logical expiry so the state
// machine can still answer OTP_EXPIRED instead of OTP_NOT_FOUND. The key TTL
// is only the eviction backstop.
const expiryGrace = 24 * time.Hour

// OtpRepo stores verification records as JSON values keyed by email.
type OtpRepo struct {
	rdb *redis.Client
}

func NewOtpRepo(rdb *redis.Client) *OtpRepo {
	return &OtpRepo{rdb: rdb}
}

func otpKey(email string) string { return otpKeyPrefix + email }

// otpItem is the persisted form of a verification record. The domain struct's
// JSON tags are wire-facing and exclude CodeHash, so persistence carries its
// own mapping with the hash included.
type otpItem struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt int64     `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

func otpItemFrom(rec *domain.OtpRecord) otpItem {
	return otpItem{
		Email:     rec.Email,
		CodeHash:  rec.CodeHash,
		ExpiresAt: rec.ExpiresAt,
		Attempts:  rec.Attempts,
		IsUsed:    rec.IsUsed,
		CreatedAt: rec.CreatedAt,
	}
}

func (it otpItem) record() *domain.OtpRecord {
	return &domain.OtpRecord{
		Email:     it.Email,
		CodeHash:  it.CodeHash,
		ExpiresAt: it.ExpiresAt,
		Attempts:  it.Attempts,
		IsUsed:    it.IsUsed,
		CreatedAt: it.CreatedAt,
	}
}

func (r *OtpRepo) Put(ctx context.Context, rec *domain.OtpRecord) error {
	data, err := json.Marshal(otpItemFrom(rec))
	if err != nil {
		return fmt.Errorf("encode otp record: %w", err)
	}
	ttl := time.Until(time.Unix(rec.ExpiresAt, 0)) + expiryGrace
	if err := r.rdb.Set(ctx, otpKey(rec.Email), data, ttl).Err(); err != nil {
		return fmt.Errorf("store otp record: %w", err)
	}
	return nil
}

func (r *OtpRepo) GetByEmail(ctx context.Context, email string) (*domain.OtpRecord, error) {
	data, err := r.rdb.Get(ctx, otpKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("otp record for %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load otp record: %w", err)
	}
	var it otpItem
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("decode otp record: %w", err)
	}
	return it.record(), nil
}

func (r *OtpRepo) Update(ctx context.Context, rec *domain.OtpRecord) error {
	data, err := json.Marshal(otpItemFrom(rec))
	if err != nil {
		return fmt.Errorf("encode otp record: %w", err)
	}
	if err := r.rdb.Set(ctx, otpKey(rec.Email), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("update otp record: %w", err)
	}
	return nil
}

func (r *OtpRepo) DeleteByEmail(ctx context.Context, email string) error {
	return r.rdb.Del(ctx, otpKey(email)).Err()
}

// DeleteExpired sweeps all otp keys and removes records past their expiry.
// Keys whose grace TTL already evicted them don't show up here.
func (r *OtpRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n := 0
	iter := r.rdb.Scan(ctx, 0, otpKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.rdb.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var it otpItem
		if err := json.Unmarshal(data, &it); err != nil {
			continue
		}
		if now.Unix() > it.ExpiresAt {
			if err := r.rdb.Del(ctx, key).Err(); err != nil {
				return n, err
			}
			n++
		}
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("scan otp keys: %w", err)
	}
	return n, nil
}
