package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-otp-auth/internal/domain"
)

// RefreshTokenRepo is a mutex-guarded map keyed by token hash.
type RefreshTokenRepo struct {
	mu      sync.Mutex
	records map[string]domain.RefreshTokenRecord
}

func NewRefreshTokenRepo() *RefreshTokenRepo {
	return &RefreshTokenRepo{records: make(map[string]domain.RefreshTokenRecord)}
}

func (r *RefreshTokenRepo) Save(_ context.Context, rec *domain.RefreshTokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.TokenHash] = *rec
	return nil
}

func (r *RefreshTokenRepo) GetByHash(_ context.Context, hash string) (*domain.RefreshTokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[hash]
	if !ok {
		return nil, fmt.Errorf("refresh token record: %w", domain.ErrNotFound)
	}
	out := rec
	return &out, nil
}

// Revoke transitions a live record to revoked. Returns true only for the call
// that performed the transition; unknown or already-revoked hashes return
// false with no error.
func (r *RefreshTokenRepo) Revoke(_ context.Context, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[hash]
	if !ok || rec.Revoked {
		return false, nil
	}
	rec.Revoked = true
	r.records[hash] = rec
	return true, nil
}
