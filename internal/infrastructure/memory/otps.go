package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-otp-auth/internal/domain"
)

// OtpRepo is a mutex-guarded map keyed by email. One record per email by
// construction: Put overwrites.
type OtpRepo struct {
	mu      sync.RWMutex
	records map[string]domain.OtpRecord
}

func NewOtpRepo() *OtpRepo {
	return &OtpRepo{records: make(map[string]domain.OtpRecord)}
}

func (r *OtpRepo) Put(_ context.Context, rec *domain.OtpRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Email] = *rec
	return nil
}

func (r *OtpRepo) GetByEmail(_ context.Context, email string) (*domain.OtpRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[email]
	if !ok {
		return nil, fmt.Errorf("otp record for %s: %w", email, domain.ErrNotFound)
	}
	out := rec
	return &out, nil
}

func (r *OtpRepo) Update(_ context.Context, rec *domain.OtpRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.Email]; !ok {
		return fmt.Errorf("otp record for %s: %w", rec.Email, domain.ErrNotFound)
	}
	r.records[rec.Email] = *rec
	return nil
}

func (r *OtpRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, email)
	return nil
}

func (r *OtpRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for email, rec := range r.records {
		if now.Unix() > rec.ExpiresAt {
			delete(r.records, email)
			n++
		}
	}
	return n, nil
}
