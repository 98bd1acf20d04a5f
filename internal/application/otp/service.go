package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/infrastructure/mail"
	"github.com/go-otp-auth/internal/pkg/keylock"
	pkgotp "github.com/go-otp-auth/internal/pkg/otp"
	"github.com/go-otp-auth/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the store contract for verification records. Put replaces any
// existing record for the same email.
type Repository interface {
	Put(ctx context.Context, rec *domain.OtpRecord) error
	GetByEmail(ctx context.Context, email string) (*domain.OtpRecord, error)
	Update(ctx context.Context, rec *domain.OtpRecord) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Options carries the tunables of the verification state machine.
type Options struct {
	Digits      int
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

type Service interface {
	// Request replaces any active code for email with a fresh one and hands
	// it to the dispatcher. Within the cooldown window it fails with
	// OTP_COOLDOWN_ACTIVE and leaves the stored record untouched.
	Request(ctx context.Context, email string) error
	// Verify runs the check sequence: not-found, used, max-attempts, expired,
	// then the code comparison. Only a real mismatch increments attempts.
	Verify(ctx context.Context, email, code string) error
	// CleanupExpired removes every record past its expiry, used or not.
	// Scheduling is the caller's job.
	CleanupExpired(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	mailer mail.Dispatcher
	locks  *keylock.KeyLock
	opts   Options
}

func NewService(repo Repository, mailer mail.Dispatcher, opts Options) Service {
	return &service{
		repo:   repo,
		mailer: mailer,
		locks:  keylock.New(),
		opts:   opts,
	}
}

func (s *service) Request(ctx context.Context, email string) error {
	if !validate.Email(email) {
		return domain.ValidationError("invalid email address")
	}

	s.locks.Lock(email)
	defer s.locks.Unlock(email)

	now := time.Now().UTC()
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if now.Before(existing.CreatedAt.Add(s.opts.Cooldown)) {
			return domain.ErrOTPCooldownActive
		}
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("load otp record: %w", err)
	}

	code, err := pkgotp.GenerateCode(s.opts.Digits)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp code: %w", err)
	}

	rec := &domain.OtpRecord{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.opts.TTL).Unix(),
		Attempts:  0,
		IsUsed:    false,
		CreatedAt: now,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return fmt.Errorf("store otp record: %w", err)
	}

	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.opts.TTL.Minutes()))
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("dispatch otp email: %w", err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	s.locks.Lock(email)
	defer s.locks.Unlock(email)

	rec, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrOTPNotFound
		}
		// Not a domain outcome: the boundary answers store failures as an
		// internal fault, never as a recoverable OTP code.
		return fmt.Errorf("load otp record: %w", err)
	}
	// Check order matters: used and exhausted records must never reach the
	// comparison, so they leak nothing about whether the code matches.
	if rec.IsUsed {
		return domain.ErrOTPInvalid
	}
	if rec.Attempts >= s.opts.MaxAttempts {
		return domain.ErrOTPMaxAttempts
	}
	if rec.Expired(time.Now().UTC()) {
		return domain.ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		rec.Attempts++
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("persist attempt count: %w", err)
		}
		return domain.ErrOTPInvalid
	}

	rec.IsUsed = true
	if err := s.repo.Update(ctx, rec); err != nil {
		return fmt.Errorf("mark otp used: %w", err)
	}
	return nil
}

func (s *service) CleanupExpired(ctx context.Context) (int, error) {
	return s.repo.DeleteExpired(ctx, time.Now().UTC())
}
