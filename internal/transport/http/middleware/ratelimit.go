package middleware

import (
	"net/http"

	"github.com/go-otp-auth/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimiter is a process-wide token-bucket limiter covering every request
// to the routes it wraps. The per-email OTP cooldown is enforced separately
// inside the OTP service; the two compose.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a global limiter: r requests/second, burst up to
// burst requests.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(r, burst)}
}

// Limit is the middleware handler that enforces the global cap.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter.Allow() {
			writeDomainError(w, r, domain.ErrRateLimitExceeded)
			return
		}
		next.ServeHTTP(w, r)
	})
}
