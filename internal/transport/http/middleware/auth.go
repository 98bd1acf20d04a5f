package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-otp-auth/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// AccessVerifier is what the auth middleware needs from the token service.
type AccessVerifier interface {
	VerifyAccess(tokenStr string) (string, error)
}

// AccessCookieName is where cookie-mode clients carry the access token.
const AccessCookieName = "accessToken"

// Auth returns middleware that authenticates the request from either the
// Authorization header (bearer mode) or the accessToken cookie (cookie mode)
// and injects the user id into context. A missing credential is UNAUTHORIZED;
// a present-but-bad one surfaces the verifier's TOKEN_* error.
func Auth(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			} else if c, err := r.Cookie(AccessCookieName); err == nil {
				tokenStr = c.Value
			}
			if tokenStr == "" {
				writeDomainError(w, r, domain.ErrUnauthorized)
				return
			}
			userID, err := verifier.VerifyAccess(tokenStr)
			if err != nil {
				derr, ok := domain.AsError(err)
				if !ok {
					derr = domain.ErrTokenInvalid
				}
				writeDomainError(w, r, derr)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
