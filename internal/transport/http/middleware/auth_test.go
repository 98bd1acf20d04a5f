package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	userID string
	err    error
}

func (s *stubVerifier) VerifyAccess(tokenStr string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.userID, nil
}

func protected(t *testing.T, verifier AccessVerifier) (http.Handler, *string) {
	t.Helper()
	var seenUserID string
	h := Auth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		seenUserID = id
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seenUserID
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.False(t, envelope.Success)
	return envelope.Error.Code
}

func TestAuth_MissingCredential(t *testing.T) {
	h, _ := protected(t, &stubVerifier{userID: "u1"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rr.Body.Bytes()))

	var envelope struct {
		Path   string `json:"path"`
		Method string `json:"method"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, "/auth/me", envelope.Path)
	assert.Equal(t, http.MethodGet, envelope.Method)
}

func TestAuth_BearerHeader(t *testing.T) {
	h, seen := protected(t, &stubVerifier{userID: "u1"})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", *seen)
}

func TestAuth_CookieFallback(t *testing.T) {
	h, seen := protected(t, &stubVerifier{userID: "u2"})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "some-token"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u2", *seen)
}

func TestAuth_ExpiredToken(t *testing.T) {
	h, _ := protected(t, &stubVerifier{err: domain.ErrTokenExpired})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeErrorCode(t, rr.Body.Bytes()))
}

func TestAuth_InvalidToken(t *testing.T) {
	h, _ := protected(t, &stubVerifier{err: domain.ErrTokenInvalid})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "TOKEN_INVALID", decodeErrorCode(t, rr.Body.Bytes()))
}
