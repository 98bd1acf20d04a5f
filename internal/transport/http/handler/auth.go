package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-otp-auth/internal/application/otp"
	"github.com/go-otp-auth/internal/application/token"
	"github.com/go-otp-auth/internal/application/user"
	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/validate"
	"github.com/go-otp-auth/internal/transport/http/middleware"
)

// Auth method header values. The choice is request-scoped: read from the
// header on every call, never cached server-side.
const (
	authMethodHeader = "X-Auth-Method"
	methodBearer     = "bearer"
	methodCookie     = "cookie"

	refreshCookieName = "refreshToken"
)

type requestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthHandler exposes the passwordless authentication endpoints. It is a thin
// adapter: every state rule lives in the services it composes.
type AuthHandler struct {
	otpSvc   otp.Service
	userSvc  user.Service
	tokenSvc token.Service

	otpDigits     int
	accessMaxAge  int
	refreshMaxAge int
	secureCookies bool
	production    bool
}

// AuthHandlerOptions carries the wire-level tunables.
type AuthHandlerOptions struct {
	OTPDigits     int
	AccessMaxAge  int
	RefreshMaxAge int
	SecureCookies bool
	Production    bool
}

func NewAuthHandler(otpSvc otp.Service, userSvc user.Service, tokenSvc token.Service, opts AuthHandlerOptions) *AuthHandler {
	return &AuthHandler{
		otpSvc:        otpSvc,
		userSvc:       userSvc,
		tokenSvc:      tokenSvc,
		otpDigits:     opts.OTPDigits,
		accessMaxAge:  opts.AccessMaxAge,
		refreshMaxAge: opts.RefreshMaxAge,
		secureCookies: opts.SecureCookies,
		production:    opts.Production,
	}
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.validationError(w, r, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.validationError(w, r, err.Error())
		return
	}
	if err := h.otpSvc.Request(r.Context(), req.Email); err != nil {
		h.httpError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "verification code sent", map[string]string{"email": req.Email})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.validationError(w, r, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.validationError(w, r, err.Error())
		return
	}
	if !isNumericCode(req.Code, h.otpDigits) {
		h.validationError(w, r, fmt.Sprintf("code must be exactly %d digits", h.otpDigits))
		return
	}

	if err := h.otpSvc.Verify(r.Context(), req.Email, req.Code); err != nil {
		h.httpError(w, r, err)
		return
	}
	u, err := h.userSvc.UpsertOnLogin(r.Context(), req.Email)
	if err != nil {
		h.httpError(w, r, err)
		return
	}
	pair, err := h.tokenSvc.Issue(r.Context(), u.UserID)
	if err != nil {
		h.httpError(w, r, err)
		return
	}

	data := map[string]interface{}{"user": u}
	if authMethod(r) == methodBearer {
		data["tokens"] = pair
	} else {
		h.setTokenCookies(w, pair)
	}
	writeSuccess(w, http.StatusOK, "authentication successful", data)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshTokenFromRequest(r)
	if raw == "" {
		h.httpError(w, r, domain.ErrTokenRequired)
		return
	}
	pair, err := h.tokenSvc.Refresh(r.Context(), raw)
	if err != nil {
		h.httpError(w, r, err)
		return
	}
	if authMethod(r) == methodBearer {
		writeSuccess(w, http.StatusOK, "tokens refreshed", map[string]interface{}{"tokens": pair})
		return
	}
	h.setTokenCookies(w, pair)
	writeSuccess(w, http.StatusOK, "tokens refreshed", nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Logout never fails: an absent or already-dead token still logs out.
	if raw := h.refreshTokenFromRequest(r); raw != "" {
		if err := h.tokenSvc.Revoke(r.Context(), raw); err != nil {
			h.httpError(w, r, err)
			return
		}
	}
	if authMethod(r) == methodCookie {
		h.clearTokenCookies(w)
	}
	writeSuccess(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.httpError(w, r, domain.ErrUnauthorized)
		return
	}
	u, err := h.userSvc.Get(r.Context(), userID)
	if err != nil {
		h.httpError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"user": u})
}

func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) string {
	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if c, err := r.Cookie(refreshCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   h.accessMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   h.refreshMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func authMethod(r *http.Request) string {
	if strings.EqualFold(r.Header.Get(authMethodHeader), methodBearer) {
		return methodBearer
	}
	return methodCookie
}

func isNumericCode(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
