package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-auth/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Method"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.TokenService)
	globalRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	healthH := handler.NewHealthHandler(cfg.AppEnv)
	authH := handler.NewAuthHandler(deps.OTPService, deps.UserService, deps.TokenService, handler.AuthHandlerOptions{
		OTPDigits:     cfg.OTPDigits,
		AccessMaxAge:  int(cfg.AccessTokenTTL.Seconds()),
		RefreshMaxAge: int(cfg.RefreshTokenTTL.Seconds()),
		SecureCookies: cfg.IsProduction(),
		Production:    cfg.IsProduction(),
	})

	r.Get("/health", healthH.Check)

	r.Route("/auth", func(r chi.Router) {
		r.Use(globalRL.Limit)

		r.Post("/request-otp", authH.RequestOTP)
		r.Post("/verify-otp", authH.VerifyOTP)
		r.Post("/refresh", authH.Refresh)
		r.Post("/logout", authH.Logout)

		r.With(authMw).Get("/me", authH.Me)
	})

	return r
}
