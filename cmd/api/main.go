package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-otp-auth/internal/application/otp"
	"github.com/go-otp-auth/internal/application/token"
	"github.com/go-otp-auth/internal/application/user"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/infrastructure/mail"
	"github.com/go-otp-auth/internal/infrastructure/memory"
	redisinfra "github.com/go-otp-auth/internal/infrastructure/redis"
	transporthttp "github.com/go-otp-auth/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider", "err", err)
		os.Exit(1)
	}

	otpRepo, refreshRepo, userRepo := buildRepos(cfg)
	mailer := buildMailer(cfg)

	otpSvc := otp.NewService(otpRepo, mailer, otp.Options{
		Digits:      cfg.OTPDigits,
		TTL:         cfg.OTPTTL,
		Cooldown:    cfg.OTPCooldown,
		MaxAttempts: cfg.OTPMaxAttempts,
	})
	tokenSvc := token.NewService(refreshRepo, jwtProvider, cfg.RefreshTokenTTL)
	userSvc := user.NewService(userRepo)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		OTPService:   otpSvc,
		UserService:  userSvc,
		TokenService: tokenSvc,
	})

	// Expired-record sweep; the service only exposes the operation, the
	// schedule is owned here.
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	go runCleanup(cleanupCtx, otpSvc, cfg.OTPCleanupInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopCleanup()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildRepos(cfg *config.Config) (otp.Repository, token.Repository, user.Repository) {
	switch cfg.StoreBackend {
	case "dynamo":
		client := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), client, cfg.DynamoTables)
		return dynamo.NewOtpRepo(client, cfg.DynamoTables.Otps),
			dynamo.NewRefreshTokenRepo(client, cfg.DynamoTables.RefreshTokens),
			dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
	case "redis":
		rdb := redisinfra.NewClient(cfg)
		return redisinfra.NewOtpRepo(rdb),
			redisinfra.NewRefreshTokenRepo(rdb),
			redisinfra.NewUserRepo(rdb)
	default:
		return memory.NewOtpRepo(), memory.NewRefreshTokenRepo(), memory.NewUserRepo()
	}
}

func buildMailer(cfg *config.Config) mail.Dispatcher {
	if cfg.EmailProvider == "smtp" {
		d, err := mail.NewSMTPDispatcher(cfg)
		if err != nil {
			slog.Error("smtp dispatcher", "err", err)
			os.Exit(1)
		}
		return d
	}
	return mail.NewMockDispatcher()
}

func runCleanup(ctx context.Context, svc otp.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.CleanupExpired(ctx)
			if err != nil {
				slog.Warn("otp cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("otp cleanup", "removed", n)
			}
		}
	}
}

// setupLogger configures the global slog logger.
func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}
