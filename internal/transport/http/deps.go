package http

import (
	"github.com/go-otp-auth/internal/application/otp"
	"github.com/go-otp-auth/internal/application/token"
	"github.com/go-otp-auth/internal/application/user"
)

// Deps holds the constructed application services for the router. Services
// are built in main against whichever store backend is configured, so the
// router never touches infrastructure directly.
type Deps struct {
	OTPService   otp.Service
	UserService  user.Service
	TokenService token.Service
}
