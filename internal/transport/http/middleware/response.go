package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-otp-auth/internal/domain"
)

// writeDomainError writes the standard error envelope for a typed domain
// error. Mirrors the handler package's translator for the few failures that
// surface before a handler runs.
func writeDomainError(w http.ResponseWriter, r *http.Request, derr *domain.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(derr.Status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    derr.Code,
			"message": derr.Message,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      r.URL.Path,
		"method":    r.Method,
	})
}
