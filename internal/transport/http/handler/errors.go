package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-otp-auth/internal/domain"
)

// httpError is the single translator from service errors to the wire
// envelope. Typed domain errors pass through with their code and status;
// anything else is an internal fault: logged with request context, answered
// as a generic 500. In non-production environments the underlying message is
// included to ease debugging.
func (h *AuthHandler) httpError(w http.ResponseWriter, r *http.Request, err error) {
	if derr, ok := domain.AsError(err); ok {
		if derr.Status >= http.StatusInternalServerError {
			slog.Error("domain error", "code", derr.Code, "path", r.URL.Path, "method", r.Method, "err", err)
		}
		writeErrorEnvelope(w, r, derr.Status, derr.Code, derr.Message, nil)
		return
	}

	slog.Error("unexpected error", "path", r.URL.Path, "method", r.Method, "err", err)
	msg := "internal server error"
	if !h.production {
		msg = err.Error()
	}
	writeErrorEnvelope(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", msg, nil)
}

func (h *AuthHandler) validationError(w http.ResponseWriter, r *http.Request, msg string) {
	writeErrorEnvelope(w, r, http.StatusBadRequest, "VALIDATION_ERROR", msg, nil)
}
