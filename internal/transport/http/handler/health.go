package handler

import (
	"net/http"
	"time"
)

// HealthHandler handles the liveness probe.
type HealthHandler struct {
	environment string
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment}
}

func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "", map[string]string{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}
