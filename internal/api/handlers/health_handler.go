package handlers

import "net/http"

// HealthHandler answers liveness probes. Render and similar platforms
// ping the root path, so both / and /health return the same body.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health reports the process is alive.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		return
	}
}
