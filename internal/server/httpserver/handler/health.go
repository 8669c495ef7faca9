package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/projsnap/internal/infra/buildinfo"
)

// handleHealth reports liveness. It never touches the store.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": buildinfo.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady reports readiness along with the number of indexed snapshots.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ready",
		"snapshots": h.snapshotSvc.Count(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}
