package rest

import (
	"net/http"
)

// getStats returns detection counters since startup
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
