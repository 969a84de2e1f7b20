package handlers

import (
	"net/http"
	"slices"
	"strconv"

	"projtrack/internal/models"
)

const defaultRecent = 5

// Stats returns the dashboard summary. ?recent= controls how many recently
// updated projects are included.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	recent := defaultRecent
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, "recent must be a non-negative integer")
			return
		}
		recent = n
	}

	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.Summarize(slices.Values(projects), recent))
}
