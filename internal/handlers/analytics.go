package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nadiaharb/apply-wise/internal/cache"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/store"
)

// Analytics groups the dashboard chart endpoints.
type Analytics struct {
	jobs  *store.JobStore
	stats *cache.StatsCache // may be nil
}

// NewAnalytics creates a new Analytics handler group. stats may be nil to
// run without aggregate caching.
func NewAnalytics(jobs *store.JobStore, stats *cache.StatsCache) *Analytics {
	return &Analytics{jobs: jobs, stats: stats}
}

// Monthly handles GET /api/analytics/monthly: the application funnel
// grouped per month, oldest first.
func (h *Analytics) Monthly(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	if h.stats != nil {
		if payload, ok := h.stats.Get(r.Context(), userID, "monthly"); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	points, err := h.jobs.MonthlyFunnel(userID)
	if err != nil {
		slog.Error("monthly funnel failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if points == nil {
		points = []store.MonthlyPoint{}
	}

	payload, err := json.Marshal(map[string]any{"data": points})
	if err != nil {
		slog.Error("marshal funnel failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if h.stats != nil {
		h.stats.Set(r.Context(), userID, "monthly", payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
