// fixit/handlers/stats.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AB-App-Dev/FixIt/stats"
)

// HandleStats serves the combined statistics, or a closures-only series when
// ?view= is given (view=all per year, anything else per month).
func HandleStats(w http.ResponseWriter, r *http.Request, app App) {
	view := r.URL.Query().Get("view")

	var (
		payload interface{}
		err     error
	)
	if view == "" {
		payload, err = app.Stats().Combined(r.Context())
	} else {
		payload, err = app.Stats().Filtered(r.Context(), stats.View(view))
	}
	if err != nil {
		app.Logger().Error("Failed to compute statistics", "handler", "HandleStats", "view", view, "error", err)
		respondError(w, http.StatusInternalServerError, msgStatsUnavailable, app)
		return
	}
	respondJSON(w, http.StatusOK, payload, app)
}

// HandleHealth reports whether the database is reachable.
func HandleHealth(w http.ResponseWriter, r *http.Request, app App) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := app.DB().Ping(ctx); err != nil {
		app.Logger().Error("Health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, app)
}
