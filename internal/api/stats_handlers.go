package api

import "net/http"

// handleDashboard serves the cached dashboard, falling back to a live one.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var (
		dashboard any
		err       error
	)
	if r.URL.Query().Get("live") == "true" {
		dashboard, err = s.StatsService.Dashboard(r.Context(), profile.ID, s.now())
	} else {
		dashboard, err = s.StatsService.CachedDashboard(r.Context(), profile.ID, s.now())
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dashboard)
}

func (s *Server) handleWeakWords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	profile := profileFromContext(r.Context())
	weak, err := s.StatsService.WeakWords(r.Context(), profile.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, weak)
}
