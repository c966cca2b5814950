package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/models"
)

const defaultSeedLimit = 10

func (s *Server) handleStartLearn(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	profile := profileFromContext(r.Context())
	start, err := s.StudyService.StartLearn(r.Context(), profile.ID, limit, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, start)
}

func (s *Server) handleSubmitLearn(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	profile := profileFromContext(r.Context())
	result, err := s.StudyService.SubmitLearn(r.Context(), profile.ID, req, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleStartReview(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	profile := profileFromContext(r.Context())
	start, err := s.StudyService.StartReview(r.Context(), profile.ID, limit, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, start)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	profile := profileFromContext(r.Context())
	result, err := s.StudyService.SubmitReview(r.Context(), profile.ID, req, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleSeedReview(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if limit == 0 {
		limit = defaultSeedLimit
	}
	profile := profileFromContext(r.Context())
	seeded, err := s.StudyService.SeedReview(r.Context(), profile.ID, limit, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"seeded": seeded})
}
