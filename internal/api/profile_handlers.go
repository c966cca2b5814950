package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/services"
)

type createProfileRequest struct {
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	NativeLang string `json:"native_lang" validate:"required,max=16"`
	TargetLang string `json:"target_lang" validate:"required,max=16"`
}

type enableCorpusRequest struct {
	Slug            string `json:"slug" validate:"required"`
	TargetWordLimit int    `json:"target_word_limit" validate:"min=0"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := services.ValidateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.CreateProfile(r.Context(), req.UserID, req.NativeLang, req.TargetLang, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, profileFromContext(r.Context()))
}

func (s *Server) handleGetProfileSettings(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	settings, err := s.ProfileService.GetSettings(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

// handleUpdateProfileSettings applies the body on top of the stored settings,
// so omitted fields keep their values.
func (s *Server) handleUpdateProfileSettings(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	settings, err := s.ProfileService.GetSettings(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, settings); err != nil {
		handleError(w, r, err)
		return
	}
	settings.ProfileID = profile.ID

	updated, err := s.ProfileService.UpdateSettings(r.Context(), *settings)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleEnableCorpus(w http.ResponseWriter, r *http.Request) {
	var req enableCorpusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := services.ValidateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	profile := profileFromContext(r.Context())
	if err := s.ProfileService.EnableCorpus(r.Context(), profile.ID, req.Slug, req.TargetWordLimit); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
