package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/services"
)

type markOutboxRequest struct {
	Status models.OutboxStatus `json:"status" validate:"required,oneof=sent error"`
	Error  *string             `json:"error"`
}

func (s *Server) handleGetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	settings, err := s.NotificationService.GetSettings(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

func (s *Server) handleUpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var update models.NotificationSettingsUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	profile := profileFromContext(r.Context())
	settings, err := s.NotificationService.UpdateSettings(r.Context(), profile.ID, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

func (s *Server) handlePendingOutbox(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.NotificationService.PendingOutbox(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.OutboxEntry{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleMarkOutbox(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req markOutboxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := services.ValidateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.NotificationService.MarkOutbox(r.Context(), id, req.Status, req.Error, s.now()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
