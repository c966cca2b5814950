package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/models"
)

func (s *Server) handleMergeWords(w http.ResponseWriter, r *http.Request) {
	var req models.MergeWordsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	result, err := s.ContentService.MergeWords(r.Context(), req, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleRenameWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req models.RenameWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	result, err := s.ContentService.RenameWord(r.Context(), id, req, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.ContentService.AuditLog(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}
