package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/services"
)

const defaultJobListLimit = 50

type enqueueJobRequest struct {
	JobType   models.JobType  `json:"job_type" validate:"required"`
	ProfileID *int64          `json:"profile_id" validate:"omitempty,gt=0"`
	Payload   json.RawMessage `json:"payload"`
	RunAfter  *time.Time      `json:"run_after"`
}

func (s *Server) handleEnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req enqueueJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := services.ValidateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	var payload any
	if len(req.Payload) > 0 && string(req.Payload) != "null" {
		payload = req.Payload
	}
	var runAfter time.Time
	if req.RunAfter != nil {
		runAfter = *req.RunAfter
	}

	job, err := s.JobQueue.Enqueue(r.Context(), req.JobType, req.ProfileID, payload, runAfter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if limit == 0 {
		limit = defaultJobListLimit
	}

	q := r.URL.Query()
	filter := models.JobFilter{
		Status: models.JobStatus(q.Get("status")),
		Type:   models.JobType(q.Get("job_type")),
		Limit:  limit,
	}
	if raw := q.Get("profile_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			handleError(w, r, errors.NewValidationError("profile_id", "must be a positive integer"))
			return
		}
		filter.ProfileID = id
	}

	list, err := s.JobQueue.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	job, err := s.JobQueue.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, job)
}
