package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	if s.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(s.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Post("/profiles", s.handleCreateProfile)

	r.Group(func(r chi.Router) {
		r.Use(s.profileMiddleware)

		r.Get("/profile", s.handleGetProfile)
		r.Get("/profile/settings", s.handleGetProfileSettings)
		r.Put("/profile/settings", s.handleUpdateProfileSettings)
		r.Post("/profile/corpora", s.handleEnableCorpus)

		r.Route("/study", func(r chi.Router) {
			r.Post("/learn/start", s.handleStartLearn)
			r.Post("/learn/submit", s.handleSubmitLearn)
			r.Post("/review/start", s.handleStartReview)
			r.Post("/review/submit", s.handleSubmitReview)
			r.Post("/review/seed", s.handleSeedReview)
		})

		r.Get("/stats/dashboard", s.handleDashboard)
		r.Get("/stats/weak-words", s.handleWeakWords)

		r.Get("/notifications/settings", s.handleGetNotificationSettings)
		r.Put("/notifications/settings", s.handleUpdateNotificationSettings)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Use(s.adminMiddleware)
		r.Post("/", s.handleEnqueueJob)
		r.Get("/", s.handleListJobs)
		r.Get("/{id}", s.handleGetJob)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminMiddleware)
		r.Post("/words/merge", s.handleMergeWords)
		r.Patch("/words/{id}", s.handleRenameWord)
		r.Get("/audit", s.handleAuditLog)
		r.Get("/outbox", s.handlePendingOutbox)
		r.Post("/outbox/{id}", s.handleMarkOutbox)
	})

	return r
}
