package routers

import (
	"mockinterview/ai/internal/handlers"
	"mockinterview/ai/internal/middleware"
	"mockinterview/ai/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.Use(middleware.RequireOwner)

		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/", interviewHandler.StartHandler)
		r.Get("/", interviewHandler.ListSessionsHandler)
		r.Get("/analytics", interviewHandler.AnalyticsHandler)
		r.Get("/{sessionId}", interviewHandler.GetSessionHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{sessionId}/answers", interviewHandler.SubmitAnswerHandler)
		r.Post("/{sessionId}/resume", interviewHandler.ResumeHandler)
	})
}
