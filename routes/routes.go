package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.RealIP, middlewares.RequestLog, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.Get("/thank-you", ThankYou(app))
	root.Get("/survey/preview", PreviewLastSurvey(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Route("/public/survey/{id}", func(r chi.Router) {
		r.Use(middlewares.PublicCORS)

		r.Get("/", PublicGetSurveyById(app))
		r.Get("/thank-you", PublicThankYou(app))
		r.Post("/submit", PublicSubmitSurvey(app))
	})

	api.Group(func(r chi.Router) {
		r.Use(middlewares.BearerToken(app.Handoff))

		// wizard
		r.Get("/categories", GetCategories(app))
		r.Get("/questions/config", GetQuestionConfig(app))
		r.Post("/questions/generate", GenerateQuestions(app))
		r.Get("/audience/stats", GetAudienceStats(app))
		r.Post("/audience/estimate", EstimateAudience(app))
		r.Post("/preview", PreviewSurvey(app))
		r.Post("/preview/download", DownloadPreview(app))

		// publish and confirmation
		r.Post("/publish", PublishSurvey(app))
		r.Get("/last-survey", GetLastSurvey(app))
		r.Get("/last-survey/download", DownloadLastSurvey(app))
		r.Get("/sent-surveys", ListSentSurveys(app))

		r.Get("/surveys", ListSurveys(app))
		r.Get("/surveys/{id}/results", GetSurveyResults(app))
		r.Get("/surveys/{id}/export", ExportSurvey(app))
		r.Get("/surveys/{id}/submissions", GetSurveySubmissions(app))
	})

	return api
}
