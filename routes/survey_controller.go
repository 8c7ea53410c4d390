package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/httpx"
	"github.com/mbolis/survey-publisher/remote"
)

var exportExtensions = map[remote.ExportFormat]string{
	remote.ExportCSV:   "csv",
	remote.ExportExcel: "xlsx",
	remote.ExportPDF:   "pdf",
	remote.ExportJSON:  "json",
}

func GetSurveyResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		res := app.Remote.Results(r.Context(), surveyId)
		if !res.OK {
			httpx.LogRemoteError(w, r, "remote.results", res.Err)
			return
		}
		renderData(w, r, res.Data)
	}
}

func ExportSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")
		format := remote.ExportFormat(r.URL.Query().Get("format"))
		if format == "" {
			format = remote.ExportCSV
		}

		res := app.Remote.Export(r.Context(), surveyId, format)
		if !res.OK {
			httpx.LogRemoteError(w, r, "remote.export", res.Err)
			return
		}
		name := surveyId + "_results." + exportExtensions[format]
		httpx.Attachment(w, name, res.Data.ContentType, res.Data.Data)
	}
}

// GetSurveySubmissions lists the answers received by the local submission
// receiver.
func GetSurveySubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		submissions, err := app.ListSubmissions(r.Context(), surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.list_submissions", err)
			return
		}
		renderData(w, r, map[string]any{
			"surveyId":    surveyId,
			"count":       len(submissions),
			"submissions": submissions,
		})
	}
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
