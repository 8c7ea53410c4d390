package routes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/httpx"
	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/model"
	"github.com/mbolis/survey-publisher/publish"
	"github.com/mbolis/survey-publisher/remote"
)

type publishResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	State       string               `json:"state"`
	Fallback    bool                 `json:"fallback"`
	PublicURL   string               `json:"publicUrl,omitempty"`
	Record      *model.PublishRecord `json:"record,omitempty"`
	Warning     string               `json:"warning,omitempty"`
	EmailSent   int                  `json:"emailSent"`
	EmailFailed int                  `json:"emailFailed"`
	Redirect    string               `json:"redirect"`
}

func PublishSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft := model.SurveyDraft{}
		err := render.DecodeJSON(r.Body, &draft)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = draft.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		// a client hanging up must not leave the handoff slots half written
		ctx := context.WithoutCancel(r.Context())
		out, err := app.Publisher.Publish(ctx, draft)
		switch {
		case errors.Is(err, publish.ErrPublishInProgress):
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "publish.in_progress")
			return
		case err != nil:
			httpx.LogInternalError(w, "publish", err)
			return
		}

		res := publishResponse{
			ID:          out.Artifact.ID,
			Title:       out.Artifact.Title,
			State:       out.State.String(),
			Fallback:    out.Fallback(),
			PublicURL:   out.Artifact.PublicURL,
			Record:      out.Record,
			EmailSent:   out.EmailSent,
			EmailFailed: out.EmailFailed,
			Redirect:    out.Redirect,
		}
		if out.Warning != nil {
			res.Warning = out.Warning.Error()
			log.Warnf("publish.fallback %s: %s", out.Artifact.ID, out.Warning)
		}
		log.WithFields(log.Fields{"survey": out.Artifact.ID, "state": out.State}).Info("publish.done")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, res)
	}
}

type lastSurvey struct {
	Title     string             `json:"title"`
	FileName  string             `json:"fileName"`
	Audience  int                `json:"audience"`
	SurveyURL string             `json:"surveyUrl"`
	// Fallback is true when the document was generated locally.
	Fallback  bool               `json:"fallback"`
	HTML      string             `json:"html"`
	Survey    *model.StoredDraft `json:"survey,omitempty"`
}

func loadLastSurvey(ctx context.Context, app app.App) (last lastSurvey, err error) {
	h := app.Handoff
	if last.HTML, err = h.LastSurveyHTML(ctx); err != nil {
		return
	}
	if last.Title, err = h.LastSurveyTitle(ctx); err != nil {
		return
	}
	if last.Title == "" {
		last.Title = "survey"
	}
	last.FileName = last.Title + ".html"
	if last.Audience, err = h.LastSurveyAudience(ctx); err != nil {
		return
	}
	if last.SurveyURL, err = h.SurveyURL(ctx); err != nil {
		return
	}
	last.Fallback = last.HTML != "" && last.SurveyURL == ""
	data, ok, err := h.LastSurveyData(ctx)
	if ok {
		last.Survey = &data
	}
	return last, err
}

func GetLastSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, err := loadLastSurvey(r.Context(), app)
		if err != nil {
			httpx.LogInternalError(w, "handoff.last_survey", err)
			return
		}
		if last.HTML == "" {
			httpx.LogNotFound(w, "last_survey", "-")
			return
		}
		renderData(w, r, last)
	}
}

func DownloadLastSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, err := loadLastSurvey(r.Context(), app)
		if err != nil {
			httpx.LogInternalError(w, "handoff.last_survey", err)
			return
		}
		if last.HTML == "" {
			httpx.LogNotFound(w, "last_survey", "-")
			return
		}
		httpx.Attachment(w, last.FileName, "text/html", []byte(last.HTML))
	}
}

// PreviewLastSurvey serves the last published document as a page.
func PreviewLastSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html, err := app.Handoff.LastSurveyHTML(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "handoff.last_survey_html", err)
			return
		}
		if html == "" {
			httpx.LogNotFound(w, "last_survey", "-")
			return
		}
		httpx.HTML(w, http.StatusOK, html)
	}
}

func ListSentSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := app.Handoff.SentSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "handoff.sent_surveys", err)
			return
		}
		renderData(w, r, records)
	}
}

// ListSurveys asks the backend first and falls back to the surveys that were
// only published locally.
func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := remote.ListParams{
			Page:     atoiOr(q.Get("page"), 0),
			Limit:    atoiOr(q.Get("limit"), 0),
			Search:   q.Get("search"),
			Status:   q.Get("status"),
			Category: q.Get("category"),
		}

		records, err := app.Handoff.SentSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "handoff.sent_surveys", err)
			return
		}

		res := remote.WithFallback(r.Context(), func(ctx context.Context) remote.Result[remote.Page[remote.SurveySummary]] {
			return app.Remote.ListSurveys(ctx, params)
		}, localSurveys(records, params))
		renderFallback(w, r, res)
	}
}

func localSurveys(records []model.PublishRecord, p remote.ListParams) remote.Page[remote.SurveySummary] {
	items := []remote.SurveySummary{}
	for _, rec := range records {
		if p.Status != "" && string(rec.Status) != p.Status {
			continue
		}
		if p.Category != "" && rec.Category != p.Category {
			continue
		}
		if p.Search != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(p.Search)) {
			continue
		}
		items = append(items, remote.SurveySummary{
			ID:             rec.ID,
			Title:          rec.Title,
			Category:       rec.Category,
			Status:         rec.Status,
			Responses:      rec.Responses,
			Target:         rec.Target,
			CompletionRate: rec.CompletionRate,
			CreatedAt:      rec.CreatedAt,
			UpdatedAt:      rec.CreatedAt,
		})
	}
	return remote.Page[remote.SurveySummary]{
		Items:      items,
		Pagination: remote.Pagination{Page: 1, Limit: len(items), Total: len(items), TotalPages: 1},
	}
}
