package routes

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/httpx"
	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/model"
	"github.com/mbolis/survey-publisher/remote"
	"github.com/mbolis/survey-publisher/surveyhtml"
)

func GetCategories(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := remote.WithFallback(r.Context(), app.Remote.Categories, remote.DemoCategories())
		renderFallback(w, r, res)
	}
}

func GetQuestionConfig(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := remote.WithFallback(r.Context(), app.Remote.QuestionConfig, remote.DemoQuestionConfig())
		renderFallback(w, r, res)
	}
}

func GenerateQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := remote.GenerateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if strings.TrimSpace(req.Category) == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "category is required")
			return
		}

		res := remote.WithFallback(r.Context(), func(ctx context.Context) remote.Result[remote.GeneratedQuestions] {
			return app.Remote.GenerateQuestions(ctx, req)
		}, remote.DemoGeneratedQuestions(req))
		renderFallback(w, r, res)
	}
}

func GetAudienceStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := remote.WithFallback(r.Context(), app.Remote.AudienceStats, remote.DemoAudienceStats())
		renderFallback(w, r, res)
	}
}

type estimateResponse struct {
	Reach        int           `json:"reach"`
	TargetCount  int           `json:"targetCount"`
	ExceedsReach bool          `json:"exceedsReach"`
	Warning      *remote.Error `json:"warning,omitempty"`
}

// EstimateAudience reports how many people the filters reach. A target above
// the reach is flagged, not refused.
func EstimateAudience(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := model.AudienceSpec{}
		err := render.DecodeJSON(r.Body, &spec)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = spec.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		stats := remote.WithFallback(r.Context(), app.Remote.AudienceStats, remote.DemoAudienceStats())
		reach := model.EstimatedReach(stats.Data, spec)
		render.JSON(w, r, estimateResponse{
			Reach:        reach,
			TargetCount:  spec.TargetCount,
			ExceedsReach: spec.ExceedsReach(reach),
			Warning:      stats.Fallback,
		})
	}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (model.SurveyDraft, bool) {
	draft := model.SurveyDraft{}
	err := render.Decode(r, &draft)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return draft, false
	}
	return draft, true
}

func renderPreview(app app.App, draft model.SurveyDraft) (string, error) {
	return app.Generator.Generate(surveyhtml.Spec{
		Title:       draft.EffectiveTitle(),
		Description: draft.Description,
		Questions:   draft.Questions,
	})
}

// PreviewSurvey renders the draft without an id, so its submit button only
// acknowledges locally.
func PreviewSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, ok := decodeDraft(w, r)
		if !ok {
			return
		}
		html, err := renderPreview(app, draft)
		if err != nil {
			httpx.LogInternalError(w, "preview.generate", err)
			return
		}
		httpx.HTML(w, http.StatusOK, html)
	}
}

func DownloadPreview(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, ok := decodeDraft(w, r)
		if !ok {
			return
		}
		html, err := renderPreview(app, draft)
		if err != nil {
			httpx.LogInternalError(w, "preview.generate", err)
			return
		}
		httpx.Attachment(w, surveyhtml.FileName(draft.Category), "text/html", []byte(html))
	}
}
