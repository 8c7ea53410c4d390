package routes

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/httpx"
	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/model"
)

type publicSurvey struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Questions   []model.Question   `json:"questions"`
	Status      model.SurveyStatus `json:"status"`
	Submitted   bool               `json:"submitted"`
}

// findLocalSurvey looks the id up among the surveys published locally:
// the archived draft and its sentSurveys record.
func findLocalSurvey(ctx context.Context, app app.App, surveyId string) (*model.StoredDraft, *model.PublishRecord, error) {
	data, ok, err := app.GetSurvey(ctx, surveyId)
	if err != nil || !ok {
		return nil, nil, err
	}

	records, err := app.Handoff.SentSurveys(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range records {
		if records[i].ID == surveyId {
			return &data, &records[i], nil
		}
	}
	return &data, nil, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func PublicGetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		draft, record, err := findLocalSurvey(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if draft == nil {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}

		survey := publicSurvey{
			ID:          surveyId,
			Title:       draft.EffectiveTitle(),
			Description: draft.Description,
			Category:    draft.Category,
			Status:      model.StatusActive,
		}
		if record != nil {
			survey.Status = record.Status
		}

		survey.Submitted, err = app.HasSubmitted(r.Context(), surveyId, clientIP(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_ip", err)
			return
		}
		if !survey.Submitted {
			for _, q := range draft.Questions {
				survey.Questions = append(survey.Questions, model.NormalizeQuestion(q))
			}
		}
		renderData(w, r, survey)
	}
}

func PublicThankYou(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		draft, record, err := findLocalSurvey(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		if draft == nil {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		title, category := draft.EffectiveTitle(), draft.Category
		if record != nil {
			title, category = record.Title, record.Category
		}
		renderData(w, r, map[string]string{
			"title":    title,
			"category": category,
			"message":  "Thank you for completing the " + title + "!",
		})
	}
}

type submitRequest struct {
	Answers        []model.SubmittedAnswer `json:"answers"`
	CompletionTime int                     `json:"completionTime"`
}

// submitGuard refuses a second submission from the same address while the
// first is still being stored.
type submitGuard struct {
	mu      sync.Mutex
	pending map[string]bool
}

func (g *submitGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending[key] {
		return false
	}
	g.pending[key] = true
	return true
}

func (g *submitGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, key)
}

func missingRequired(questions []model.Question, answers []model.SubmittedAnswer) string {
	given := make(map[string]bool, len(answers))
	for _, a := range answers {
		switch v := a.Answer.(type) {
		case nil:
		case string:
			given[a.QuestionID] = v != ""
		case []any:
			given[a.QuestionID] = len(v) > 0
		default:
			given[a.QuestionID] = true
		}
	}
	for _, q := range questions {
		if q.Required && !given[q.ID] {
			return q.ID
		}
	}
	return ""
}

// PublicSubmitSurvey is the endpoint generated survey documents post their
// answers to. Each address answers a survey once.
func PublicSubmitSurvey(app app.App) http.HandlerFunc {
	guard := &submitGuard{pending: make(map[string]bool)}

	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		submission := submitRequest{}
		err := render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		draft, _, err := findLocalSurvey(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if draft == nil {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if id := missingRequired(draft.Questions, submission.Answers); id != "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "question %s is required", id)
			return
		}

		ip := clientIP(r)
		key := surveyId + "|" + ip
		if !guard.acquire(key) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "ip.already_submitted")
			return
		}
		defer guard.release(key)

		alreadySubmitted, err := app.HasSubmitted(r.Context(), surveyId, ip)
		if err != nil {
			httpx.LogInternalError(w, "db.get_ip", err)
			return
		}
		if alreadySubmitted {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "ip.already_submitted")
			return
		}

		now := time.Now().UTC()
		submissionId, err := app.InsertSubmission(r.Context(), model.Submission{
			SurveyID:       surveyId,
			Time:           now,
			IP:             ip,
			CompletionTime: submission.CompletionTime,
			Answers:        submission.Answers,
		})
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		// the answers are stored; a stale counter is only logged
		known, err := app.Handoff.RecordResponse(r.Context(), surveyId)
		if err != nil {
			log.Errorf("handoff.record_response %s: %s", surveyId, err)
		} else if !known {
			log.Debugf("handoff.record_response %s: no sentSurveys record", surveyId)
		}

		render.Status(r, http.StatusCreated)
		renderData(w, r, map[string]any{
			"id":          submissionId,
			"message":     "Thank you for your response!",
			"submittedAt": now.Format(time.RFC3339),
		})
	}
}
