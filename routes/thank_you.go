package routes

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/httpx"
)

//go:embed thank_you.html.tmpl
var thankYouTemplate string

var thankYouPage = template.Must(template.New("thank-you").Parse(thankYouTemplate))

type thankYou struct {
	Found     bool
	Title     string
	Audience  int
	SurveyURL string
	FileName  string
}

// ThankYou is the confirmation page a publish redirects to.
func ThankYou(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, err := loadLastSurvey(r.Context(), app)
		if err != nil {
			httpx.LogInternalError(w, "handoff.last_survey", err)
			return
		}

		page := thankYou{
			Found:     last.HTML != "",
			Title:     last.Title,
			Audience:  last.Audience,
			SurveyURL: last.SurveyURL,
			FileName:  last.FileName,
		}
		if last.Survey != nil {
			page.Title = last.Survey.EffectiveTitle()
		}

		var buf bytes.Buffer
		err = thankYouPage.Execute(&buf, page)
		if err != nil {
			httpx.LogInternalError(w, "thank_you.render", err)
			return
		}
		httpx.HTML(w, http.StatusOK, buf.String())
	}
}
