// Package surveyhtml renders a survey into a standalone, interactive HTML
// document: one question per page, progress tracking, required-answer
// gating, keyboard navigation and a submit action, all inline.
//
// Rendering is deterministic. The generator never assigns ids or reads the
// clock; identical input yields byte-identical output.
package surveyhtml

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/mbolis/survey-publisher/model"
)

const DefaultRatingScale = 5

// SubmitPath is where a published document posts its answers, relative to
// the submission base URL.
const SubmitPath = "/api/public/survey/%s/submit"

//go:embed survey.html.tmpl
var surveyTemplate string

var tmpl = template.Must(template.New("survey").Parse(surveyTemplate))

type Spec struct {
	ID          string
	Title       string
	Description string
	Questions   []model.Question
}

type Options struct {
	// SubmitBaseURL prefixes SubmitPath. Empty means same-origin.
	SubmitBaseURL string
	// RatingScale is the number of points of every rating question.
	RatingScale int
}

type Generator struct {
	submitBase string
	scale      int
}

func New(opts Options) *Generator {
	scale := opts.RatingScale
	if scale < 2 {
		scale = DefaultRatingScale
	}
	return &Generator{
		submitBase: strings.TrimRight(opts.SubmitBaseURL, "/"),
		scale:      scale,
	}
}

// Generate renders spec. The error is only ever a template execution
// failure; no input makes it fail.
func (g *Generator) Generate(spec Spec) (string, error) {
	doc := g.document(spec)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SubmitURL is empty for documents without an id, which acknowledge
// answers locally instead of posting them.
func (g *Generator) SubmitURL(id string) string {
	if id == "" {
		return ""
	}
	return g.submitBase + strings.Replace(SubmitPath, "%s", url.PathEscape(id), 1)
}

type document struct {
	ID            string
	Title         string
	Description   string
	Total         int
	FirstProgress string
	SinglePage    bool
	Pages         []page
	Script        script
}

type page struct {
	Index    int
	Number   int
	Type     string
	Text     string
	Required bool
	Hidden   bool
	Controls []control
}

type control struct {
	InputType string
	InputID   string
	Name      string
	Value     string
	Label     string
}

// script is the data the inline JS needs; html/template serialises it as
// a JS object literal.
type script struct {
	ID        string         `json:"id"`
	SubmitURL string         `json:"submitUrl"`
	Total     int            `json:"total"`
	Questions []scriptAnswer `json:"questions"`
}

type scriptAnswer struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

func (g *Generator) document(spec Spec) document {
	total := len(spec.Questions)
	doc := document{
		ID:          spec.ID,
		Title:       spec.Title,
		Description: spec.Description,
		Total:       total,
		SinglePage:  total <= 1,
		Pages:       make([]page, 0, total),
		Script: script{
			ID:        spec.ID,
			SubmitURL: g.SubmitURL(spec.ID),
			Total:     total,
			Questions: make([]scriptAnswer, 0, total),
		},
	}
	if total == 0 {
		doc.FirstProgress = "Ready to submit"
	} else {
		doc.FirstProgress = "1 of " + strconv.Itoa(total)
	}

	for i, q := range spec.Questions {
		q = model.NormalizeQuestion(q)
		p := page{
			Index:    i,
			Number:   i + 1,
			Type:     string(q.Type),
			Text:     q.Text,
			Required: q.Required,
			Hidden:   i > 0,
			Controls: g.controls(i, q),
		}
		doc.Pages = append(doc.Pages, p)
		doc.Script.Questions = append(doc.Script.Questions, scriptAnswer{
			ID:       q.ID,
			Question: q.Text,
			Type:     string(q.Type),
			Required: q.Required,
		})
	}
	return doc
}

func (g *Generator) controls(index int, q model.Question) []control {
	name := "q" + strconv.Itoa(index)
	switch q.Type {
	case model.SingleChoice, model.Checkbox:
		inputType := "radio"
		if q.Type == model.Checkbox {
			inputType = "checkbox"
		}
		cs := make([]control, len(q.Options))
		for i, opt := range q.Options {
			cs[i] = control{
				InputType: inputType,
				InputID:   name + "-" + strconv.Itoa(i),
				Name:      name,
				Value:     opt,
				Label:     opt,
			}
		}
		return cs
	case model.Rating:
		// options only label the points when there is one per point
		labels := q.Options
		if len(labels) != g.scale {
			labels = nil
		}
		cs := make([]control, g.scale)
		for i := range cs {
			value := strconv.Itoa(i + 1)
			label := value
			if labels != nil {
				label = labels[i]
			}
			cs[i] = control{
				InputType: "radio",
				InputID:   name + "-" + value,
				Name:      name,
				Value:     value,
				Label:     label,
			}
		}
		return cs
	}
	return nil
}

// FileName is the name a generated survey is downloaded under.
func FileName(category string) string {
	return model.FileName(category)
}
