package surveyhtml

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-publisher/model"
)

func healthcareSpec() Spec {
	return Spec{
		ID:          "survey-1",
		Title:       "Healthcare Survey",
		Description: "patient satisfaction",
		Questions: []model.Question{{
			ID:       "q1",
			Type:     model.Rating,
			Text:     "Rate your visit",
			Options:  []string{"1", "2", "3", "4", "5"},
			Required: true,
		}},
	}
}

func mixedSpec() Spec {
	return Spec{
		ID:    "s-42",
		Title: "Mixed",
		Questions: []model.Question{
			{ID: "a", Type: model.SingleChoice, Text: "Pick one", Options: []string{"Red", "Blue"}, Required: true},
			{ID: "b", Type: model.Checkbox, Text: "Pick many", Options: []string{"X", "Y", "Z"}},
			{ID: "c", Type: model.Text, Text: "Tell us more"},
			{ID: "d", Type: model.Rating, Text: "Rate us"},
		},
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := New(Options{SubmitBaseURL: "https://api.example.com"})

	first, err := g.Generate(mixedSpec())
	require.NoError(t, err)
	second, err := g.Generate(mixedSpec())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("generate not idempotent (-first +second):\n%s", diff)
	}
}

func TestGenerateHealthcareScenario(t *testing.T) {
	out, err := New(Options{}).Generate(healthcareSpec())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Equal(t, 1, strings.Count(out, `<section class="page" data-question`))
	assert.Equal(t, 5, strings.Count(out, `<input type="radio"`))
	for _, v := range []string{"1", "2", "3", "4", "5"} {
		assert.Contains(t, out, `id="q0-`+v+`" name="q0" value="`+v+`"`)
	}
	assert.Contains(t, out, `<span id="progress-text">1 of 1</span>`)
	assert.Contains(t, out, `data-required="true"`)
	// single page: submit visible, next hidden
	assert.Contains(t, out, `<button type="button" id="submit">Submit</button>`)
	assert.Contains(t, out, `<button type="button" id="next" hidden>Next</button>`)

	assert.Equal(t, "healthcare_survey.html", FileName("Healthcare"))
}

func TestGenerateEmptySurvey(t *testing.T) {
	out, err := New(Options{}).Generate(Spec{Title: "X"})
	require.NoError(t, err)

	assert.Equal(t, 0, strings.Count(out, `<section class="page" data-question`))
	assert.Contains(t, out, `<section class="page submit-page">`)
	assert.Contains(t, out, `<button type="button" id="submit">Submit</button>`)
	assert.Contains(t, out, `<span id="progress-text">Ready to submit</span>`)
	assert.Contains(t, out, "</html>")
}

func TestGenerateControlsPerType(t *testing.T) {
	out, err := New(Options{RatingScale: 7}).Generate(mixedSpec())
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(out, `<section class="page" data-question`))
	assert.Contains(t, out, `<input type="radio" id="q0-0" name="q0" value="Red">`)
	assert.Contains(t, out, `<input type="radio" id="q0-1" name="q0" value="Blue">`)
	assert.Equal(t, 3, strings.Count(out, `<input type="checkbox"`))
	assert.Contains(t, out, `<textarea id="q2-input" name="q2"`)
	// unlabelled rating uses the configured scale
	assert.Contains(t, out, `id="q3-7" name="q3" value="7"`)
	assert.NotContains(t, out, `id="q3-8"`)

	assert.Contains(t, out, `<span id="progress-text">1 of 4</span>`)
	assert.Contains(t, out, `<button type="button" id="submit" hidden>Submit</button>`)
	// only the first page starts visible
	assert.Equal(t, 3, strings.Count(out, `-label" hidden>`))
}

func TestArrowKeysSkipFormFields(t *testing.T) {
	out, err := New(Options{}).Generate(healthcareSpec())
	require.NoError(t, err)
	assert.Contains(t, out, `if (tag === "TEXTAREA" || tag === "INPUT") {`)
}

func TestRatingAlwaysUsesTheScale(t *testing.T) {
	spec := Spec{ID: "s1", Questions: []model.Question{
		{ID: "q1", Type: model.Rating, Text: "How was it?", Options: []string{"Poor", "Great"}},
	}}

	out, err := New(Options{}).Generate(spec)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, `<input type="radio"`))
	assert.Contains(t, out, `id="q0-5" name="q0" value="5"`)
	assert.NotContains(t, out, "Poor")

	spec.Questions[0].Options = []string{"Bad", "Meh", "Fine", "Good", "Great"}
	out, err = New(Options{}).Generate(spec)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, `<input type="radio"`))
	assert.Contains(t, out, `value="1"> <span>Bad</span>`)
	assert.Contains(t, out, `value="5"> <span>Great</span>`)
}

func TestGenerateEscapesUserContent(t *testing.T) {
	const evil = "<script>alert(1)</script>"
	spec := Spec{
		Title:       evil,
		Description: evil,
		Questions: []model.Question{
			{ID: "q1", Type: model.SingleChoice, Text: evil, Options: []string{evil, "ok"}},
			{ID: `"><img src=x onerror=alert(1)>`, Type: model.Text, Text: "plain"},
		},
	}

	out, err := New(Options{}).Generate(spec)
	require.NoError(t, err)

	assert.NotContains(t, out, evil)
	assert.NotContains(t, out, "<img src=x")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	// exactly one real script element: ours
	assert.Equal(t, 1, strings.Count(out, "<script>"))
}

func TestGenerateUnknownTypeDegradesToText(t *testing.T) {
	spec := Spec{Questions: []model.Question{
		{ID: "q1", Type: "matrix", Text: "Odd one", Options: []string{"a"}},
		{ID: "q2", Type: model.SingleChoice, Text: "No options"},
	}}

	out, err := New(Options{}).Generate(spec)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `data-type="text"`))
	assert.Contains(t, out, `<textarea id="q0-input"`)
	assert.Contains(t, out, `<textarea id="q1-input"`)
}

func TestSubmitURL(t *testing.T) {
	g := New(Options{SubmitBaseURL: "https://api.example.com/"})
	assert.Equal(t, "https://api.example.com/api/public/survey/abc%201/submit", g.SubmitURL("abc 1"))
	assert.Equal(t, "", g.SubmitURL(""))

	local := New(Options{})
	assert.Equal(t, "/api/public/survey/s1/submit", local.SubmitURL("s1"))
}

func TestPreviewWithoutIDDoesNotPost(t *testing.T) {
	spec := healthcareSpec()
	spec.ID = ""

	out, err := New(Options{SubmitBaseURL: "https://api.example.com"}).Generate(spec)
	require.NoError(t, err)

	assert.Contains(t, out, `"submitUrl":""`)
	assert.NotContains(t, out, "api.example.com")
}
