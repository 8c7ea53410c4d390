package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-publisher/model"
)

const healthcareDraft = `{
	"category": "Healthcare",
	"prompt": "patient satisfaction",
	"questions": [
		{"id": "q1", "type": "rating", "text": "Rate your visit", "options": ["1","2","3","4","5"], "required": true}
	],
	"audience": {"targetCount": 250}
}`

func writeDraft(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDraftAcceptsShortForm(t *testing.T) {
	draft, err := readDraft(writeDraft(t, healthcareDraft))
	require.NoError(t, err)

	assert.Equal(t, "Healthcare", draft.Category)
	assert.Equal(t, "patient satisfaction", draft.Description)
	require.Len(t, draft.Questions, 1)
	assert.Equal(t, "Rate your visit", draft.Questions[0].Text)
	assert.Equal(t, model.Rating, draft.Questions[0].Type)
	assert.Equal(t, 250, draft.Audience.TargetCount)
}

func TestReadDraftRejectsInvalid(t *testing.T) {
	_, err := readDraft(writeDraft(t, `{"category":"X","questions":[{"id":"","type":"text","question":"?"}]}`))
	assert.Error(t, err)

	_, err = readDraft(writeDraft(t, `{`))
	assert.Error(t, err)
}

func TestRenderCommandWritesNamedFile(t *testing.T) {
	out := t.TempDir()
	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{
		"render",
		"--config", filepath.Join(out, "missing.yaml"),
		"-f", writeDraft(t, healthcareDraft),
		"-o", out,
	})

	require.NoError(t, root.Execute())

	path := filepath.Join(out, "healthcare_survey.html")
	assert.Equal(t, path, strings.TrimSpace(stdout.String()))
	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Rate your visit")
	assert.Contains(t, string(html), "1 of 1")
	assert.Equal(t, 5, strings.Count(string(html), `<input type="radio"`))
}

func TestPublishCommandFallsBackWithoutBackend(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{
		"publish",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db-url", filepath.Join(dir, "qsurvey.sqlite"),
		"-f", writeDraft(t, healthcareDraft),
	})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "state:  published_local_fallback")
	assert.Contains(t, stdout.String(), "id:     survey-")

	root = newRootCmd()
	stdout.Reset()
	root.SetOut(&stdout)
	root.SetArgs([]string{
		"sent",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db-url", filepath.Join(dir, "qsurvey.sqlite"),
	})
	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "Healthcare Survey")
	assert.Contains(t, stdout.String(), "0/250")
}

func TestPrintSent(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	printSent(&out, []model.PublishRecord{{
		ID:             "survey-1",
		Title:          "Retail Survey",
		Status:         model.StatusActive,
		Responses:      1200,
		Target:         5000,
		CompletionRate: 24,
		CreatedAt:      "2024-03-01",
	}}, now)

	s := out.String()
	assert.Contains(t, s, "1,200/5,000")
	assert.Contains(t, s, "24%")
	assert.Contains(t, s, "3 days ago")

	out.Reset()
	printSent(&out, nil, now)
	assert.Equal(t, "no surveys\n", out.String())
}
