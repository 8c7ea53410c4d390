package main

import (
	"os"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-publisher/model"
)

// draftFile is the on-disk draft. It also takes the shorter form used when
// sketching surveys by hand: "prompt" for the description and "text" for
// the question wording.
type draftFile struct {
	model.SurveyDraft
	Prompt    string          `json:"prompt"`
	Questions []draftQuestion `json:"questions"`
}

type draftQuestion struct {
	model.Question
	AltText string `json:"text"`
}

func readDraft(path string) (model.SurveyDraft, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.SurveyDraft{}, errors.Wrap(err, "draft.read")
	}

	f := draftFile{}
	if err = json.Unmarshal(b, &f); err != nil {
		return model.SurveyDraft{}, errors.Wrap(err, "draft.parse")
	}

	draft := f.SurveyDraft
	if draft.Description == "" {
		draft.Description = f.Prompt
	}
	draft.Questions = make([]model.Question, len(f.Questions))
	for i, q := range f.Questions {
		if q.Text == "" {
			q.Text = q.AltText
		}
		draft.Questions[i] = q.Question
	}

	if err = draft.Validate(); err != nil {
		return model.SurveyDraft{}, errors.Wrap(err, "draft.validate")
	}
	return draft, nil
}
