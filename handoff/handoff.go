// Package handoff is the flat key-value scratch space shared between the
// wizard and the confirmation view, and the offline record of surveys that
// were only published locally.
//
// The namespace has no transactions and no expiry; the last write to a key
// wins.
package handoff

import (
	"context"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-publisher/model"
)

const (
	KeyLastSurveyHTML     = "lastSurveyHtml"
	KeyLastSurveyTitle    = "lastSurveyTitle"
	KeyLastSurveyAudience = "lastSurveyAudience"
	KeyLastSurveyData     = "lastSurveyData"
	KeySentSurveys        = "sentSurveys"
	KeySurveyURL          = "surveyUrl"
	KeyAuthToken          = "auth_token"
)

type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// SessionHandoff gives typed access to the named slots of a Store.
type SessionHandoff struct {
	store Store
	// guards the read-modify-write of the sentSurveys list
	mu sync.Mutex
}

func New(store Store) *SessionHandoff {
	return &SessionHandoff{store: store}
}

func (h *SessionHandoff) getString(ctx context.Context, key string) (string, error) {
	v, _, err := h.store.Get(ctx, key)
	if err != nil {
		return "", errors.Wrapf(err, "handoff.get.%s", key)
	}
	return v, nil
}

func (h *SessionHandoff) setString(ctx context.Context, key, value string) error {
	return errors.Wrapf(h.store.Set(ctx, key, value), "handoff.set.%s", key)
}

func (h *SessionHandoff) LastSurveyHTML(ctx context.Context) (string, error) {
	return h.getString(ctx, KeyLastSurveyHTML)
}

func (h *SessionHandoff) SetLastSurveyHTML(ctx context.Context, html string) error {
	return h.setString(ctx, KeyLastSurveyHTML, html)
}

func (h *SessionHandoff) LastSurveyTitle(ctx context.Context) (string, error) {
	return h.getString(ctx, KeyLastSurveyTitle)
}

func (h *SessionHandoff) SetLastSurveyTitle(ctx context.Context, slug string) error {
	return h.setString(ctx, KeyLastSurveyTitle, slug)
}

func (h *SessionHandoff) SurveyURL(ctx context.Context) (string, error) {
	return h.getString(ctx, KeySurveyURL)
}

func (h *SessionHandoff) SetSurveyURL(ctx context.Context, url string) error {
	return h.setString(ctx, KeySurveyURL, url)
}

// LastSurveyAudience is the target count of the last publish, 0 when unset.
func (h *SessionHandoff) LastSurveyAudience(ctx context.Context) (int, error) {
	v, err := h.getString(ctx, KeyLastSurveyAudience)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	return n, errors.Wrap(err, "handoff.parse.lastSurveyAudience")
}

func (h *SessionHandoff) SetLastSurveyAudience(ctx context.Context, target int) error {
	return h.setString(ctx, KeyLastSurveyAudience, strconv.Itoa(target))
}

// LastSurveyData returns ok=false when nothing was published yet.
func (h *SessionHandoff) LastSurveyData(ctx context.Context) (data model.StoredDraft, ok bool, err error) {
	v, err := h.getString(ctx, KeyLastSurveyData)
	if err != nil || v == "" {
		return data, false, err
	}
	err = json.Unmarshal([]byte(v), &data)
	if err != nil {
		return data, false, errors.Wrap(err, "handoff.parse.lastSurveyData")
	}
	return data, true, nil
}

func (h *SessionHandoff) SetLastSurveyData(ctx context.Context, data model.StoredDraft) error {
	b, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "handoff.encode.lastSurveyData")
	}
	return h.setString(ctx, KeyLastSurveyData, string(b))
}

// AuthToken is the bearer token for the remote backend, if any was stored.
func (h *SessionHandoff) AuthToken(ctx context.Context) (string, error) {
	return h.getString(ctx, KeyAuthToken)
}

func (h *SessionHandoff) SetAuthToken(ctx context.Context, token string) error {
	return h.setString(ctx, KeyAuthToken, token)
}

// SentSurveys lists locally published surveys, most recent first.
func (h *SessionHandoff) SentSurveys(ctx context.Context) ([]model.PublishRecord, error) {
	v, err := h.getString(ctx, KeySentSurveys)
	if err != nil {
		return nil, err
	}
	return decodeRecords(v)
}

func decodeRecords(v string) ([]model.PublishRecord, error) {
	records := []model.PublishRecord{}
	if v == "" {
		return records, nil
	}
	err := json.Unmarshal([]byte(v), &records)
	return records, errors.Wrap(err, "handoff.parse.sentSurveys")
}

func (h *SessionHandoff) writeRecords(ctx context.Context, records []model.PublishRecord) error {
	b, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "handoff.encode.sentSurveys")
	}
	return h.setString(ctx, KeySentSurveys, string(b))
}

// PrependSentSurvey puts rec at the head of the sentSurveys list.
func (h *SessionHandoff) PrependSentSurvey(ctx context.Context, rec model.PublishRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.SentSurveys(ctx)
	if err != nil {
		return err
	}
	records = append([]model.PublishRecord{rec}, records...)
	return h.writeRecords(ctx, records)
}

// RecordResponse bumps the response count of a locally published survey
// and recomputes its completion rate. It reports whether the survey is
// known.
func (h *SessionHandoff) RecordResponse(ctx context.Context, surveyID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.SentSurveys(ctx)
	if err != nil {
		return false, err
	}
	for i := range records {
		r := &records[i]
		if r.ID != surveyID {
			continue
		}
		r.Responses++
		if r.Target > 0 {
			r.CompletionRate = min(100, float64(r.Responses)*100/float64(r.Target))
		}
		if r.Target > 0 && r.Responses >= r.Target {
			r.Status = model.StatusCompleted
		}
		return true, h.writeRecords(ctx, records)
	}
	return false, nil
}
