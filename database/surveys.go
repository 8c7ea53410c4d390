package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"

	"github.com/mbolis/survey-publisher/model"
)

// SaveSurvey keeps the draft of a locally published survey, so its public
// endpoints can still find the questions after later publishes.
func (db *DB) SaveSurvey(ctx context.Context, survey model.StoredDraft) error {
	if survey.ID == "" {
		return pkgerrors.New("db.save_survey: empty id")
	}
	draft, err := json.Marshal(survey)
	if err != nil {
		return pkgerrors.Wrap(err, "db.save_survey.encode")
	}

	_, err = db.ExecContext(ctx, db.rebind(`
		INSERT INTO survey (id, draft, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET draft = excluded.draft`),
		survey.ID,
		string(draft),
		time.Now().UTC(),
	)
	return pkgerrors.Wrap(err, "db.save_survey")
}

// GetSurvey returns ok=false for ids that were never published locally.
func (db *DB) GetSurvey(ctx context.Context, id string) (survey model.StoredDraft, ok bool, err error) {
	var draft string
	err = db.QueryRowContext(ctx, db.rebind(`
		SELECT draft FROM survey
		WHERE id = ?`),
		id,
	).Scan(&draft)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return survey, false, nil
	case err != nil:
		return survey, false, pkgerrors.Wrap(err, "db.get_survey")
	}

	err = json.Unmarshal([]byte(draft), &survey)
	if err != nil {
		return survey, false, pkgerrors.Wrap(err, "db.get_survey.parse")
	}
	return survey, true, nil
}
