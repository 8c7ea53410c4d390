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

// InsertSubmission stores s and returns its id. s.Time defaults to now.
func (db *DB) InsertSubmission(ctx context.Context, s model.Submission) (int, error) {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "db.insert_submission.encode_answers")
	}
	if s.Time.IsZero() {
		s.Time = time.Now()
	}

	var id int
	err = db.QueryRowContext(ctx, db.rebind(`
		INSERT INTO submission (survey_id, time, ip, completion_time, answers)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		s.SurveyID,
		s.Time.UTC(),
		s.IP,
		s.CompletionTime,
		string(answers),
	).Scan(&id)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "db.insert_submission")
	}
	return id, nil
}

// HasSubmitted reports whether ip already answered surveyID.
func (db *DB) HasSubmitted(ctx context.Context, surveyID, ip string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, db.rebind(`
		SELECT 1 FROM submission
		WHERE survey_id = ?
			AND ip = ?
		LIMIT 1`),
		surveyID,
		ip,
	).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, pkgerrors.Wrap(err, "db.has_submitted")
	}
	return true, nil
}

// ListSubmissions returns the submissions of surveyID, oldest first.
func (db *DB) ListSubmissions(ctx context.Context, surveyID string) ([]model.Submission, error) {
	rows, err := db.QueryContext(ctx, db.rebind(`
		SELECT id, survey_id, time, ip, completion_time, answers
		FROM submission
		WHERE survey_id = ?
		ORDER BY id`),
		surveyID,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "db.list_submissions")
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s := model.Submission{}
		var answers string
		err = rows.Scan(&s.ID, &s.SurveyID, &s.Time, &s.IP, &s.CompletionTime, &answers)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "db.list_submissions.scan")
		}
		if answers != "" {
			err = json.Unmarshal([]byte(answers), &s.Answers)
			if err != nil {
				return nil, pkgerrors.Wrap(err, "db.list_submissions.parse_answers")
			}
		}
		submissions = append(submissions, s)
	}
	return submissions, pkgerrors.Wrap(rows.Err(), "db.list_submissions.rows")
}
