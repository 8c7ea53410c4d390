package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	Checkbox     QuestionType = "checkbox"
	Text         QuestionType = "text"
	Rating       QuestionType = "rating"

	// emitted by older generators, see NormalizeQuestion
	multipleChoice QuestionType = "multiple_choice"
	yesNo          QuestionType = "yes_no"
)

var (
	ErrMissingID      = errors.New("question has no id")
	ErrMissingOptions = errors.New("choice question has no options")
	ErrNegativeTarget = errors.New("audience target count is negative")
)

type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"question"`
	Options  []string     `json:"options"`
	Required bool         `json:"required"`
}

// IsChoice reports whether the question type draws from Options.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == Checkbox
}

func (q Question) Validate() error {
	if q.ID == "" {
		return ErrMissingID
	}
	if q.Type.IsChoice() && len(q.Options) == 0 {
		return fmt.Errorf("%s: %w", q.ID, ErrMissingOptions)
	}
	return nil
}

// NormalizeQuestion maps legacy and unknown types onto the four supported
// ones. It never fails: anything unrecognised becomes a text question.
func NormalizeQuestion(q Question) Question {
	switch q.Type {
	case SingleChoice, Checkbox, Text, Rating:
	case multipleChoice:
		q.Type = SingleChoice
	case yesNo:
		q.Type = SingleChoice
		if len(q.Options) == 0 {
			q.Options = []string{"Yes", "No"}
		}
	default:
		q.Type = Text
	}
	if q.Type.IsChoice() && len(q.Options) == 0 {
		q.Type = Text
	}
	return q
}

// AddOption appends a placeholder option the way the editor does.
func (q *Question) AddOption() {
	q.Options = append(q.Options, "Option "+strconv.Itoa(len(q.Options)+1))
}

func (q *Question) RemoveOption(i int) bool {
	if i < 0 || i >= len(q.Options) {
		return false
	}
	q.Options = append(q.Options[:i], q.Options[i+1:]...)
	return true
}

type DataSource string

const (
	SourceDefault  DataSource = "default"
	SourceImported DataSource = "imported"
	SourceSegments DataSource = "segments"
)

type AudienceSpec struct {
	AgeGroups   []string   `json:"ageGroups"`
	Genders     []string   `json:"genders"`
	Locations   []string   `json:"locations"`
	Industries  []string   `json:"industries"`
	TargetCount int        `json:"targetCount"`
	DataSource  DataSource `json:"dataSource"`
}

func (a AudienceSpec) Validate() error {
	if a.TargetCount < 0 {
		return ErrNegativeTarget
	}
	return nil
}

// ExceedsReach is advisory only: publishing is never refused because of it.
func (a AudienceSpec) ExceedsReach(reach int) bool {
	return a.TargetCount > reach
}

type SurveyDraft struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Questions   []Question   `json:"questions"`
	Audience    AudienceSpec `json:"audience"`
}

// EffectiveTitle falls back to "<category> Survey".
func (d SurveyDraft) EffectiveTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Category + " Survey"
}

// CampaignName is what the materialize call is told to name the mailing.
func (d SurveyDraft) CampaignName() string {
	return d.Category + " Survey"
}

func (d SurveyDraft) Validate() error {
	seen := make(map[string]bool, len(d.Questions))
	for _, q := range d.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return d.Audience.Validate()
}

// AddQuestion appends a blank single choice question and returns its id.
func (d *SurveyDraft) AddQuestion(id string) string {
	d.Questions = append(d.Questions, Question{
		ID:      id,
		Type:    SingleChoice,
		Text:    "New Question",
		Options: []string{"Option 1", "Option 2"},
	})
	return id
}

func (d *SurveyDraft) RemoveQuestion(id string) bool {
	for i, q := range d.Questions {
		if q.ID == id {
			d.Questions = append(d.Questions[:i], d.Questions[i+1:]...)
			return true
		}
	}
	return false
}

// StoredDraft is the lastSurveyData payload: the draft tagged with the id
// that publishing assigned.
type StoredDraft struct {
	SurveyDraft
	ID string `json:"id"`
}

type GeneratedSurveyArtifact struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	HTML        string `json:"html"`
	PublicURL   string `json:"publicUrl,omitempty"`
}

type SurveyStatus string

const (
	StatusActive    SurveyStatus = "active"
	StatusCompleted SurveyStatus = "completed"
	StatusDraft     SurveyStatus = "draft"
)

// DateLayout is how PublishRecord.CreatedAt is stored.
const DateLayout = "2006-01-02"

type PublishRecord struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Category       string       `json:"category"`
	Status         SurveyStatus `json:"status"`
	Responses      int          `json:"responses"`
	Target         int          `json:"target"`
	CompletionRate float64      `json:"completionRate"`
	CreatedAt      string       `json:"createdAt"`
}

func (r PublishRecord) Created() (time.Time, error) {
	return time.Parse(DateLayout, r.CreatedAt)
}

type Submission struct {
	ID             int               `json:"id"`
	SurveyID       string            `json:"surveyId"`
	Time           time.Time         `json:"time"`
	IP             string            `json:"ip"`
	CompletionTime int               `json:"completionTime"`
	Answers        []SubmittedAnswer `json:"answers"`
}

type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     any    `json:"answer"`
}
