package publish

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mbolis/survey-publisher/model"
	"github.com/mbolis/survey-publisher/remote"
)

// SurveyService is the part of the backend a publish talks to.
type SurveyService interface {
	CreateSurvey(ctx context.Context, draft model.SurveyDraft) remote.Result[remote.CreatedSurvey]
	MaterializeHTML(ctx context.Context, id string, req remote.MaterializeRequest) remote.Result[remote.Materialized]
}

// AudienceResolver turns an audience spec into the recipient list sent to
// the backend with the materialize call.
type AudienceResolver interface {
	Resolve(ctx context.Context, spec model.AudienceSpec) ([]string, error)
}

type AudienceResolverFunc func(ctx context.Context, spec model.AudienceSpec) ([]string, error)

func (f AudienceResolverFunc) Resolve(ctx context.Context, spec model.AudienceSpec) ([]string, error) {
	return f(ctx, spec)
}

// StaticAudience resolves every spec to the same recipient list.
func StaticAudience(recipients []string) AudienceResolver {
	return AudienceResolverFunc(func(context.Context, model.AudienceSpec) ([]string, error) {
		return append([]string(nil), recipients...), nil
	})
}

// Archive keeps every locally published draft by id. The handoff slots
// only remember the last one.
type Archive interface {
	SaveSurvey(ctx context.Context, survey model.StoredDraft) error
}

// IDGenerator mints ids for surveys the backend never saw.
type IDGenerator interface {
	NewID() string
}

type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// UUIDv7 yields "survey-<uuid v7>" ids, which sort by creation time.
var UUIDv7 IDGenerator = IDGeneratorFunc(func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "survey-" + uuid.NewString()
	}
	return "survey-" + id.String()
})

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var SystemClock Clock = ClockFunc(time.Now)
