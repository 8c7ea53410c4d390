// Package publish runs one publish attempt of a survey draft: create it on
// the backend, have the backend materialize its HTML, and fall back to a
// locally generated document when any of that fails. Either way the result
// lands in the session handoff slots.
package publish

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/mbolis/survey-publisher/handoff"
	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/model"
	"github.com/mbolis/survey-publisher/remote"
	"github.com/mbolis/survey-publisher/surveyhtml"
)

// Redirect is where the user goes once a publish is done.
const Redirect = "/thank-you"

var ErrPublishInProgress = errors.New("publish already in progress")

type Outcome struct {
	// State is PublishedRemote or PublishedLocalFallback.
	State    State
	Artifact model.GeneratedSurveyArtifact
	// Record is the sentSurveys entry added by a fallback publish.
	Record *model.PublishRecord
	// Warning collects the remote failures that led to a fallback.
	Warning     error
	EmailSent   int
	EmailFailed int
	Redirect    string
}

func (o Outcome) Fallback() bool {
	return o.State == PublishedLocalFallback
}

type Orchestrator struct {
	service   SurveyService
	audience  AudienceResolver
	ids       IDGenerator
	clock     Clock
	handoff   *handoff.SessionHandoff
	archive   Archive
	generator *surveyhtml.Generator
	onState   func(State)

	inFlight atomic.Bool
	state    atomic.Int32
}

type Option func(*Orchestrator)

func WithAudienceResolver(r AudienceResolver) Option {
	return func(o *Orchestrator) { o.audience = r }
}

// WithArchive stores the drafts of fallback publishes.
func WithArchive(a Archive) Option {
	return func(o *Orchestrator) { o.archive = a }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithStateHook is called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

func New(service SurveyService, h *handoff.SessionHandoff, g *surveyhtml.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		service:   service,
		audience:  StaticAudience(nil),
		ids:       UUIDv7,
		clock:     SystemClock,
		handoff:   h,
		generator: g,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) enter(s State) {
	o.state.Store(int32(s))
	log.Debugf("publish.state: %s", s)
	if o.onState != nil {
		o.onState(s)
	}
}

// Publish runs the attempt to completion. Remote failures never make it
// fail; they end up in Outcome.Warning. The error is either
// ErrPublishInProgress or a failure to render or store the result locally.
func (o *Orchestrator) Publish(ctx context.Context, draft model.SurveyDraft) (Outcome, error) {
	if !o.inFlight.CAS(false, true) {
		return Outcome{}, ErrPublishInProgress
	}
	defer o.inFlight.Store(false)

	draft.Title = draft.EffectiveTitle()
	o.enter(Submitting)

	var warnings *multierror.Error
	outcome, ok := o.publishRemote(ctx, draft, &warnings)
	if !ok {
		var err error
		outcome, err = o.publishLocal(draft)
		if err != nil {
			o.enter(Drafting)
			return Outcome{}, err
		}
	}
	outcome.Warning = warnings.ErrorOrNil()
	o.enter(outcome.State)

	err := o.persist(ctx, draft, outcome)
	if err != nil {
		o.enter(Drafting)
		return Outcome{}, err
	}

	outcome.Redirect = Redirect
	o.enter(Done)
	return outcome, nil
}

func (o *Orchestrator) publishRemote(ctx context.Context, draft model.SurveyDraft, warnings **multierror.Error) (Outcome, bool) {
	created := guard(ctx, func(ctx context.Context) remote.Result[remote.CreatedSurvey] {
		return o.service.CreateSurvey(ctx, draft)
	})
	if !created.OK {
		*warnings = multierror.Append(*warnings, errors.Wrap(created.Err, "publish.create_survey"))
		return Outcome{}, false
	}
	id := created.Data.ID
	if id == "" {
		*warnings = multierror.Append(*warnings, errors.New("publish.create_survey: no survey id returned"))
		return Outcome{}, false
	}

	recipients, err := o.audience.Resolve(ctx, draft.Audience)
	if err != nil {
		*warnings = multierror.Append(*warnings, errors.Wrap(err, "publish.resolve_audience"))
	}

	materialized := guard(ctx, func(ctx context.Context) remote.Result[remote.Materialized] {
		return o.service.MaterializeHTML(ctx, id, remote.MaterializeRequest{
			CampaignName:     draft.CampaignName(),
			SelectedAudience: recipients,
		})
	})
	if !materialized.OK {
		*warnings = multierror.Append(*warnings, errors.Wrapf(materialized.Err, "publish.materialize_html %s", id))
		return Outcome{}, false
	}
	m := materialized.Data
	if m.Survey.HTMLContent == "" || m.Survey.PublicURL == "" {
		*warnings = multierror.Append(*warnings, errors.Errorf("publish.materialize_html %s: no content returned", id))
		return Outcome{}, false
	}

	return Outcome{
		State: PublishedRemote,
		Artifact: model.GeneratedSurveyArtifact{
			ID:          id,
			Title:       draft.Title,
			Description: draft.Description,
			HTML:        m.Survey.HTMLContent,
			PublicURL:   m.Survey.PublicURL,
		},
		EmailSent:   m.Email.Sent,
		EmailFailed: m.Email.Failed,
	}, true
}

func (o *Orchestrator) publishLocal(draft model.SurveyDraft) (Outcome, error) {
	id := o.ids.NewID()
	html, err := o.generator.Generate(surveyhtml.Spec{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Questions:   draft.Questions,
	})
	if err != nil {
		return Outcome{}, errors.Wrap(err, "publish.generate_html")
	}

	return Outcome{
		State: PublishedLocalFallback,
		Artifact: model.GeneratedSurveyArtifact{
			ID:          id,
			Title:       draft.Title,
			Description: draft.Description,
			HTML:        html,
		},
		Record: &model.PublishRecord{
			ID:        id,
			Title:     draft.Title,
			Category:  draft.Category,
			Status:    model.StatusActive,
			Target:    draft.Audience.TargetCount,
			CreatedAt: o.clock.Now().UTC().Format(model.DateLayout),
		},
	}, nil
}

// persist writes the handoff slots one after the other, then the
// sentSurveys entry and the archived draft of a fallback publish.
func (o *Orchestrator) persist(ctx context.Context, draft model.SurveyDraft, outcome Outcome) error {
	h := o.handoff
	stored := model.StoredDraft{SurveyDraft: draft, ID: outcome.Artifact.ID}
	writes := []func() error{
		func() error { return h.SetLastSurveyHTML(ctx, outcome.Artifact.HTML) },
		func() error { return h.SetSurveyURL(ctx, outcome.Artifact.PublicURL) },
		func() error { return h.SetLastSurveyTitle(ctx, model.TitleSlug(draft.Category)) },
		func() error { return h.SetLastSurveyAudience(ctx, draft.Audience.TargetCount) },
		func() error { return h.SetLastSurveyData(ctx, stored) },
	}
	if outcome.Record != nil {
		writes = append(writes, func() error { return h.PrependSentSurvey(ctx, *outcome.Record) })
		if o.archive != nil {
			writes = append(writes, func() error { return o.archive.SaveSurvey(ctx, stored) })
		}
	}

	for _, write := range writes {
		if err := write(); err != nil {
			return errors.Wrap(err, "publish.persist")
		}
	}
	return nil
}

// guard turns a panicking call into a NetworkError result.
func guard[T any](ctx context.Context, call func(context.Context) remote.Result[T]) (res remote.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("publish.panic: %v", r)
			res = remote.Fail[T](remote.NetworkError, "NETWORK_ERROR", fmt.Sprint(r))
		}
	}()
	res = call(ctx)
	if !res.OK && res.Err == nil {
		res = remote.Fail[T](remote.ApiError, "", "unknown error")
	}
	return res
}
