package publish

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mbolis/survey-publisher/handoff"
	"github.com/mbolis/survey-publisher/model"
	"github.com/mbolis/survey-publisher/remote"
	"github.com/mbolis/survey-publisher/surveyhtml"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeService struct {
	create      func(model.SurveyDraft) remote.Result[remote.CreatedSurvey]
	materialize func(string, remote.MaterializeRequest) remote.Result[remote.Materialized]

	mu           sync.Mutex
	creates      int
	materialized []remote.MaterializeRequest
}

func (f *fakeService) CreateSurvey(_ context.Context, d model.SurveyDraft) remote.Result[remote.CreatedSurvey] {
	f.mu.Lock()
	f.creates++
	f.mu.Unlock()
	return f.create(d)
}

func (f *fakeService) MaterializeHTML(_ context.Context, id string, req remote.MaterializeRequest) remote.Result[remote.Materialized] {
	f.mu.Lock()
	f.materialized = append(f.materialized, req)
	f.mu.Unlock()
	return f.materialize(id, req)
}

func createFails(model.SurveyDraft) remote.Result[remote.CreatedSurvey] {
	return remote.Fail[remote.CreatedSurvey](remote.NetworkError, "NETWORK_ERROR", "dial tcp: connection refused")
}

func createOK(model.SurveyDraft) remote.Result[remote.CreatedSurvey] {
	return remote.Ok(remote.CreatedSurvey{ID: "srv-1", Status: "active"})
}

func materializeOK(id string, _ remote.MaterializeRequest) remote.Result[remote.Materialized] {
	m := remote.Materialized{}
	m.Survey.SurveyID = id
	m.Survey.PublicURL = "https://surveys.example.com/s/" + id
	m.Survey.HTMLContent = "<html>server " + id + "</html>"
	m.Email.Sent = 2
	return remote.Ok(m)
}

func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return IDGeneratorFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "survey-" + strconv.Itoa(n)
	})
}

var fixedClock = ClockFunc(func() time.Time {
	return time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
})

func healthcareDraft() model.SurveyDraft {
	return model.SurveyDraft{
		Description: "patient satisfaction",
		Category:    "Healthcare",
		Questions: []model.Question{
			{ID: "q1", Type: model.Rating, Text: "Rate your visit", Options: []string{"1", "2", "3", "4", "5"}, Required: true},
		},
		Audience: model.AudienceSpec{TargetCount: 250, DataSource: model.SourceDefault},
	}
}

func newOrchestrator(svc SurveyService, h *handoff.SessionHandoff, opts ...Option) *Orchestrator {
	opts = append([]Option{WithIDGenerator(sequentialIDs()), WithClock(fixedClock)}, opts...)
	return New(svc, h, surveyhtml.New(surveyhtml.Options{}), opts...)
}

func TestCreateFailureFallsBackLocally(t *testing.T) {
	ctx := context.Background()
	h := handoff.New(handoff.NewMemoryStore())
	require.NoError(t, h.PrependSentSurvey(ctx, model.PublishRecord{ID: "older"}))

	svc := &fakeService{create: createFails}
	o := newOrchestrator(svc, h)

	out, err := o.Publish(ctx, healthcareDraft())
	require.NoError(t, err)
	assert.Equal(t, PublishedLocalFallback, out.State)
	assert.True(t, out.Fallback())
	assert.Equal(t, "/thank-you", out.Redirect)
	assert.ErrorContains(t, out.Warning, "connection refused")
	assert.Empty(t, svc.materialized)

	html, err := h.LastSurveyHTML(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, html)
	assert.Contains(t, html, "survey-1")

	records, err := h.SentSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.PublishRecord{
		ID:        "survey-1",
		Title:     "Healthcare Survey",
		Category:  "Healthcare",
		Status:    model.StatusActive,
		Target:    250,
		CreatedAt: "2024-03-01",
	}, records[0])
	assert.Equal(t, "older", records[1].ID)

	u, _ := h.SurveyURL(ctx)
	assert.Empty(t, u)
}

func TestFallbackIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	h := handoff.New(handoff.NewMemoryStore())
	o := New(&fakeService{create: createFails}, h, surveyhtml.New(surveyhtml.Options{}))

	for i := 0; i < 3; i++ {
		_, err := o.Publish(ctx, healthcareDraft())
		require.NoError(t, err)
	}

	records, err := h.SentSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	seen := map[string]bool{}
	for _, r := range records {
		assert.Regexp(t, `^survey-[0-9a-f-]{36}$`, r.ID)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestRemoteSuccessKeepsServerArtifact(t *testing.T) {
	ctx := context.Background()
	h := handoff.New(handoff.NewMemoryStore())
	require.NoError(t, h.PrependSentSurvey(ctx, model.PublishRecord{ID: "older"}))

	svc := &fakeService{create: createOK, materialize: materializeOK}
	o := newOrchestrator(svc, h, WithAudienceResolver(StaticAudience([]string{"a@example.com"})))

	out, err := o.Publish(ctx, healthcareDraft())
	require.NoError(t, err)
	assert.Equal(t, PublishedRemote, out.State)
	assert.Nil(t, out.Record)
	assert.NoError(t, out.Warning)
	assert.Equal(t, 2, out.EmailSent)

	require.Len(t, svc.materialized, 1)
	assert.Equal(t, "Healthcare Survey", svc.materialized[0].CampaignName)
	assert.Equal(t, []string{"a@example.com"}, svc.materialized[0].SelectedAudience)

	html, _ := h.LastSurveyHTML(ctx)
	assert.Equal(t, "<html>server srv-1</html>", html)
	u, _ := h.SurveyURL(ctx)
	assert.Equal(t, "https://surveys.example.com/s/srv-1", u)

	records, _ := h.SentSurveys(ctx)
	assert.Len(t, records, 1)
}

func TestAllBranchesPersistHandoffSlots(t *testing.T) {
	cases := map[string]*fakeService{
		"remote":   {create: createOK, materialize: materializeOK},
		"fallback": {create: createFails},
	}
	for name, svc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			h := handoff.New(handoff.NewMemoryStore())

			out, err := newOrchestrator(svc, h).Publish(ctx, healthcareDraft())
			require.NoError(t, err)

			title, _ := h.LastSurveyTitle(ctx)
			assert.Equal(t, "healthcare_survey", title)
			n, _ := h.LastSurveyAudience(ctx)
			assert.Equal(t, 250, n)

			data, ok, err := h.LastSurveyData(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, out.Artifact.ID, data.ID)
			assert.Equal(t, "Healthcare Survey", data.Title)
			assert.Equal(t, healthcareDraft().Questions, data.Questions)
		})
	}
}

type memoryArchive struct {
	mu      sync.Mutex
	surveys map[string]model.StoredDraft
}

func (a *memoryArchive) SaveSurvey(_ context.Context, survey model.StoredDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.surveys[survey.ID] = survey
	return nil
}

func TestFallbackDraftsAreArchived(t *testing.T) {
	ctx := context.Background()
	archive := &memoryArchive{surveys: map[string]model.StoredDraft{}}

	o := newOrchestrator(&fakeService{create: createFails}, handoff.New(handoff.NewMemoryStore()), WithArchive(archive))
	first, err := o.Publish(ctx, healthcareDraft())
	require.NoError(t, err)
	second, err := o.Publish(ctx, healthcareDraft())
	require.NoError(t, err)

	require.Len(t, archive.surveys, 2)
	assert.Equal(t, healthcareDraft().Questions, archive.surveys[first.Artifact.ID].Questions)
	assert.Equal(t, "Healthcare Survey", archive.surveys[second.Artifact.ID].Title)

	remoteOnly := newOrchestrator(&fakeService{create: createOK, materialize: materializeOK},
		handoff.New(handoff.NewMemoryStore()), WithArchive(archive))
	_, err = remoteOnly.Publish(ctx, healthcareDraft())
	require.NoError(t, err)
	assert.Len(t, archive.surveys, 2)
}

func TestMaterializeProblemsFallBack(t *testing.T) {
	cases := map[string]func(string, remote.MaterializeRequest) remote.Result[remote.Materialized]{
		"failure": func(string, remote.MaterializeRequest) remote.Result[remote.Materialized] {
			return remote.Fail[remote.Materialized](remote.ApiError, "SMTP", "mailer down")
		},
		"empty html": func(string, remote.MaterializeRequest) remote.Result[remote.Materialized] {
			m := remote.Materialized{}
			m.Survey.PublicURL = "https://x"
			return remote.Ok(m)
		},
		"no public url": func(string, remote.MaterializeRequest) remote.Result[remote.Materialized] {
			m := remote.Materialized{}
			m.Survey.HTMLContent = "<html></html>"
			return remote.Ok(m)
		},
		"panic": func(string, remote.MaterializeRequest) remote.Result[remote.Materialized] {
			panic("boom")
		},
	}
	for name, materialize := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			h := handoff.New(handoff.NewMemoryStore())
			svc := &fakeService{create: createOK, materialize: materialize}

			out, err := newOrchestrator(svc, h).Publish(ctx, healthcareDraft())
			require.NoError(t, err)
			assert.Equal(t, PublishedLocalFallback, out.State)
			assert.Equal(t, "survey-1", out.Artifact.ID)
			assert.Error(t, out.Warning)

			records, _ := h.SentSurveys(ctx)
			require.Len(t, records, 1)
			assert.Equal(t, "survey-1", records[0].ID)
		})
	}
}

func TestCreateWithoutIDFallsBack(t *testing.T) {
	svc := &fakeService{create: func(model.SurveyDraft) remote.Result[remote.CreatedSurvey] {
		return remote.Ok(remote.CreatedSurvey{})
	}}
	h := handoff.New(handoff.NewMemoryStore())

	out, err := newOrchestrator(svc, h).Publish(context.Background(), healthcareDraft())
	require.NoError(t, err)
	assert.True(t, out.Fallback())
	assert.Empty(t, svc.materialized)
}

func TestAudienceResolverFailureIsAWarning(t *testing.T) {
	svc := &fakeService{create: createOK, materialize: materializeOK}
	h := handoff.New(handoff.NewMemoryStore())
	resolver := AudienceResolverFunc(func(context.Context, model.AudienceSpec) ([]string, error) {
		return nil, errors.New("segments unavailable")
	})

	out, err := newOrchestrator(svc, h, WithAudienceResolver(resolver)).Publish(context.Background(), healthcareDraft())
	require.NoError(t, err)
	assert.Equal(t, PublishedRemote, out.State)
	assert.ErrorContains(t, out.Warning, "segments unavailable")
}

func TestStateTransitions(t *testing.T) {
	var states []State
	h := handoff.New(handoff.NewMemoryStore())
	o := newOrchestrator(&fakeService{create: createFails}, h, WithStateHook(func(s State) {
		states = append(states, s)
	}))
	assert.Equal(t, Drafting, o.State())

	_, err := o.Publish(context.Background(), healthcareDraft())
	require.NoError(t, err)
	assert.Equal(t, []State{Submitting, PublishedLocalFallback, Done}, states)
	assert.Equal(t, Done, o.State())
}

func TestConcurrentPublishIsRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	svc := &fakeService{create: func(model.SurveyDraft) remote.Result[remote.CreatedSurvey] {
		close(entered)
		<-release
		return createFails(model.SurveyDraft{})
	}}
	o := newOrchestrator(svc, handoff.New(handoff.NewMemoryStore()))

	done := make(chan error)
	go func() {
		_, err := o.Publish(context.Background(), healthcareDraft())
		done <- err
	}()
	<-entered

	_, err := o.Publish(context.Background(), healthcareDraft())
	assert.ErrorIs(t, err, ErrPublishInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, svc.creates)
}

type brokenStore struct{ handoff.MemoryStore }

func (*brokenStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestStorageFailureIsReturned(t *testing.T) {
	h := handoff.New(&brokenStore{})
	o := newOrchestrator(&fakeService{create: createFails}, h)

	_, err := o.Publish(context.Background(), healthcareDraft())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, Drafting, o.State())
}
