package app

import (
	"net/http"

	"github.com/mbolis/survey-publisher/config"
	"github.com/mbolis/survey-publisher/database"
	"github.com/mbolis/survey-publisher/handoff"
	"github.com/mbolis/survey-publisher/publish"
	"github.com/mbolis/survey-publisher/remote"
	"github.com/mbolis/survey-publisher/surveyhtml"
)

type App struct {
	*database.DB
	config.Config
	Remote    *remote.Client
	Handoff   *handoff.SessionHandoff
	Generator *surveyhtml.Generator
	Publisher *publish.Orchestrator
}

// New wires the services on top of an open database. Extra options go to
// the publish orchestrator.
func New(cfg config.Config, db *database.DB, opts ...publish.Option) App {
	h := handoff.New(db.KV())
	client := remote.New(cfg.BackendURL,
		remote.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		remote.WithTokenSource(h),
	)
	gen := surveyhtml.New(surveyhtml.Options{
		SubmitBaseURL: cfg.SubmitBaseURL(),
		RatingScale:   cfg.RatingScale,
	})
	opts = append([]publish.Option{
		publish.WithAudienceResolver(publish.StaticAudience(cfg.Recipients)),
		publish.WithArchive(db),
	}, opts...)

	return App{
		DB:        db,
		Config:    cfg,
		Remote:    client,
		Handoff:   h,
		Generator: gen,
		Publisher: publish.New(client, h, gen, opts...),
	}
}
