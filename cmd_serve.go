package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/config"
	"github.com/mbolis/survey-publisher/database"
	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/routes"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if c.cfg.BackendURL == "" {
				log.Warn("no backend configured, serving demo data")
			}
			handler := routes.Wire(app.New(c.cfg, db))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = runServer(ctx, c.cfg, handler)
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("main.server.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
