package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbolis/survey-publisher/app"
	"github.com/mbolis/survey-publisher/database"
	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/publish"
)

func newPublishCmd(c *cli) *cobra.Command {
	var draftPath string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a draft to the backend, or locally when it is unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(draftPath)
			if err != nil {
				return err
			}

			db, err := database.Open(c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			a := app.New(c.cfg, db, publish.WithStateHook(func(s publish.State) {
				log.Debugf("publish: %s", s)
			}))
			out, err := a.Publisher.Publish(cmd.Context(), draft)
			if err != nil {
				return err
			}

			if out.Warning != nil {
				log.Warnf("published locally: %s", out.Warning)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "id:     %s\n", out.Artifact.ID)
			fmt.Fprintf(w, "state:  %s\n", out.State)
			if out.Artifact.PublicURL != "" {
				fmt.Fprintf(w, "url:    %s\n", out.Artifact.PublicURL)
			} else {
				fmt.Fprintf(w, "submit: %s\n", a.Generator.SubmitURL(out.Artifact.ID))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&draftPath, "file", "f", "", "draft JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
