package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/surveyhtml"
)

func newRenderCmd(c *cli) *cobra.Command {
	var draftPath, outDir, id string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a draft to <category>_survey.html",
		Long: "Render a draft to a standalone HTML survey. Without --id the document is a\n" +
			"preview whose submit button only acknowledges locally.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(draftPath)
			if err != nil {
				return err
			}

			gen := surveyhtml.New(surveyhtml.Options{
				SubmitBaseURL: c.cfg.SubmitBaseURL(),
				RatingScale:   c.cfg.RatingScale,
			})
			html, err := gen.Generate(surveyhtml.Spec{
				ID:          id,
				Title:       draft.EffectiveTitle(),
				Description: draft.Description,
				Questions:   draft.Questions,
			})
			if err != nil {
				return errors.Wrap(err, "render.generate")
			}

			path := filepath.Join(outDir, surveyhtml.FileName(draft.Category))
			err = os.WriteFile(path, []byte(html), 0o644)
			if err != nil {
				return errors.Wrap(err, "render.write")
			}
			log.Info("Wrote " + path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&draftPath, "file", "f", "", "draft JSON file")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&id, "id", "", "survey id the document submits answers for")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
