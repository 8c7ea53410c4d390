package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mbolis/survey-publisher/database"
	"github.com/mbolis/survey-publisher/handoff"
	"github.com/mbolis/survey-publisher/model"
)

func newSentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sent",
		Short: "List the surveys that were only published locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := handoff.New(db.KV()).SentSurveys(cmd.Context())
			if err != nil {
				return err
			}
			printSent(cmd.OutOrStdout(), records, time.Now())
			return nil
		},
	}
}

func printSent(out io.Writer, records []model.PublishRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(out, "no surveys")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tRESPONSES\tCOMPLETION\tCREATED")
	for _, r := range records {
		created := r.CreatedAt
		if t, err := r.Created(); err == nil {
			created = humanize.RelTime(t, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%.0f%%\t%s\n",
			r.ID, r.Title, r.Status,
			humanize.Comma(int64(r.Responses)), humanize.Comma(int64(r.Target)),
			r.CompletionRate, created)
	}
	w.Flush()
}
