package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var (
		jobType string
		limit   int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "jobs [job-id]",
		Short: "List recent job runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			dbc := dbctx.Context{Ctx: cmd.Context()}
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid job id %q", args[0])
				}
				job, err := a.Services.Jobs.Get(dbc, id)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %s not found", id)
				}
				return writeJSON(cmd, job)
			}
			jobs, err := a.Services.Jobs.ListRecent(dbc, jobType, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{"jobs": jobs})
			}
			printJobs(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobType, "type", "", "Only this job type (aggregate_source, reconcile)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Rows to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printJobs(out io.Writer, jobs []*types.JobRun) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No job runs")
		return
	}
	headers := []string{"ID", "Type", "Status", "Attempts", "Created", "Error"}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID.String(),
			j.JobType,
			j.Status,
			strconv.Itoa(j.Attempts),
			j.CreatedAt.Local().Format(time.DateTime),
			j.Error,
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
}
