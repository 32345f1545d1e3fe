package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/games-aggregator/internal/aggregation/reconcile"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Offline cleanup passes over the canonical table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newReconcilePassCommand(ctx, "dedupe-slugs",
		"Delete every row whose slug is held by a lower id",
		func(c context.Context, r reconcile.Reconciler, confirm bool) (reconcile.Report, error) {
			return r.DedupeBySlug(c, confirm)
		}))
	cmd.AddCommand(newReconcilePassCommand(ctx, "mismatched-slugs",
		"Delete rows whose slug is empty or does not match their name",
		func(c context.Context, r reconcile.Reconciler, confirm bool) (reconcile.Report, error) {
			return r.DeleteMismatchedSlugs(c, confirm)
		}))
	return cmd
}

type reconcilePass func(ctx context.Context, r reconcile.Reconciler, confirm bool) (reconcile.Report, error)

func newReconcilePassCommand(ctx *commandContext, use, short string, pass reconcilePass) *cobra.Command {
	var confirm, asJSON bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". Without --confirm only the plan is printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			report, err := pass(cmd.Context(), a.Services.Reconciler, confirm)
			planOnly := errors.Is(err, pkgerrors.ErrConfirmationRequired)
			if err != nil && !planOnly {
				return err
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			printReconcileReport(cmd.OutOrStdout(), report)
			if planOnly && len(report.DeletedIDs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing deleted. Re-run with --confirm to delete %d rows.\n", len(report.DeletedIDs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Apply the deletions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

const maxListedIDs = 20

func printReconcileReport(out io.Writer, r reconcile.Report) {
	verb := "Would delete"
	if r.Confirmed {
		verb = "Deleted"
	}
	ids := make([]string, 0, min(len(r.DeletedIDs), maxListedIDs))
	for i, id := range r.DeletedIDs {
		if i == maxListedIDs {
			ids = append(ids, fmt.Sprintf("... +%d", len(r.DeletedIDs)-maxListedIDs))
			break
		}
		ids = append(ids, strconv.FormatUint(id, 10))
	}
	rows := [][]string{
		{"Operation", r.Operation},
		{"Scanned", strconv.Itoa(r.Scanned)},
		{"Groups", strconv.Itoa(r.Groups)},
		{verb, strconv.Itoa(len(r.DeletedIDs))},
		{"IDs", strings.Join(ids, ", ")},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
}
