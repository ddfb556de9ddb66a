package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cfme-qe/coverage-reporter/internal"
)

func newHistoryCmd() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded collection runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, closeStore, err := openReportStore()
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := reports.ListLatestReports(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tJOB\tVERSION\tBUILDS\tCOVERAGE\tSTATUS\tCREATED\tENDED")
			for _, r := range list {
				builds, coverage, ended := "-", "-", "-"
				if r.Builds != nil {
					builds = *r.Builds
				}
				if r.CoveragePct != nil {
					coverage = *r.CoveragePct
				}
				if r.EndedOn != nil {
					ended = r.EndedOn.Format(internal.DBTimestampLayout)
				}
				fmt.Fprintf(
					w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ReportID,
					r.JobName,
					r.ApplianceVersion,
					builds,
					coverage,
					r.Status,
					r.CreatedOn.Format(internal.DBTimestampLayout),
					ended,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}
