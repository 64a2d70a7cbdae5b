package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"dbt-metabase/feature/history"

	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd lists recorded export runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded export runs",
	Long:  `Lists the most recent export runs from the history database (DATABASE_ENABLED=true).`,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to show")
	RootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	runs, err := rt.runs.List(cmd.Context(), runsLimit)
	if errors.Is(err, history.ErrDisabled) {
		return fmt.Errorf("run history is disabled, set DATABASE_ENABLED=true: %w", err)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATABASE\tSTATUS\tSTARTED\tUPDATED\tCRUFT\tFAILURES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Database, r.Status, r.StartedAt.Format(time.RFC3339), r.Updated, r.MarkedCruft, r.Failures)
	}
	return w.Flush()
}
