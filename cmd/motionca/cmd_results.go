package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wfvining/motion-ca/internal/store"
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored runs and batches",
		Long: `List results saved with --save or by the MCP server, newest first.

Examples:
  motionca results                  # last 20 runs
  motionca results --batches        # one line per saved command
  motionca results --sweep 3        # the points of sweep batch 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			batches, _ := cmd.Flags().GetBool("batches")
			sweepID, _ := cmd.Flags().GetInt64("sweep")
			jsonOut, _ := cmd.Flags().GetBool("json")

			st, err := store.Open(cfg.DataDir())
			if err != nil {
				return fmt.Errorf("failed to open result store: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch {
			case sweepID > 0:
				points, err := st.SweepPoints(ctx, sweepID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(out, points)
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "DENSITY\tRUNS\tCORRECT\tFRACTION\tMEAN STEPS")
				for _, p := range points {
					fmt.Fprintf(tw, "%.4g\t%d\t%d\t%.4g\t%.4g\n", p.Density, p.Runs, p.Correct, p.FractionCorrect, p.MeanSteps)
				}
				return tw.Flush()

			case batches:
				list, err := st.ListBatches(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(out, list)
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No stored results.")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tKIND\tRUNS\tCREATED")
				for _, b := range list {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", b.ID, b.Kind, b.RunCount, b.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return tw.Flush()

			default:
				runs, err := st.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					if runs == nil {
						runs = []store.RunRecord{}
					}
					return writeJSON(out, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No stored results.")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tBATCH\tKIND\tREGIME\tSEED\tDENSITY\tSTEPS\tCORRECT")
				for _, r := range runs {
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%.4g\t%d\t%v\n",
						r.ID, r.BatchID, r.Kind, r.Regime, r.Seed, r.InitialDensity, r.Steps, r.Correct)
				}
				return tw.Flush()
			}
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum entries to list (0 for all)")
	cmd.Flags().Bool("batches", false, "List saved batches instead of runs")
	cmd.Flags().Int64("sweep", 0, "Show the points of this sweep batch")

	return cmd
}
