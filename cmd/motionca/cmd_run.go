package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wfvining/motion-ca/internal/constants"
	"github.com/wfvining/motion-ca/internal/experiment"
	"github.com/wfvining/motion-ca/internal/model"
	"github.com/wfvining/motion-ca/internal/rule"
)

// runSummary is the --summary and --json view of a single model run.
type runSummary struct {
	Steps          int       `json:"steps"`
	InitialDensity float64   `json:"initial_density"`
	FinalDensity   float64   `json:"final_density"`
	Correct        bool      `json:"correct"`
	AverageDegree  float64   `json:"avg_degree"`
	DegreeStdDev   float64   `json:"degree_std_dev"`
	MedianDegree   float64   `json:"median_degree"`
	Components     int       `json:"components"`
	Density        []float64 `json:"density,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Step one model and print its density history",
		Long: `Build one model and apply the update rule for a fixed number of steps,
printing "t density" for every recorded timestep.

Examples:
  motionca run                          # 100 steps with the configured defaults
  motionca run --steps 500 --density 0.6
  motionca run --regime levy --alpha 0.5 --summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applySimulationFlags(cmd, cfg); err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 0 {
				return fmt.Errorf("steps must not be negative, got %d", steps)
			}
			density := cfg.Simulation.InitialDensity
			if cmd.Flags().Changed("density") {
				density, _ = cmd.Flags().GetFloat64("density")
			}
			summaryOnly, _ := cmd.Flags().GetBool("summary")
			jsonOut, _ := cmd.Flags().GetBool("json")

			r, err := rule.Lookup(cfg.Simulation.Rule)
			if err != nil {
				return err
			}
			reg, err := cfg.Regime()
			if err != nil {
				return err
			}

			mc := cfg.ModelConfig(density)
			mc.Logger = newLogger(cmd, cfg)
			m, err := model.New(mc)
			if err != nil {
				return err
			}
			if err := m.SetRegime(reg); err != nil {
				return err
			}
			for range steps {
				m.Step(r)
			}

			stats := m.Stats()
			history := stats.DensityHistory()
			summary := runSummary{
				Steps:          steps,
				InitialDensity: history[0],
				FinalDensity:   history[len(history)-1],
				Correct:        stats.IsCorrect(),
				AverageDegree:  stats.AverageAggregateDegree(),
				DegreeStdDev:   stats.AggregateDegreeStdDev(),
				MedianDegree:   stats.MedianAggregateDegree(),
				Components:     stats.Network().Latest().Components(),
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if !summaryOnly {
					summary.Density = history
				}
				return writeJSON(out, summary)
			}
			if summaryOnly {
				fmt.Fprintf(out, "steps:           %d\n", summary.Steps)
				fmt.Fprintf(out, "initial density: %.6g\n", summary.InitialDensity)
				fmt.Fprintf(out, "final density:   %.6g\n", summary.FinalDensity)
				fmt.Fprintf(out, "correct:         %v\n", summary.Correct)
				fmt.Fprintf(out, "avg degree:      %.6g\n", summary.AverageDegree)
				fmt.Fprintf(out, "degree std-dev:  %.6g\n", summary.DegreeStdDev)
				fmt.Fprintf(out, "median degree:   %.6g\n", summary.MedianDegree)
				fmt.Fprintf(out, "components:      %d\n", summary.Components)
				return nil
			}
			return experiment.WriteDensityHistory(out, history)
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Int("steps", constants.DefaultRunSteps, "Number of steps to take")
	cmd.Flags().Float64("density", 0, "Expected initial density (default from config)")
	cmd.Flags().Bool("summary", false, "Print aggregate statistics instead of the history")

	return cmd
}
