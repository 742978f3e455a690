package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wfvining/motion-ca/internal/config"
	"github.com/wfvining/motion-ca/internal/experiment"
	"github.com/wfvining/motion-ca/internal/logging"
	"github.com/wfvining/motion-ca/internal/store"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// openEvents opens the event log for cfg. The result may be nil.
func openEvents(cfg *config.Config) *logging.EventLogger {
	return logging.NewEventLogger(cfg.DataDir(), cfg.Logging.Level)
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure classification accuracy across initial densities",
		Long: `Evaluate the model at every initial density from --from to --to in
increments of --step, running --runs evaluations at each, and print
"density fraction-correct" lines.

Examples:
  motionca sweep --regime levy --alpha 0.5
  motionca sweep --from 0.4 --to 0.6 --step 0.02 --runs 20 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("from") {
				cfg.Sweep.From, _ = f.GetFloat64("from")
			}
			if f.Changed("to") {
				cfg.Sweep.To, _ = f.GetFloat64("to")
			}
			if f.Changed("step") {
				cfg.Sweep.Step, _ = f.GetFloat64("step")
			}
			if f.Changed("runs") {
				cfg.Sweep.Runs, _ = f.GetInt("runs")
			}
			if f.Changed("workers") {
				cfg.Sweep.Workers, _ = f.GetInt("workers")
			}
			if err := applySimulationFlags(cmd, cfg); err != nil {
				return err
			}
			save, _ := f.GetBool("save")
			jsonOut, _ := f.GetBool("json")

			events := openEvents(cfg)
			defer events.Close()

			sp, err := experiment.SweepParamsFromConfig(cfg, events)
			if err != nil {
				return err
			}
			sp.Model.Logger = newLogger(cmd, cfg)

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			points, err := experiment.Sweep(ctx, sp)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			var batchID int64
			if save {
				if batchID, err = saveWith(cfg, func(st *store.Store) (int64, error) {
					return st.SaveSweep(ctx, sp, points)
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, map[string]any{
					"regime":   sp.Regime.String(),
					"points":   points,
					"batch_id": batchID,
				})
			}
			if err := experiment.WriteSweepTable(out, points); err != nil {
				return err
			}
			if save {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved sweep as batch %d\n", batchID)
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Float64("from", 0, "First initial density")
	cmd.Flags().Float64("to", 1, "Last initial density")
	cmd.Flags().Float64("step", 0, "Density increment (default from config)")
	cmd.Flags().Int("runs", 0, "Evaluations per density (default from config)")
	cmd.Flags().Int("workers", 0, "Concurrent evaluations (default from config)")
	cmd.Flags().Bool("save", false, "Store the sweep in the result database")

	return cmd
}

func newVelocityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "velocity",
		Short: "Measure convergence time and network degree at one speed",
		Long: `Run workers x runs-per-worker evaluations at a fixed speed and initial
density, and print one line per converged run:

  # t avg-degree std-dev median-degree 80%-t 80%-median-degree ...

Examples:
  motionca velocity --speed 0.5
  motionca velocity --speed 2 --regime correlated --concentration 0.9 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("workers") {
				cfg.Sweep.Workers, _ = f.GetInt("workers")
			}
			if f.Changed("runs-per-worker") {
				cfg.Sweep.RunsPerWorker, _ = f.GetInt("runs-per-worker")
			}
			if f.Changed("density") {
				cfg.Simulation.InitialDensity, _ = f.GetFloat64("density")
			}
			if err := applySimulationFlags(cmd, cfg); err != nil {
				return err
			}
			save, _ := f.GetBool("save")
			jsonOut, _ := f.GetBool("json")

			events := openEvents(cfg)
			defer events.Close()

			vp, err := experiment.VelocityParamsFromConfig(cfg, events)
			if err != nil {
				return err
			}
			vp.Model.Logger = newLogger(cmd, cfg)

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			report, err := experiment.Velocity(ctx, vp)
			if err != nil {
				return fmt.Errorf("velocity experiment failed: %w", err)
			}

			var batchID int64
			if save {
				if batchID, err = saveWith(cfg, func(st *store.Store) (int64, error) {
					return st.SaveVelocity(ctx, vp, report)
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, map[string]any{
					"regime":   vp.Regime.String(),
					"report":   report,
					"batch_id": batchID,
				})
			}
			if err := experiment.WriteRunTable(out, report.Results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d runs converged\n", len(report.Results), report.Attempted)
			if save {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved velocity experiment as batch %d\n", batchID)
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Float64("density", 0, "Expected initial density (default from config)")
	cmd.Flags().Int("workers", 0, "Concurrent workers (default from config)")
	cmd.Flags().Int("runs-per-worker", 0, "Evaluations per worker (default from config)")
	cmd.Flags().Bool("save", false, "Store the converged runs in the result database")

	return cmd
}

// saveWith opens the result store for cfg, calls save and closes the store.
func saveWith(cfg *config.Config, save func(*store.Store) (int64, error)) (int64, error) {
	st, err := store.Open(cfg.DataDir())
	if err != nil {
		return 0, err
	}
	defer st.Close()

	id, err := save(st)
	if err != nil {
		return 0, fmt.Errorf("failed to save results: %w", err)
	}
	return id, nil
}
