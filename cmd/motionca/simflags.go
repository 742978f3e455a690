package main

import (
	"github.com/spf13/cobra"
	"github.com/wfvining/motion-ca/internal/config"
	"github.com/wfvining/motion-ca/internal/constants"
)

// addSimulationFlags registers the flags shared by every command that
// builds models. Unset flags leave the loaded configuration alone.
func addSimulationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("agents", 0, "Number of agents")
	f.Float64("arena", 0, "Arena side length")
	f.Float64("range", 0, "Communication range")
	f.Float64("speed", 0, "Distance travelled per timestep")
	f.Int64("seed", 0, "Base random seed")
	f.Int("max-steps", 0, "Step limit for a single evaluation")
	f.String("rule", "", "Update rule (majority, identity, one, zero)")
	f.String("regime", "", "Movement regime (random, correlated, levy)")
	f.Float64("mu", 0, "Levy exponent")
	f.Float64("alpha", 0, "Levy alpha; sets mu to alpha+1")
	f.Float64("concentration", 0, "Correlated walk concentration, in [0, 1)")
	f.String("record", "", "Network recording: full or summary")
}

// applySimulationFlags copies every flag the user set onto cfg and
// validates the result.
func applySimulationFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("agents") {
		cfg.Simulation.NumAgents, _ = f.GetInt("agents")
	}
	if f.Changed("arena") {
		cfg.Simulation.ArenaSize, _ = f.GetFloat64("arena")
	}
	if f.Changed("range") {
		cfg.Simulation.CommunicationRange, _ = f.GetFloat64("range")
	}
	if f.Changed("speed") {
		cfg.Simulation.Speed, _ = f.GetFloat64("speed")
	}
	if f.Changed("seed") {
		cfg.Simulation.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("max-steps") {
		cfg.Simulation.MaxSteps, _ = f.GetInt("max-steps")
	}
	if f.Changed("rule") {
		cfg.Simulation.Rule, _ = f.GetString("rule")
	}
	if f.Changed("regime") {
		cfg.Movement.Regime, _ = f.GetString("regime")
	}
	if f.Changed("mu") {
		cfg.Movement.Mu, _ = f.GetFloat64("mu")
	}
	if f.Changed("alpha") {
		alpha, _ := f.GetFloat64("alpha")
		cfg.Movement.Mu = alpha + 1
	}
	if f.Changed("concentration") {
		cfg.Movement.Concentration, _ = f.GetFloat64("concentration")
	}
	if f.Changed("record") {
		record, _ := f.GetString("record")
		cfg.Simulation.Record = constants.RecordMode(record)
	}
	return cfg.Validate()
}
