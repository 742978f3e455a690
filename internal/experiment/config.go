package experiment

import (
	"github.com/wfvining/motion-ca/internal/config"
	"github.com/wfvining/motion-ca/internal/logging"
	"github.com/wfvining/motion-ca/internal/movement"
)

// ParamsFromConfig builds single-run parameters from cfg at the given
// initial density. cfg should already be validated.
func ParamsFromConfig(cfg *config.Config, density float64, events *logging.EventLogger) (Params, error) {
	reg, err := cfg.Regime()
	if err != nil {
		return Params{}, err
	}
	if reg.Kind == movement.KindLevy && reg.MaxStep == 0 {
		reg.MaxStep = max(1, int(cfg.Simulation.ArenaSize))
	}
	return Params{
		Model:          cfg.ModelConfig(density),
		Regime:         reg,
		RuleName:       cfg.Simulation.Rule,
		MaxSteps:       cfg.Simulation.MaxSteps,
		InitialDensity: density,
		Events:         events,
	}, nil
}

// SweepParamsFromConfig builds density-sweep parameters from cfg.
func SweepParamsFromConfig(cfg *config.Config, events *logging.EventLogger) (SweepParams, error) {
	p, err := ParamsFromConfig(cfg, cfg.Sweep.From, events)
	if err != nil {
		return SweepParams{}, err
	}
	return SweepParams{
		Params:  p,
		From:    cfg.Sweep.From,
		To:      cfg.Sweep.To,
		Step:    cfg.Sweep.Step,
		Runs:    cfg.Sweep.Runs,
		Workers: cfg.Sweep.Workers,
	}, nil
}

// VelocityParamsFromConfig builds velocity-experiment parameters from cfg.
func VelocityParamsFromConfig(cfg *config.Config, events *logging.EventLogger) (VelocityParams, error) {
	p, err := ParamsFromConfig(cfg, cfg.Simulation.InitialDensity, events)
	if err != nil {
		return VelocityParams{}, err
	}
	return VelocityParams{
		Params:        p,
		Workers:       cfg.Sweep.Workers,
		RunsPerWorker: cfg.Sweep.RunsPerWorker,
	}, nil
}
