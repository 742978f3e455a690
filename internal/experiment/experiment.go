// Package experiment drives batches of density-classification runs: single
// evaluations, density sweeps and the velocity experiment. Each run owns its
// own Model; runs execute concurrently on a bounded errgroup.
package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfvining/motion-ca/internal/constants"
	"github.com/wfvining/motion-ca/internal/logging"
	"github.com/wfvining/motion-ca/internal/model"
	"github.com/wfvining/motion-ca/internal/movement"
	"github.com/wfvining/motion-ca/internal/rule"
)

// ErrInvalidParams is returned for experiment parameters that cannot run.
var ErrInvalidParams = errors.New("invalid experiment parameters")

// Params describes one kind of run. Model is a template: Evaluate overrides
// its seed and initial density.
type Params struct {
	Model          model.Config    `json:"model"`
	Regime         movement.Regime `json:"regime"`
	RuleName       string          `json:"rule"`
	MaxSteps       int             `json:"max_steps"`
	InitialDensity float64         `json:"initial_density"`

	// Thresholds are the densities whose first crossing is recorded.
	// Nil means constants.ConvergenceThresholds.
	Thresholds []float64 `json:"thresholds,omitempty"`

	// Events receives one event per completed run. Nil disables.
	Events *logging.EventLogger `json:"-"`
}

func (p Params) validate() error {
	if p.MaxSteps < 1 {
		return fmt.Errorf("%w: max steps must be at least 1, got %d", ErrInvalidParams, p.MaxSteps)
	}
	return nil
}

func (p Params) thresholds() []float64 {
	if p.Thresholds == nil {
		return constants.ConvergenceThresholds
	}
	return p.Thresholds
}

// ThresholdCrossing records when a run first reached a density.
// Step is -1 when the density was never reached.
type ThresholdCrossing struct {
	Threshold    float64 `json:"threshold"`
	Step         int     `json:"step"`
	MedianDegree float64 `json:"median_degree"`
}

// RunResult summarizes one evaluation.
type RunResult struct {
	Seed           int64   `json:"seed"`
	InitialDensity float64 `json:"initial_density"`
	FinalDensity   float64 `json:"final_density"`
	Steps          int     `json:"steps"`
	Converged      bool    `json:"converged"`
	Correct        bool    `json:"correct"`
	AverageDegree  float64 `json:"average_degree"`
	DegreeStdDev   float64 `json:"degree_std_dev"`
	MedianDegree   float64 `json:"median_degree"`

	// FinalComponents is the number of connected components of the last
	// recorded network.
	FinalComponents int                 `json:"final_components"`
	Thresholds      []ThresholdCrossing `json:"thresholds"`
}

// Evaluate runs one model built from p with the given seed until its density
// reaches 0 or 1 or p.MaxSteps steps have been taken. Cancellation is
// checked between steps.
func Evaluate(ctx context.Context, p Params, seed int64) (RunResult, error) {
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}
	if err := p.validate(); err != nil {
		return RunResult{}, err
	}
	r, err := rule.Lookup(p.RuleName)
	if err != nil {
		return RunResult{}, err
	}

	cfg := p.Model
	cfg.Seed = seed
	cfg.InitialDensity = p.InitialDensity
	m, err := model.New(cfg)
	if err != nil {
		return RunResult{}, err
	}
	if err := m.SetRegime(p.Regime); err != nil {
		return RunResult{}, err
	}

	thresholds := p.thresholds()
	crossings := make([]ThresholdCrossing, len(thresholds))
	for i, th := range thresholds {
		crossings[i] = ThresholdCrossing{Threshold: th, Step: -1}
	}

	res := RunResult{
		Seed:           seed,
		InitialDensity: m.CurrentDensity(),
	}

	converged := func(d float64) bool { return d == 0 || d == 1 }
	res.Converged = converged(res.InitialDensity)

	for step := 1; step <= p.MaxSteps && !res.Converged; step++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		m.Step(r)
		res.Steps = step

		d := m.CurrentDensity()
		for i := range crossings {
			if crossings[i].Step == -1 && d >= crossings[i].Threshold {
				crossings[i].Step = step
				crossings[i].MedianDegree = m.Stats().MedianAggregateDegree()
			}
		}
		res.Converged = converged(d)
	}

	stats := m.Stats()
	res.FinalDensity = m.CurrentDensity()
	res.Correct = stats.IsCorrect()
	res.AverageDegree = stats.AverageAggregateDegree()
	res.DegreeStdDev = stats.AggregateDegreeStdDev()
	res.MedianDegree = stats.MedianAggregateDegree()
	res.FinalComponents = stats.Network().Latest().Components()
	res.Thresholds = crossings

	p.Events.Log("run_complete", map[string]any{
		"seed":            res.Seed,
		"initial_density": res.InitialDensity,
		"final_density":   res.FinalDensity,
		"steps":           res.Steps,
		"converged":       res.Converged,
		"correct":         res.Correct,
		"regime":          p.Regime.String(),
		"rule":            p.RuleName,
	})

	return res, nil
}
