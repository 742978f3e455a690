package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/wfvining/motion-ca/internal/constants"
	"golang.org/x/sync/errgroup"
)

// SweepParams describes a density sweep. Params.InitialDensity is ignored;
// every density in Densities(From, To, Step) is evaluated Runs times.
type SweepParams struct {
	Params
	From    float64 `json:"from"`
	To      float64 `json:"to"`
	Step    float64 `json:"step"`
	Runs    int     `json:"runs"`
	Workers int     `json:"workers"`
}

// SweepPoint is the outcome at one initial density.
type SweepPoint struct {
	Density         float64 `json:"density"`
	Runs            int     `json:"runs"`
	Correct         int     `json:"correct"`
	Converged       int     `json:"converged"`
	FractionCorrect float64 `json:"fraction_correct"`
	MeanSteps       float64 `json:"mean_steps"`

	// Results holds the evaluations behind the point in seed order. Points
	// read back from the store leave it empty.
	Results []RunResult `json:"-"`
}

// Densities returns from, from+step, ... up to and including to. Values are
// computed by index and rounded to nine decimals so that accumulated
// floating-point error neither drops the upper bound nor prints as noise.
func Densities(from, to, step float64) []float64 {
	if step <= 0 || from > to {
		return nil
	}
	var out []float64
	for i := 0; ; i++ {
		d := math.Round((from+float64(i)*step)*1e9) / 1e9
		if d > to+constants.DensitySweepSlack {
			break
		}
		out = append(out, min(d, 1))
	}
	return out
}

// Sweep evaluates every density of sp. Run k at every density uses seed
// Model.Seed+k, so densities are compared on the same seeds. The first
// failing run cancels the rest.
func Sweep(ctx context.Context, sp SweepParams) ([]SweepPoint, error) {
	if err := sp.validate(); err != nil {
		return nil, err
	}
	if sp.Runs < 1 || sp.Workers < 1 {
		return nil, fmt.Errorf("%w: runs and workers must be at least 1, got %d and %d", ErrInvalidParams, sp.Runs, sp.Workers)
	}
	densities := Densities(sp.From, sp.To, sp.Step)
	if len(densities) == 0 {
		return nil, fmt.Errorf("%w: empty density range [%v, %v] step %v", ErrInvalidParams, sp.From, sp.To, sp.Step)
	}

	results := make([][]RunResult, len(densities))
	for i := range results {
		results[i] = make([]RunResult, sp.Runs)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sp.Workers)
	for i, d := range densities {
		for k := 0; k < sp.Runs; k++ {
			p := sp.Params
			p.InitialDensity = d
			seed := sp.Model.Seed + int64(k)
			g.Go(func() error {
				res, err := Evaluate(gCtx, p, seed)
				if err != nil {
					return fmt.Errorf("density %v seed %d: %w", d, seed, err)
				}
				results[i][k] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(densities))
	for i, d := range densities {
		points[i] = summarize(d, results[i])
	}
	return points, nil
}

func summarize(density float64, runs []RunResult) SweepPoint {
	pt := SweepPoint{Density: density, Runs: len(runs), Results: runs}
	steps := 0
	for _, r := range runs {
		if r.Correct {
			pt.Correct++
		}
		if r.Converged {
			pt.Converged++
		}
		steps += r.Steps
	}
	if len(runs) > 0 {
		pt.FractionCorrect = float64(pt.Correct) / float64(len(runs))
		pt.MeanSteps = float64(steps) / float64(len(runs))
	}
	return pt
}
