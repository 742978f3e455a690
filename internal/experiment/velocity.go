package experiment

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// VelocityParams describes the velocity experiment: Workers goroutines each
// evaluate RunsPerWorker models at Params.Model.Speed and
// Params.InitialDensity.
type VelocityParams struct {
	Params
	Workers       int `json:"workers"`
	RunsPerWorker int `json:"runs_per_worker"`
}

// VelocityReport holds the converged runs of a velocity experiment.
type VelocityReport struct {
	Speed     float64     `json:"speed"`
	Attempted int         `json:"attempted"`
	Results   []RunResult `json:"results"`
}

// Velocity runs the velocity experiment. Seeds are drawn from a shared
// SeedSource starting at Model.Seed; runs that hit MaxSteps without
// converging are dropped. Results are ordered by seed.
func Velocity(ctx context.Context, vp VelocityParams) (VelocityReport, error) {
	if err := vp.validate(); err != nil {
		return VelocityReport{}, err
	}
	if vp.Workers < 1 || vp.RunsPerWorker < 1 {
		return VelocityReport{}, fmt.Errorf("%w: workers and runs per worker must be at least 1, got %d and %d",
			ErrInvalidParams, vp.Workers, vp.RunsPerWorker)
	}

	seeds := NewSeedSource(vp.Model.Seed)
	var converged Collector[RunResult]

	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < vp.Workers; w++ {
		g.Go(func() error {
			for i := 0; i < vp.RunsPerWorker; i++ {
				res, err := Evaluate(gCtx, vp.Params, seeds.Next())
				if err != nil {
					return err
				}
				if res.Converged {
					converged.Add(res)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VelocityReport{}, err
	}

	results := converged.Items()
	slices.SortFunc(results, func(a, b RunResult) int { return cmp.Compare(a.Seed, b.Seed) })

	return VelocityReport{
		Speed:     vp.Model.Speed,
		Attempted: vp.Workers * vp.RunsPerWorker,
		Results:   results,
	}, nil
}
