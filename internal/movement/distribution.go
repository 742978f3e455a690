// Package movement defines how agents pick new headings and how long they
// keep them: turn distributions, step-interval distributions, and the
// movement rules built from them.
package movement

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wfvining/motion-ca/internal/geom"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter is returned when a distribution is configured with
// parameters outside its domain.
var ErrInvalidParameter = errors.New("invalid movement parameter")

// TurnDistribution draws a heading perturbation in radians.
type TurnDistribution func(rng *rand.Rand) float64

// StepDistribution draws the number of ticks an agent keeps its heading.
// Implementations return values >= 1.
type StepDistribution func(rng *rand.Rand) int

// UniformTurn draws uniformly from [0, 2π).
func UniformTurn() TurnDistribution {
	return func(rng *rand.Rand) float64 {
		return distuv.Uniform{Min: 0, Max: geom.FullTurn, Src: rng}.Rand()
	}
}

// WrappedCauchyTurn draws from a wrapped Cauchy distribution centred on zero
// with concentration rho. rho = 0 is uniform on the circle and values close to
// 1 keep the agent on its current heading.
func WrappedCauchyTurn(rho float64) (TurnDistribution, error) {
	if math.IsNaN(rho) || rho < 0 || rho >= 1 {
		return nil, fmt.Errorf("%w: concentration %v not in [0, 1)", ErrInvalidParameter, rho)
	}
	return func(rng *rand.Rand) float64 {
		return wrappedCauchy(rng, rho)
	}, nil
}

func wrappedCauchy(rng *rand.Rand, rho float64) float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: rng}.Rand()
	return 2 * math.Atan((1-rho)/(1+rho)*math.Tan(math.Pi*(u-0.5)))
}

// ConstantStep always returns n. Values below 1 are raised to 1.
func ConstantStep(n int) StepDistribution {
	if n < 1 {
		n = 1
	}
	return func(*rand.Rand) int {
		return n
	}
}

// LevyStep draws run lengths from the power-law transform of a uniform variate:
//
//	round(((maxStep^(mu+1) - 1)·u + 1)^(1/(mu+1)))
//
// which lies in [1, maxStep].
func LevyStep(mu float64, maxStep int) (StepDistribution, error) {
	if math.IsNaN(mu) || math.IsInf(mu, 0) || mu == -1 {
		return nil, fmt.Errorf("%w: levy exponent %v", ErrInvalidParameter, mu)
	}
	if maxStep < 1 {
		return nil, fmt.Errorf("%w: levy max step %d", ErrInvalidParameter, maxStep)
	}
	k := mu + 1
	top := math.Pow(float64(maxStep), k) - 1
	return func(rng *rand.Rand) int {
		u := distuv.Uniform{Min: 0, Max: 1, Src: rng}.Rand()
		n := int(math.Round(math.Pow(top*u+1, 1/k)))
		if n < 1 {
			return 1
		}
		return n
	}, nil
}
