package movement

import (
	"math/rand/v2"

	"github.com/wfvining/motion-ca/internal/geom"
)

// MovementRule decides an agent's new heading when its run ends.
// Each agent owns its own copy (see Clone), so rules may keep per-agent state.
type MovementRule interface {
	Turn(pos geom.Point, h geom.Heading, rng *rand.Rand) geom.Heading
	Clone() MovementRule
}

// RandomWalk picks a uniformly random new heading at every turn.
type RandomWalk struct{}

func (RandomWalk) Turn(_ geom.Point, h geom.Heading, rng *rand.Rand) geom.Heading {
	return h.Add(geom.NewHeading(UniformTurn()(rng)))
}

func (r RandomWalk) Clone() MovementRule { return r }

// CorrelatedRandomWalk perturbs the current heading by a wrapped Cauchy
// variate. Concentration must lie in [0, 1).
type CorrelatedRandomWalk struct {
	Concentration float64
}

// NewCorrelatedRandomWalk validates the concentration and returns the rule.
func NewCorrelatedRandomWalk(concentration float64) (CorrelatedRandomWalk, error) {
	if _, err := WrappedCauchyTurn(concentration); err != nil {
		return CorrelatedRandomWalk{}, err
	}
	return CorrelatedRandomWalk{Concentration: concentration}, nil
}

func (c CorrelatedRandomWalk) Turn(_ geom.Point, h geom.Heading, rng *rand.Rand) geom.Heading {
	return h.Add(geom.NewHeading(wrappedCauchy(rng, c.Concentration)))
}

func (c CorrelatedRandomWalk) Clone() MovementRule { return c }

// TurnBy adds a draw from Dist to the current heading.
type TurnBy struct {
	Dist TurnDistribution
}

func (t TurnBy) Turn(_ geom.Point, h geom.Heading, rng *rand.Rand) geom.Heading {
	return h.Add(geom.NewHeading(t.Dist(rng)))
}

func (t TurnBy) Clone() MovementRule { return t }
