package movement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRegime is returned for an unrecognized regime name.
var ErrUnknownRegime = errors.New("unknown movement regime")

// Kind names a movement regime.
type Kind string

const (
	KindRandom     Kind = "random"
	KindCorrelated Kind = "correlated"
	KindLevy       Kind = "levy"
)

// ParseKind maps a case-insensitive name to a Kind.
// The empty string selects the random walk.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random", "random-walk":
		return KindRandom, nil
	case "correlated", "crw":
		return KindCorrelated, nil
	case "levy", "levy-flight":
		return KindLevy, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: random, correlated, levy)", ErrUnknownRegime, s)
	}
}

// Regime bundles the parameters of one movement regime.
type Regime struct {
	Kind Kind `json:"kind"`

	// Mu is the Lévy exponent (levy only).
	Mu float64 `json:"mu,omitempty"`

	// Concentration is the wrapped Cauchy concentration (correlated only).
	Concentration float64 `json:"concentration,omitempty"`

	// MaxStep bounds Lévy run lengths; drivers usually pass the arena size.
	MaxStep int `json:"max_step,omitempty"`
}

// Validate checks the parameters relevant to the regime's kind.
func (r Regime) Validate() error {
	_, _, err := r.Build()
	return err
}

// Build returns the movement rule and step distribution for the regime.
func (r Regime) Build() (MovementRule, StepDistribution, error) {
	switch r.Kind {
	case KindRandom, "":
		return RandomWalk{}, ConstantStep(1), nil
	case KindCorrelated:
		crw, err := NewCorrelatedRandomWalk(r.Concentration)
		if err != nil {
			return nil, nil, err
		}
		return crw, ConstantStep(1), nil
	case KindLevy:
		step, err := LevyStep(r.Mu, r.MaxStep)
		if err != nil {
			return nil, nil, err
		}
		return TurnBy{Dist: UniformTurn()}, step, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownRegime, r.Kind)
	}
}

func (r Regime) String() string {
	switch r.Kind {
	case KindCorrelated:
		return fmt.Sprintf("correlated(rho=%g)", r.Concentration)
	case KindLevy:
		return fmt.Sprintf("levy(mu=%g, max=%d)", r.Mu, r.MaxStep)
	default:
		return "random"
	}
}
