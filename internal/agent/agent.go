// Package agent implements a mobile point agent moving at constant speed in a
// square arena centred on the origin, bouncing off the walls.
package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wfvining/motion-ca/internal/geom"
	"github.com/wfvining/motion-ca/internal/movement"
)

var (
	// ErrInvalidSpeed is returned for a negative or non-finite speed.
	ErrInvalidSpeed = errors.New("invalid agent speed")

	// ErrInvalidArena is returned for a non-positive or non-finite arena size.
	ErrInvalidArena = errors.New("invalid arena size")
)

// Agent is a point that moves at a fixed speed along its heading.
//
// The arena is the closed square [-size/2, size/2]². When a step would leave
// it the agent is reflected once per axis; displacements larger than the arena
// itself are not folded back a second time.
type Agent struct {
	position  geom.Point
	heading   geom.Heading
	speed     float64
	arenaSize float64

	updateInterval int
	ticksSinceTurn int
	rule           movement.MovementRule
}

// New validates the kinematic parameters and returns an agent with an update
// interval of one tick.
func New(p geom.Point, h geom.Heading, speed, arenaSize float64) (*Agent, error) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	if math.IsNaN(arenaSize) || math.IsInf(arenaSize, 0) || arenaSize <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArena, arenaSize)
	}
	return &Agent{
		position:       p,
		heading:        h,
		speed:          speed,
		arenaSize:      arenaSize,
		updateInterval: 1,
	}, nil
}

func (a *Agent) Position() geom.Point  { return a.position }
func (a *Agent) Heading() geom.Heading { return a.heading }
func (a *Agent) Speed() float64        { return a.speed }
func (a *Agent) ArenaSize() float64    { return a.arenaSize }
func (a *Agent) UpdateInterval() int   { return a.updateInterval }

// SetHeading replaces the agent's heading.
func (a *Agent) SetHeading(h geom.Heading) {
	a.heading = h
}

// SetUpdateInterval sets the number of ticks until the next turn and restarts
// the countdown. Intervals below one are raised to one.
func (a *Agent) SetUpdateInterval(n int) {
	if n < 1 {
		n = 1
	}
	a.updateInterval = n
	a.ticksSinceTurn = 0
}

// ShouldTurn advances the turn countdown by one tick and reports whether the
// current run has ended. A true result restarts the countdown.
func (a *Agent) ShouldTurn() bool {
	a.ticksSinceTurn++
	if a.ticksSinceTurn >= a.updateInterval {
		a.ticksSinceTurn = 0
		return true
	}
	return false
}

// SetMovementRule installs r; a nil rule leaves turning to the caller.
func (a *Agent) SetMovementRule(r movement.MovementRule) {
	a.rule = r
}

// MovementRule returns the installed rule, or nil.
func (a *Agent) MovementRule() movement.MovementRule {
	return a.rule
}

// Turn applies the agent's movement rule. It reports false when no rule is installed.
func (a *Agent) Turn(rng *rand.Rand) bool {
	if a.rule == nil {
		return false
	}
	a.heading = a.rule.Turn(a.position, a.heading, rng)
	return true
}

// Step moves the agent one tick along its heading.
func (a *Agent) Step() {
	dx, dy := a.heading.Unit()
	next := a.position.Add(a.speed*dx, a.speed*dy)
	if a.outOfBounds(next) {
		next = a.reflect(next)
	}
	a.position = next
}

func (a *Agent) outOfBounds(p geom.Point) bool {
	half := a.arenaSize / 2
	return p.X < -half || p.X > half || p.Y < -half || p.Y > half
}

// reflect mirrors p across each wall it crossed. Both axes are judged against
// the tentative point.
func (a *Agent) reflect(p geom.Point) geom.Point {
	half := a.arenaSize / 2
	x, y := p.X, p.Y

	if p.X > half {
		x = half - (p.X - half)
		a.heading = geom.NewHeading(math.Pi).Sub(a.heading)
	} else if p.X < -half {
		x = -half - (p.X + half)
		a.heading = geom.NewHeading(math.Pi).Sub(a.heading)
	}

	if p.Y > half {
		y = half - (p.Y - half)
		a.heading = geom.NewHeading(geom.FullTurn).Sub(a.heading)
	} else if p.Y < -half {
		y = -half - (p.Y + half)
		a.heading = geom.NewHeading(geom.FullTurn).Sub(a.heading)
	}

	return geom.Point{X: x, Y: y}
}

// Clone returns an independent copy of the agent, including its countdown.
// The movement rule is cloned as well.
func (a *Agent) Clone() *Agent {
	cp := *a
	if a.rule != nil {
		cp.rule = a.rule.Clone()
	}
	return &cp
}
