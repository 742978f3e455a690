// Package model runs the density-classification simulation: a population of
// mobile agents, each holding a binary state, that repeatedly move, rebuild
// their proximity graph, and update their states with a local rule.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/wfvining/motion-ca/internal/agent"
	"github.com/wfvining/motion-ca/internal/geom"
	"github.com/wfvining/motion-ca/internal/logging"
	"github.com/wfvining/motion-ca/internal/movement"
	"github.com/wfvining/motion-ca/internal/network"
	"github.com/wfvining/motion-ca/internal/rule"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidConfig is returned by New and Config.Validate for configurations
// that would leave downstream metrics undefined.
var ErrInvalidConfig = errors.New("invalid model configuration")

// seedMix decorrelates the two PCG seed words.
const seedMix = 0x9e3779b97f4a7c15

// Config holds the construction parameters of a Model.
type Config struct {
	ArenaSize          float64 `json:"arena_size"`
	NumAgents          int     `json:"num_agents"`
	CommunicationRange float64 `json:"communication_range"`
	Seed               int64   `json:"seed"`
	InitialDensity     float64 `json:"initial_density"`
	Speed              float64 `json:"speed"`

	// SummaryOnly keeps per-timestep graph statistics but releases every
	// snapshot except the latest. Long sweeps use it to bound memory.
	SummaryOnly bool `json:"summary_only,omitempty"`

	// Logger receives construction events at debug and per-step events at
	// trace level. Nil discards.
	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns the standard experiment parameters.
func DefaultConfig() Config {
	return Config{
		ArenaSize:          100,
		NumAgents:          100,
		CommunicationRange: 5,
		Seed:               1234,
		InitialDensity:     0.5,
		Speed:              1,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects degenerate configurations.
func (c Config) Validate() error {
	switch {
	case c.NumAgents < 1:
		return fmt.Errorf("%w: num_agents must be at least 1, got %d", ErrInvalidConfig, c.NumAgents)
	case !finite(c.ArenaSize) || c.ArenaSize <= 0:
		return fmt.Errorf("%w: arena_size must be positive, got %v", ErrInvalidConfig, c.ArenaSize)
	case !finite(c.CommunicationRange) || c.CommunicationRange <= 0:
		return fmt.Errorf("%w: communication_range must be positive, got %v", ErrInvalidConfig, c.CommunicationRange)
	case !finite(c.InitialDensity) || c.InitialDensity < 0 || c.InitialDensity > 1:
		return fmt.Errorf("%w: initial_density must be in [0, 1], got %v", ErrInvalidConfig, c.InitialDensity)
	case !finite(c.Speed) || c.Speed < 0:
		return fmt.Errorf("%w: speed must be non-negative, got %v", ErrInvalidConfig, c.Speed)
	}
	return nil
}

// Model owns the agent population, their CA states and the run history.
// A Model is not safe for concurrent use.
type Model struct {
	cfg    Config
	agents []*agent.Agent
	states []rule.State
	rng    *rand.Rand
	turn   movement.TurnDistribution
	step   movement.StepDistribution
	stats  *Stats
	logger *slog.Logger

	scratch []rule.State
}

// New builds a population from cfg and records timestep 0.
//
// Agents are sampled in index order; for each agent the generator is drawn
// for x, y, heading and state, in that order. The generator is PCG
// (math/rand/v2) seeded with (seed, seed ^ 0x9e3779b97f4a7c15), so equal
// configurations always produce equal runs.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	seed := uint64(cfg.Seed)
	rng := rand.New(rand.NewPCG(seed, seed^seedMix))

	half := cfg.ArenaSize / 2
	coord := distuv.Uniform{Min: -half, Max: half, Src: rng}
	heading := distuv.Uniform{Min: 0, Max: geom.FullTurn, Src: rng}
	state := distuv.Bernoulli{P: cfg.InitialDensity, Src: rng}

	m := &Model{
		cfg:    cfg,
		agents: make([]*agent.Agent, cfg.NumAgents),
		states: make([]rule.State, cfg.NumAgents),
		rng:    rng,
		turn:   movement.UniformTurn(),
		step:   movement.ConstantStep(1),
		stats:  newStats(cfg.SummaryOnly),
		logger: logger,
	}

	for i := range m.agents {
		p := geom.Point{X: coord.Rand(), Y: coord.Rand()}
		h := geom.NewHeading(heading.Rand())
		a, err := agent.New(p, h, cfg.Speed, cfg.ArenaSize)
		if err != nil {
			return nil, fmt.Errorf("creating agent %d: %w", i, err)
		}
		m.agents[i] = a
		m.states[i] = rule.State(state.Rand())
	}

	m.stats.Push(m.CurrentDensity(), m.CurrentNetwork())

	logger.Debug("model created",
		"agents", cfg.NumAgents,
		"arena", cfg.ArenaSize,
		"range", cfg.CommunicationRange,
		"seed", cfg.Seed,
		"speed", cfg.Speed,
		"density", m.CurrentDensity())

	return m, nil
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config {
	return m.cfg
}

// CurrentDensity returns the fraction of agents in state 1.
func (m *Model) CurrentDensity() float64 {
	ones := 0
	for _, s := range m.states {
		ones += int(s)
	}
	return float64(ones) / float64(len(m.states))
}

// CurrentNetwork builds the proximity graph for the current positions: i and
// j are adjacent iff their distance is at most the communication range.
func (m *Model) CurrentNetwork() *network.Snapshot {
	s := network.NewSnapshot(len(m.agents))
	for i := 0; i < len(m.agents); i++ {
		pi := m.agents[i].Position()
		for j := i + 1; j < len(m.agents); j++ {
			if pi.Within(m.cfg.CommunicationRange, m.agents[j].Position()) {
				if err := s.AddEdge(i, j); err != nil {
					panic(fmt.Sprintf("model: building network: %v", err))
				}
			}
		}
	}
	return s
}

// Step advances the simulation one timestep using r:
// every agent moves (turning when its run ends), the network is rebuilt
// from the new positions, and all agents update synchronously from the
// previous state vector.
func (m *Model) Step(r rule.Rule) {
	for _, a := range m.agents {
		a.Step()
		if a.ShouldTurn() {
			if !a.Turn(m.rng) {
				a.SetHeading(a.Heading().Add(geom.NewHeading(m.turn(m.rng))))
			}
			a.SetUpdateInterval(m.step(m.rng))
		}
	}

	snapshot := m.CurrentNetwork()
	next := make([]rule.State, len(m.states))
	for i := range m.states {
		neighbors, err := snapshot.Neighbors(i)
		if err != nil {
			panic(fmt.Sprintf("model: neighbours of %d: %v", i, err))
		}
		m.scratch = m.scratch[:0]
		for _, n := range neighbors {
			m.scratch = append(m.scratch, m.states[n])
		}
		next[i] = r.Apply(m.states[i], m.scratch)
	}
	m.states = next

	density := m.CurrentDensity()
	m.stats.Push(density, snapshot)

	if m.logger.Enabled(context.Background(), logging.LevelTrace) {
		m.logger.Log(context.Background(), logging.LevelTrace, "step",
			"t", m.stats.Elapsed()-1,
			"density", density,
			"edges", snapshot.EdgeCount())
	}
}

// Stats returns the run history.
func (m *Model) Stats() *Stats {
	return m.stats
}

// Elapsed returns the number of recorded timesteps, including timestep 0.
func (m *Model) Elapsed() int {
	return m.stats.Elapsed()
}

// States returns a copy of the agent state vector, index-aligned with Agents.
func (m *Model) States() []rule.State {
	out := make([]rule.State, len(m.states))
	copy(out, m.states)
	return out
}

// Agents returns independent copies of the agents.
func (m *Model) Agents() []*agent.Agent {
	out := make([]*agent.Agent, len(m.agents))
	for i, a := range m.agents {
		out[i] = a.Clone()
	}
	return out
}

// Positions returns the current agent positions.
func (m *Model) Positions() []geom.Point {
	out := make([]geom.Point, len(m.agents))
	for i, a := range m.agents {
		out[i] = a.Position()
	}
	return out
}

// SetMovementRule gives every agent its own copy of r. A nil rule returns
// turning to the model's turn distribution.
func (m *Model) SetMovementRule(r movement.MovementRule) {
	for _, a := range m.agents {
		if r == nil {
			a.SetMovementRule(nil)
			continue
		}
		a.SetMovementRule(r.Clone())
	}
}

// SetTurnDistribution makes d the source of heading perturbations for all
// agents, replacing any installed movement rule.
func (m *Model) SetTurnDistribution(d movement.TurnDistribution) {
	m.turn = d
	m.SetMovementRule(nil)
}

// SetStepDistribution makes d the source of run lengths and immediately
// redraws every agent's current update interval from it.
func (m *Model) SetStepDistribution(d movement.StepDistribution) {
	m.step = d
	for _, a := range m.agents {
		a.SetUpdateInterval(d(m.rng))
	}
}

// SetRegime installs the movement rule and step distribution of reg. A Lévy
// regime without MaxStep uses the arena size.
func (m *Model) SetRegime(reg movement.Regime) error {
	if reg.Kind == movement.KindLevy && reg.MaxStep == 0 {
		reg.MaxStep = max(1, int(m.cfg.ArenaSize))
	}
	r, step, err := reg.Build()
	if err != nil {
		return fmt.Errorf("setting movement regime: %w", err)
	}
	m.SetMovementRule(r)
	m.SetStepDistribution(step)
	m.logger.Debug("movement regime set", "regime", reg.String())
	return nil
}
