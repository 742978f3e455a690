// Package mcp provides an MCP (Model Context Protocol) server for motion-ca.
package mcp

import (
	"github.com/wfvining/motion-ca/internal/experiment"
	"github.com/wfvining/motion-ca/internal/store"
)

// SimulationInput holds the model parameters shared by the simulation tools.
// Zero values fall back to the server's configuration.
type SimulationInput struct {
	Agents        int      `json:"agents,omitempty" jsonschema:"Number of agents"`
	Arena         float64  `json:"arena,omitempty" jsonschema:"Side length of the square arena"`
	Range         float64  `json:"range,omitempty" jsonschema:"Communication range; agents within it are neighbours"`
	Speed         *float64 `json:"speed,omitempty" jsonschema:"Distance travelled per step (may be 0)"`
	Seed          *int64   `json:"seed,omitempty" jsonschema:"Base random seed"`
	MaxSteps      int      `json:"max_steps,omitempty" jsonschema:"Step limit for runs that do not converge"`
	Rule          string   `json:"rule,omitempty" jsonschema:"CA rule: majority, identity, one or zero"`
	Regime        string   `json:"regime,omitempty" jsonschema:"Movement regime: random, correlated or levy"`
	Mu            float64  `json:"mu,omitempty" jsonschema:"Levy exponent (levy regime)"`
	Concentration float64  `json:"concentration,omitempty" jsonschema:"Wrapped Cauchy concentration in [0, 1) (correlated regime)"`
	Save          bool     `json:"save,omitempty" jsonschema:"Store the result in the results database"`
}

// RunInput defines the input for the motionca_run tool.
type RunInput struct {
	SimulationInput
	Density *float64 `json:"density,omitempty" jsonschema:"Initial fraction of agents in state 1"`
}

// RunOutput defines the output for the motionca_run tool.
type RunOutput struct {
	Result  experiment.RunResult `json:"result" jsonschema:"Summary of the evaluation"`
	Regime  string               `json:"regime" jsonschema:"Movement regime used"`
	BatchID int64                `json:"batch_id,omitempty" jsonschema:"Stored batch ID when save was requested"`
}

// SweepInput defines the input for the motionca_sweep tool.
type SweepInput struct {
	SimulationInput
	From    *float64 `json:"from,omitempty" jsonschema:"First initial density"`
	To      *float64 `json:"to,omitempty" jsonschema:"Last initial density"`
	Step    float64  `json:"step,omitempty" jsonschema:"Density increment"`
	Runs    int      `json:"runs,omitempty" jsonschema:"Evaluations per density"`
	Workers int      `json:"workers,omitempty" jsonschema:"Concurrent evaluations"`
}

// SweepOutput defines the output for the motionca_sweep tool.
type SweepOutput struct {
	Points  []experiment.SweepPoint `json:"points" jsonschema:"Fraction correct per initial density"`
	Regime  string                  `json:"regime" jsonschema:"Movement regime used"`
	BatchID int64                   `json:"batch_id,omitempty" jsonschema:"Stored batch ID when save was requested"`
}

// ResultsInput defines the input for the motionca_results tool.
type ResultsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to return (default 20)"`
}

// ResultsOutput defines the output for the motionca_results tool.
type ResultsOutput struct {
	Runs  []store.RunRecord `json:"runs" jsonschema:"Stored runs, newest first"`
	Count int               `json:"count" jsonschema:"Number of runs returned"`
}
