package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/wfvining/motion-ca/internal/config"
	"github.com/wfvining/motion-ca/internal/experiment"
	"github.com/wfvining/motion-ca/internal/ratelimit"
	"github.com/wfvining/motion-ca/internal/store"
)

const defaultResultsLimit = 20

// registerTools registers all motion-ca tools with the MCP server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "motionca_run",
		Description: "Run one density-classification simulation and report whether the population classified its initial density",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "motionca_sweep",
		Description: "Sweep initial densities and report the fraction of runs classified correctly at each",
	}, s.handleSweep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "motionca_results",
		Description: "List stored simulation runs, newest first",
	}, s.handleResults)
}

// auditTool records a tool call in the event log and at debug level.
func (s *Server) auditTool(tool string, start time.Time, err error) {
	status := "success"
	fields := map[string]any{
		"tool":        tool,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		status = "error"
		fields["error"] = err.Error()
	}
	fields["status"] = status
	s.events.Log("tool_call", fields)
	s.logger.Debug("tool call", "tool", tool, "status", status, "duration", time.Since(start))
}

// resolve overlays the non-zero fields of in onto the server defaults.
func (s *Server) resolve(in SimulationInput) (*config.Config, error) {
	cfg := *s.defaults
	if in.Agents > 0 {
		cfg.Simulation.NumAgents = in.Agents
	}
	if in.Arena > 0 {
		cfg.Simulation.ArenaSize = in.Arena
	}
	if in.Range > 0 {
		cfg.Simulation.CommunicationRange = in.Range
	}
	if in.Speed != nil {
		cfg.Simulation.Speed = *in.Speed
	}
	if in.Seed != nil {
		cfg.Simulation.Seed = *in.Seed
	}
	if in.MaxSteps > 0 {
		cfg.Simulation.MaxSteps = in.MaxSteps
	}
	if in.Rule != "" {
		cfg.Simulation.Rule = in.Rule
	}
	if in.Regime != "" {
		cfg.Movement.Regime = in.Regime
	}
	if in.Mu != 0 {
		cfg.Movement.Mu = in.Mu
	}
	if in.Concentration != 0 {
		cfg.Movement.Concentration = in.Concentration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// handleRun implements the motionca_run tool.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, _ RunOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("motionca_run", start, retErr) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "motionca_run"); err != nil {
		return nil, RunOutput{}, err
	}

	if args.Density != nil {
		d := *args.Density
		if d < 0 || d > 1 {
			return nil, RunOutput{}, fmt.Errorf("density must be in [0, 1], got %v", d)
		}
	}

	cfg, err := s.resolve(args.SimulationInput)
	if err != nil {
		return nil, RunOutput{}, err
	}
	density := cfg.Simulation.InitialDensity
	if args.Density != nil {
		density = *args.Density
	}

	p, err := experiment.ParamsFromConfig(cfg, density, s.events)
	if err != nil {
		return nil, RunOutput{}, err
	}
	res, err := experiment.Evaluate(ctx, p, p.Model.Seed)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("running simulation: %w", err)
	}

	out := RunOutput{Result: res, Regime: p.Regime.String()}
	if args.Save {
		if s.store == nil {
			return nil, RunOutput{}, ErrNoStore
		}
		if out.BatchID, err = s.store.SaveRun(ctx, p, res); err != nil {
			return nil, RunOutput{}, fmt.Errorf("saving run: %w", err)
		}
	}
	return nil, out, nil
}

// handleSweep implements the motionca_sweep tool.
func (s *Server) handleSweep(ctx context.Context, req *sdk.CallToolRequest, args SweepInput) (_ *sdk.CallToolResult, _ SweepOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("motionca_sweep", start, retErr) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "motionca_sweep"); err != nil {
		return nil, SweepOutput{}, err
	}

	cfg, err := s.resolve(args.SimulationInput)
	if err != nil {
		return nil, SweepOutput{}, err
	}
	if args.From != nil {
		cfg.Sweep.From = *args.From
	}
	if args.To != nil {
		cfg.Sweep.To = *args.To
	}
	if args.Step > 0 {
		cfg.Sweep.Step = args.Step
	}
	if args.Runs > 0 {
		cfg.Sweep.Runs = args.Runs
	}
	if args.Workers > 0 {
		cfg.Sweep.Workers = args.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, SweepOutput{}, err
	}

	sp, err := experiment.SweepParamsFromConfig(cfg, s.events)
	if err != nil {
		return nil, SweepOutput{}, err
	}
	points, err := experiment.Sweep(ctx, sp)
	if err != nil {
		return nil, SweepOutput{}, fmt.Errorf("running sweep: %w", err)
	}

	out := SweepOutput{Points: points, Regime: sp.Regime.String()}
	if args.Save {
		if s.store == nil {
			return nil, SweepOutput{}, ErrNoStore
		}
		if out.BatchID, err = s.store.SaveSweep(ctx, sp, points); err != nil {
			return nil, SweepOutput{}, fmt.Errorf("saving sweep: %w", err)
		}
	}
	return nil, out, nil
}

// handleResults implements the motionca_results tool.
func (s *Server) handleResults(ctx context.Context, req *sdk.CallToolRequest, args ResultsInput) (_ *sdk.CallToolResult, _ ResultsOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("motionca_results", start, retErr) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "motionca_results"); err != nil {
		return nil, ResultsOutput{}, err
	}
	if s.store == nil {
		return nil, ResultsOutput{}, ErrNoStore
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultResultsLimit
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, ResultsOutput{}, err
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	return nil, ResultsOutput{Runs: runs, Count: len(runs)}, nil
}
