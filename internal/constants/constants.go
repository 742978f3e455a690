// Package constants provides named defaults used throughout motion-ca.
// This centralizes the parameters of the reference experiments.
package constants

// Population and arena defaults.
const (
	// DefaultArenaSize is the side length of the square arena.
	DefaultArenaSize = 100.0

	// DefaultNumAgents is the population size.
	DefaultNumAgents = 100

	// DefaultCommunicationRange is the inclusive distance within which two
	// agents are neighbours.
	DefaultCommunicationRange = 5.0

	// DefaultSeed is the base seed; sweeps derive per-run seeds from it.
	DefaultSeed = 1234

	// DefaultSpeed is the distance an agent travels per timestep.
	DefaultSpeed = 1.0

	// DefaultInitialDensity is the expected fraction of agents starting in state 1.
	DefaultInitialDensity = 0.5
)

// Run limits.
const (
	// DefaultMaxSteps bounds a single evaluation when it does not converge.
	DefaultMaxSteps = 5000

	// DefaultRunSteps is the number of steps the run command takes.
	DefaultRunSteps = 100
)

// Movement defaults.
const (
	// DefaultLevyMu is the Lévy exponent used by the velocity experiment.
	DefaultLevyMu = 1.2

	// DefaultConcentration is the wrapped Cauchy concentration for
	// correlated random walks.
	DefaultConcentration = 0.9
)

// Experiment defaults.
const (
	// DefaultWorkers is the number of concurrent evaluations.
	DefaultWorkers = 10

	// DefaultRunsPerWorker is the number of evaluations each velocity worker runs.
	DefaultRunsPerWorker = 10

	// DefaultSweepRuns is the number of evaluations per density in a sweep.
	DefaultSweepRuns = 1

	// DefaultDensityStep is the increment between sweep densities.
	DefaultDensityStep = 0.01

	// DensitySweepSlack lets a float-accumulated sweep still include its
	// upper bound.
	DensitySweepSlack = 0.001
)

// Convergence thresholds recorded by the velocity experiment.
var ConvergenceThresholds = []float64{0.8, 0.9, 0.95}

// Rate limits for the MCP tools, in calls per minute.
const (
	// RunToolRate limits motionca_run.
	RunToolRate = 60

	// SweepToolRate limits motionca_sweep.
	SweepToolRate = 6
)

// Storage.
const (
	// DataDirName is the directory under the user's home holding config,
	// results and event logs.
	DataDirName = ".motionca"

	// DatabaseFile is the SQLite result store inside the data directory.
	DatabaseFile = "motionca.db"

	// EventLogFile is the JSONL event log inside the data directory.
	EventLogFile = "events.jsonl"
)
