// Package config provides unified configuration loading for motion-ca.
// It supports loading from YAML or TOML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wfvining/motion-ca/internal/constants"
	"github.com/wfvining/motion-ca/internal/logging"
	"github.com/wfvining/motion-ca/internal/model"
	"github.com/wfvining/motion-ca/internal/movement"
	"github.com/wfvining/motion-ca/internal/rule"
	"gopkg.in/yaml.v3"
)

// Config contains all motion-ca configuration settings.
type Config struct {
	// Simulation describes the population, arena and rule.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation" toml:"simulation"`

	// Movement selects how agents turn and how long they run between turns.
	Movement MovementConfig `json:"movement" yaml:"movement" toml:"movement"`

	// Sweep controls the batch experiments.
	Sweep SweepConfig `json:"sweep" yaml:"sweep" toml:"sweep"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging" toml:"logging"`

	// Storage locates the result database and event log.
	Storage StorageConfig `json:"storage" yaml:"storage" toml:"storage"`
}

// SimulationConfig holds the per-model parameters.
type SimulationConfig struct {
	ArenaSize          float64 `json:"arena_size" yaml:"arena_size" toml:"arena_size"`
	NumAgents          int     `json:"num_agents" yaml:"num_agents" toml:"num_agents"`
	CommunicationRange float64 `json:"communication_range" yaml:"communication_range" toml:"communication_range"`
	Seed               int64   `json:"seed" yaml:"seed" toml:"seed"`
	Speed              float64 `json:"speed" yaml:"speed" toml:"speed"`
	InitialDensity     float64 `json:"initial_density" yaml:"initial_density" toml:"initial_density"`

	// MaxSteps bounds each evaluation that does not converge.
	MaxSteps int `json:"max_steps" yaml:"max_steps" toml:"max_steps"`

	// Rule names a registered CA rule: "majority", "identity", "one", "zero".
	Rule string `json:"rule" yaml:"rule" toml:"rule"`

	// Record is "full" to keep every network snapshot or "summary" to keep
	// only per-step statistics.
	Record constants.RecordMode `json:"record" yaml:"record" toml:"record"`
}

// MovementConfig selects the movement regime.
type MovementConfig struct {
	// Regime is "random", "correlated" or "levy".
	Regime string `json:"regime" yaml:"regime" toml:"regime"`

	// Mu is the Lévy exponent (levy only).
	Mu float64 `json:"mu" yaml:"mu" toml:"mu"`

	// Concentration is the wrapped Cauchy concentration in [0, 1) (correlated only).
	Concentration float64 `json:"concentration" yaml:"concentration" toml:"concentration"`

	// MaxStep bounds Lévy run lengths. Zero means the arena size.
	MaxStep int `json:"max_step,omitempty" yaml:"max_step,omitempty" toml:"max_step,omitempty"`
}

// SweepConfig controls density sweeps and the velocity experiment.
type SweepConfig struct {
	From float64 `json:"from" yaml:"from" toml:"from"`
	To   float64 `json:"to" yaml:"to" toml:"to"`
	Step float64 `json:"step" yaml:"step" toml:"step"`

	// Runs is the number of evaluations per density.
	Runs int `json:"runs" yaml:"runs" toml:"runs"`

	// Workers bounds concurrent evaluations.
	Workers int `json:"workers" yaml:"workers" toml:"workers"`

	// RunsPerWorker is the velocity experiment's per-worker evaluation count.
	RunsPerWorker int `json:"runs_per_worker" yaml:"runs_per_worker" toml:"runs_per_worker"`
}

// LoggingConfig configures motion-ca's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to events.jsonl.
	// "trace" additionally logs every simulation step.
	Level string `json:"level" yaml:"level" toml:"level"`
}

// StorageConfig configures where results are kept.
type StorageConfig struct {
	// DataDir holds the result database and event log. Empty means ~/.motionca.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" toml:"data_dir,omitempty"`
}

// Default returns a Config with the reference experiment parameters.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			ArenaSize:          constants.DefaultArenaSize,
			NumAgents:          constants.DefaultNumAgents,
			CommunicationRange: constants.DefaultCommunicationRange,
			Seed:               constants.DefaultSeed,
			Speed:              constants.DefaultSpeed,
			InitialDensity:     constants.DefaultInitialDensity,
			MaxSteps:           constants.DefaultMaxSteps,
			Rule:               "majority",
			Record:             constants.RecordFull,
		},
		Movement: MovementConfig{
			Regime:        string(movement.KindRandom),
			Mu:            constants.DefaultLevyMu,
			Concentration: constants.DefaultConcentration,
		},
		Sweep: SweepConfig{
			From:          0,
			To:            1,
			Step:          constants.DefaultDensityStep,
			Runs:          constants.DefaultSweepRuns,
			Workers:       constants.DefaultWorkers,
			RunsPerWorker: constants.DefaultRunsPerWorker,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.motionca/config.yaml (or config.toml) -> environment variables
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		dir := filepath.Join(homeDir, constants.DataDirName)
		for _, name := range []string{"config.yaml", "config.toml"} {
			configPath := filepath.Join(dir, name)
			if _, statErr := os.Stat(configPath); statErr != nil {
				continue
			}
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
			break
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific file. Files ending in
// .toml are decoded as TOML; everything else as YAML. Unset keys keep
// their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Storage.DataDir = expandEnvVars(config.Storage.DataDir)

	return config, nil
}

// LoadWithOverrides loads path if non-empty, otherwise the default
// locations, and applies environment overrides either way.
func LoadWithOverrides(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.ModelConfig(c.Simulation.InitialDensity).Validate(); err != nil {
		return err
	}

	if c.Simulation.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1, got %d", c.Simulation.MaxSteps)
	}

	if _, err := rule.Lookup(c.Simulation.Rule); err != nil {
		return err
	}

	if !c.Simulation.Record.Valid() {
		return fmt.Errorf("invalid record mode: %s (valid: full, summary)", c.Simulation.Record)
	}

	reg, err := c.Regime()
	if err != nil {
		return err
	}
	if reg.Kind == movement.KindLevy && reg.MaxStep == 0 {
		reg.MaxStep = max(1, int(c.Simulation.ArenaSize))
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	if c.Sweep.Step <= 0 {
		return fmt.Errorf("sweep step must be positive, got %v", c.Sweep.Step)
	}
	if c.Sweep.From < 0 || c.Sweep.To > 1 || c.Sweep.From > c.Sweep.To {
		return fmt.Errorf("sweep range must satisfy 0 <= from <= to <= 1, got [%v, %v]", c.Sweep.From, c.Sweep.To)
	}
	if c.Sweep.Runs < 1 {
		return fmt.Errorf("sweep runs must be at least 1, got %d", c.Sweep.Runs)
	}
	if c.Sweep.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Sweep.Workers)
	}
	if c.Sweep.RunsPerWorker < 1 {
		return fmt.Errorf("runs_per_worker must be at least 1, got %d", c.Sweep.RunsPerWorker)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ModelConfig converts the simulation section into a model configuration
// with the given initial density.
func (c *Config) ModelConfig(initialDensity float64) model.Config {
	return model.Config{
		ArenaSize:          c.Simulation.ArenaSize,
		NumAgents:          c.Simulation.NumAgents,
		CommunicationRange: c.Simulation.CommunicationRange,
		Seed:               c.Simulation.Seed,
		InitialDensity:     initialDensity,
		Speed:              c.Simulation.Speed,
		SummaryOnly:        c.Simulation.Record == constants.RecordSummary,
	}
}

// Regime converts the movement section into a movement regime.
func (c *Config) Regime() (movement.Regime, error) {
	kind, err := movement.ParseKind(c.Movement.Regime)
	if err != nil {
		return movement.Regime{}, err
	}
	return movement.Regime{
		Kind:          kind,
		Mu:            c.Movement.Mu,
		Concentration: c.Movement.Concentration,
		MaxStep:       c.Movement.MaxStep,
	}, nil
}

// DataDir returns the directory holding results and event logs.
func (c *Config) DataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, constants.DataDirName)
	}
	return constants.DataDirName
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numeric values are ignored.
func applyEnvOverrides(config *Config) {
	envInt("MOTIONCA_AGENTS", &config.Simulation.NumAgents)
	envFloat("MOTIONCA_ARENA", &config.Simulation.ArenaSize)
	envFloat("MOTIONCA_RANGE", &config.Simulation.CommunicationRange)
	envFloat("MOTIONCA_SPEED", &config.Simulation.Speed)
	envFloat("MOTIONCA_DENSITY", &config.Simulation.InitialDensity)
	envInt("MOTIONCA_MAX_STEPS", &config.Simulation.MaxSteps)
	envInt("MOTIONCA_WORKERS", &config.Sweep.Workers)
	envFloat("MOTIONCA_MU", &config.Movement.Mu)
	envFloat("MOTIONCA_CONCENTRATION", &config.Movement.Concentration)

	if v := os.Getenv("MOTIONCA_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv("MOTIONCA_RULE"); v != "" {
		config.Simulation.Rule = v
	}

	if v := os.Getenv("MOTIONCA_REGIME"); v != "" {
		config.Movement.Regime = v
	}

	if v := os.Getenv("MOTIONCA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("MOTIONCA_DATA_DIR"); v != "" {
		config.Storage.DataDir = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
