package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wfvining/motion-ca/internal/constants"
	"github.com/wfvining/motion-ca/internal/model"
	"github.com/wfvining/motion-ca/internal/movement"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Simulation.NumAgents != 100 {
		t.Errorf("expected NumAgents 100, got %d", config.Simulation.NumAgents)
	}
	if config.Simulation.ArenaSize != 100 {
		t.Errorf("expected ArenaSize 100, got %v", config.Simulation.ArenaSize)
	}
	if config.Simulation.CommunicationRange != 5 {
		t.Errorf("expected CommunicationRange 5, got %v", config.Simulation.CommunicationRange)
	}
	if config.Simulation.Seed != 1234 {
		t.Errorf("expected Seed 1234, got %d", config.Simulation.Seed)
	}
	if config.Simulation.MaxSteps != 5000 {
		t.Errorf("expected MaxSteps 5000, got %d", config.Simulation.MaxSteps)
	}
	if config.Simulation.Rule != "majority" {
		t.Errorf("expected Rule 'majority', got '%s'", config.Simulation.Rule)
	}
	if config.Movement.Regime != "random" {
		t.Errorf("expected Regime 'random', got '%s'", config.Movement.Regime)
	}
	if config.Movement.Mu != 1.2 {
		t.Errorf("expected Mu 1.2, got %v", config.Movement.Mu)
	}
	if config.Sweep.Workers != 10 || config.Sweep.RunsPerWorker != 10 {
		t.Errorf("expected 10 workers x 10 runs, got %d x %d", config.Sweep.Workers, config.Sweep.RunsPerWorker)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
simulation:
  num_agents: 256
  communication_range: 7.5
  seed: 42
  record: summary
movement:
  regime: levy
  mu: 2.5
sweep:
  workers: 4
`)

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.NumAgents != 256 {
		t.Errorf("expected NumAgents 256, got %d", config.Simulation.NumAgents)
	}
	if config.Simulation.CommunicationRange != 7.5 {
		t.Errorf("expected CommunicationRange 7.5, got %v", config.Simulation.CommunicationRange)
	}
	if config.Simulation.Seed != 42 {
		t.Errorf("expected Seed 42, got %d", config.Simulation.Seed)
	}
	if config.Simulation.Record != constants.RecordSummary {
		t.Errorf("expected Record summary, got %s", config.Simulation.Record)
	}
	if config.Movement.Regime != "levy" || config.Movement.Mu != 2.5 {
		t.Errorf("expected levy mu=2.5, got %s mu=%v", config.Movement.Regime, config.Movement.Mu)
	}
	if config.Sweep.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", config.Sweep.Workers)
	}
	// Unset keys keep defaults.
	if config.Simulation.ArenaSize != 100 {
		t.Errorf("expected default ArenaSize 100, got %v", config.Simulation.ArenaSize)
	}
	if config.Sweep.RunsPerWorker != 10 {
		t.Errorf("expected default RunsPerWorker 10, got %d", config.Sweep.RunsPerWorker)
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[simulation]
arena_size = 50.0
speed = 0.5
rule = "identity"

[movement]
regime = "correlated"
concentration = 0.75

[logging]
level = "debug"
`)

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.ArenaSize != 50 {
		t.Errorf("expected ArenaSize 50, got %v", config.Simulation.ArenaSize)
	}
	if config.Simulation.Speed != 0.5 {
		t.Errorf("expected Speed 0.5, got %v", config.Simulation.Speed)
	}
	if config.Simulation.Rule != "identity" {
		t.Errorf("expected Rule identity, got %s", config.Simulation.Rule)
	}
	if config.Movement.Concentration != 0.75 {
		t.Errorf("expected Concentration 0.75, got %v", config.Movement.Concentration)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Level debug, got %s", config.Logging.Level)
	}
	if config.Simulation.NumAgents != 100 {
		t.Errorf("expected default NumAgents 100, got %d", config.Simulation.NumAgents)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeFile(t, "bad.yaml", "simulation: [unclosed")
	if _, err := LoadFromFile(bad); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error, got %v", err)
	}

	badTOML := writeFile(t, "bad.toml", "[simulation\n")
	if _, err := LoadFromFile(badTOML); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_MOTIONCA_HOME", "/tmp/motionca-test")
	path := writeFile(t, "config.yaml", `
storage:
  data_dir: ${TEST_MOTIONCA_HOME}/data
`)

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Storage.DataDir != "/tmp/motionca-test/data" {
		t.Errorf("expected expanded DataDir, got '%s'", config.Storage.DataDir)
	}
	if config.DataDir() != "/tmp/motionca-test/data" {
		t.Errorf("DataDir() = %s", config.DataDir())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MOTIONCA_AGENTS", "64")
	t.Setenv("MOTIONCA_ARENA", "25.5")
	t.Setenv("MOTIONCA_RANGE", "3")
	t.Setenv("MOTIONCA_SEED", "99")
	t.Setenv("MOTIONCA_SPEED", "2")
	t.Setenv("MOTIONCA_MAX_STEPS", "100")
	t.Setenv("MOTIONCA_WORKERS", "3")
	t.Setenv("MOTIONCA_REGIME", "crw")
	t.Setenv("MOTIONCA_CONCENTRATION", "0.3")
	t.Setenv("MOTIONCA_LOG_LEVEL", "trace")
	t.Setenv("MOTIONCA_DATA_DIR", "/data")
	t.Setenv("MOTIONCA_RULE", "identity")

	config := Default()
	applyEnvOverrides(config)

	want := Default()
	want.Simulation.NumAgents = 64
	want.Simulation.ArenaSize = 25.5
	want.Simulation.CommunicationRange = 3
	want.Simulation.Seed = 99
	want.Simulation.Speed = 2
	want.Simulation.MaxSteps = 100
	want.Simulation.Rule = "identity"
	want.Sweep.Workers = 3
	want.Movement.Regime = "crw"
	want.Movement.Concentration = 0.3
	want.Logging.Level = "trace"
	want.Storage.DataDir = "/data"

	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("MOTIONCA_AGENTS", "many")
	t.Setenv("MOTIONCA_SEED", "1.5")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.NumAgents != 100 {
		t.Errorf("expected NumAgents unchanged, got %d", config.Simulation.NumAgents)
	}
	if config.Simulation.Seed != 1234 {
		t.Errorf("expected Seed unchanged, got %d", config.Simulation.Seed)
	}
}

func TestLoad_HomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".motionca")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("simulation:\n  num_agents: 32\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOTIONCA_SEED", "7")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Simulation.NumAgents != 32 {
		t.Errorf("expected NumAgents 32 from file, got %d", config.Simulation.NumAgents)
	}
	if config.Simulation.Seed != 7 {
		t.Errorf("expected Seed 7 from env, got %d", config.Simulation.Seed)
	}
	if got, want := config.DataDir(), dir; got != want {
		t.Errorf("DataDir() = %s, want %s", got, want)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	path := writeFile(t, "custom.yaml", "simulation:\n  speed: 3\n")
	t.Setenv("MOTIONCA_AGENTS", "12")

	config, err := LoadWithOverrides(path)
	if err != nil {
		t.Fatalf("LoadWithOverrides failed: %v", err)
	}
	if config.Simulation.Speed != 3 || config.Simulation.NumAgents != 12 {
		t.Errorf("expected speed 3 and 12 agents, got %v and %d", config.Simulation.Speed, config.Simulation.NumAgents)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"levy without max step", func(c *Config) { c.Movement.Regime = "levy" }, ""},
		{"no agents", func(c *Config) { c.Simulation.NumAgents = 0 }, "num_agents"},
		{"zero range", func(c *Config) { c.Simulation.CommunicationRange = 0 }, "communication_range"},
		{"density out of range", func(c *Config) { c.Simulation.InitialDensity = 2 }, "initial_density"},
		{"zero max steps", func(c *Config) { c.Simulation.MaxSteps = 0 }, "max_steps"},
		{"unknown rule", func(c *Config) { c.Simulation.Rule = "minority" }, "unknown rule"},
		{"bad record mode", func(c *Config) { c.Simulation.Record = "partial" }, "record mode"},
		{"unknown regime", func(c *Config) { c.Movement.Regime = "teleport" }, "unknown movement regime"},
		{"bad concentration", func(c *Config) {
			c.Movement.Regime = "correlated"
			c.Movement.Concentration = 1
		}, "invalid"},
		{"zero sweep step", func(c *Config) { c.Sweep.Step = 0 }, "sweep step"},
		{"inverted sweep", func(c *Config) { c.Sweep.From, c.Sweep.To = 0.8, 0.2 }, "sweep range"},
		{"zero workers", func(c *Config) { c.Sweep.Workers = 0 }, "workers"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestModelConfig(t *testing.T) {
	config := Default()
	config.Simulation.Record = constants.RecordSummary

	got := config.ModelConfig(0.3)
	want := model.Config{
		ArenaSize:          100,
		NumAgents:          100,
		CommunicationRange: 5,
		Seed:               1234,
		InitialDensity:     0.3,
		Speed:              1,
		SummaryOnly:        true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ModelConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestRegime(t *testing.T) {
	config := Default()
	config.Movement.Regime = "levy-flight"
	config.Movement.Mu = 2

	got, err := config.Regime()
	if err != nil {
		t.Fatalf("Regime() error = %v", err)
	}
	want := movement.Regime{Kind: movement.KindLevy, Mu: 2, Concentration: 0.9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Regime mismatch (-want +got):\n%s", diff)
	}
}
