package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDensities(t *testing.T) {
	tests := []struct {
		name           string
		from, to, step float64
		wantLen        int
		wantFirst      float64
		wantLast       float64
	}{
		{"quarters", 0, 1, 0.25, 5, 0, 1},
		{"hundredths", 0, 1, 0.01, 101, 0, 1},
		{"tenths", 0.1, 0.9, 0.1, 9, 0.1, 0.9},
		{"single", 0.5, 0.5, 0.1, 1, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Densities(tt.from, tt.to, tt.step)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d: %v", len(got), tt.wantLen, got)
			}
			if got[0] != tt.wantFirst || got[len(got)-1] != tt.wantLast {
				t.Errorf("range = [%v, %v], want [%v, %v]", got[0], got[len(got)-1], tt.wantFirst, tt.wantLast)
			}
		})
	}

	if got := Densities(0.5, 0.4, 0.1); got != nil {
		t.Errorf("inverted range = %v, want nil", got)
	}
	if got := Densities(0, 1, 0); got != nil {
		t.Errorf("zero step = %v, want nil", got)
	}
}

func TestDensities_ExactValues(t *testing.T) {
	want := []float64{0.3, 0.4, 0.5, 0.6, 0.7}
	if diff := cmp.Diff(want, Densities(0.3, 0.7, 0.1)); diff != "" {
		t.Errorf("Densities mismatch (-want +got):\n%s", diff)
	}
}

func sweepParams() SweepParams {
	return SweepParams{
		Params:  connectedParams("majority", 0),
		From:    0,
		To:      1,
		Step:    0.25,
		Runs:    3,
		Workers: 4,
	}
}

func TestSweep(t *testing.T) {
	points, err := Sweep(context.Background(), sweepParams())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("len(points) = %d, want 5", len(points))
	}
	for i, want := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if points[i].Density != want {
			t.Errorf("points[%d].Density = %v, want %v", i, points[i].Density, want)
		}
		if points[i].Runs != 3 {
			t.Errorf("points[%d].Runs = %d, want 3", i, points[i].Runs)
		}
		if f := points[i].FractionCorrect; f < 0 || f > 1 {
			t.Errorf("points[%d].FractionCorrect = %v out of range", i, f)
		}
	}
	for i, pt := range points {
		if len(pt.Results) != 3 {
			t.Fatalf("points[%d] carries %d results, want 3", i, len(pt.Results))
		}
		for k, r := range pt.Results {
			if want := sweepParams().Model.Seed + int64(k); r.Seed != want {
				t.Errorf("points[%d].Results[%d].Seed = %d, want %d", i, k, r.Seed, want)
			}
			if r.FinalComponents != 1 {
				t.Errorf("points[%d].Results[%d].FinalComponents = %d, want 1", i, k, r.FinalComponents)
			}
		}
	}
	// Uniform initial states are already classified.
	for _, i := range []int{0, 4} {
		if points[i].FractionCorrect != 1 || points[i].MeanSteps != 0 {
			t.Errorf("points[%d] = %+v, want all correct in zero steps", i, points[i])
		}
	}
}

func TestSweep_IndependentOfWorkers(t *testing.T) {
	sp := sweepParams()
	sp.Workers = 1
	serial, err := Sweep(context.Background(), sp)
	if err != nil {
		t.Fatal(err)
	}
	sp.Workers = 8
	parallel, err := Sweep(context.Background(), sp)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("sweep depends on worker count (-serial +parallel):\n%s", diff)
	}
}

func TestSweep_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SweepParams)
	}{
		{"no runs", func(sp *SweepParams) { sp.Runs = 0 }},
		{"no workers", func(sp *SweepParams) { sp.Workers = 0 }},
		{"empty range", func(sp *SweepParams) { sp.From, sp.To = 0.9, 0.1 }},
		{"no steps", func(sp *SweepParams) { sp.MaxSteps = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := sweepParams()
			tt.modify(&sp)
			if _, err := Sweep(context.Background(), sp); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Sweep() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestSweep_PropagatesRunError(t *testing.T) {
	sp := sweepParams()
	sp.RuleName = "no-such-rule"
	if _, err := Sweep(context.Background(), sp); err == nil {
		t.Error("expected error from failing runs")
	}
}

func TestSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sp := sweepParams()
	sp.RuleName = "identity"
	sp.From = 0.25
	sp.To = 0.75
	if _, err := Sweep(ctx, sp); !errors.Is(err, context.Canceled) {
		t.Errorf("Sweep() error = %v, want context.Canceled", err)
	}
}

func TestSummarize(t *testing.T) {
	runs := []RunResult{
		{Correct: true, Converged: true, Steps: 4},
		{Correct: false, Converged: true, Steps: 2},
		{Correct: false, Converged: false, Steps: 12},
		{Correct: true, Converged: true, Steps: 2},
	}
	got := summarize(0.4, runs)
	want := SweepPoint{Density: 0.4, Runs: 4, Correct: 2, Converged: 3, FractionCorrect: 0.5, MeanSteps: 5, Results: runs}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summarize mismatch (-want +got):\n%s", diff)
	}
}
