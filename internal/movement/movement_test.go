package movement

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wfvining/motion-ca/internal/geom"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestUniformTurnRange(t *testing.T) {
	rng := newRand(1)
	d := UniformTurn()
	for i := 0; i < 10000; i++ {
		v := d(rng)
		if v < 0 || v >= geom.FullTurn {
			t.Fatalf("UniformTurn drew %v outside [0, 2pi)", v)
		}
	}
}

func TestWrappedCauchyTurn(t *testing.T) {
	t.Run("rejects invalid concentration", func(t *testing.T) {
		for _, rho := range []float64{-0.1, 1, 1.5, math.NaN()} {
			if _, err := WrappedCauchyTurn(rho); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("WrappedCauchyTurn(%v) error = %v, want ErrInvalidParameter", rho, err)
			}
		}
	})

	t.Run("high concentration keeps headings close", func(t *testing.T) {
		rng := newRand(7)
		d, err := WrappedCauchyTurn(0.99)
		if err != nil {
			t.Fatal(err)
		}
		small := 0
		const n = 2000
		for i := 0; i < n; i++ {
			v := d(rng)
			if v < -math.Pi || v > math.Pi {
				t.Fatalf("draw %v outside [-pi, pi]", v)
			}
			if math.Abs(v) < 0.1 {
				small++
			}
		}
		if small < n*8/10 {
			t.Errorf("only %d/%d draws within 0.1 rad at rho=0.99", small, n)
		}
	})
}

func TestConstantStep(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 1},
		{5, 5},
		{0, 1},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := ConstantStep(tt.in)(nil); got != tt.want {
			t.Errorf("ConstantStep(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLevyStep(t *testing.T) {
	t.Run("draws stay within bounds", func(t *testing.T) {
		rng := newRand(42)
		for _, mu := range []float64{-2.5, -1.5, 0.2, 1.2, 2} {
			d, err := LevyStep(mu, 100)
			if err != nil {
				t.Fatalf("LevyStep(%v): %v", mu, err)
			}
			for i := 0; i < 2000; i++ {
				n := d(rng)
				if n < 1 || n > 100 {
					t.Fatalf("LevyStep(mu=%v) drew %d outside [1, 100]", mu, n)
				}
			}
		}
	})

	t.Run("negative exponent is heavy tailed toward short runs", func(t *testing.T) {
		rng := newRand(3)
		d, err := LevyStep(-3, 1000)
		if err != nil {
			t.Fatal(err)
		}
		short := 0
		for i := 0; i < 1000; i++ {
			if d(rng) <= 2 {
				short++
			}
		}
		if short < 500 {
			t.Errorf("expected most runs to be short, got %d/1000", short)
		}
	})

	t.Run("rejects degenerate parameters", func(t *testing.T) {
		if _, err := LevyStep(-1, 100); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("mu=-1: error = %v", err)
		}
		if _, err := LevyStep(1.2, 0); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("maxStep=0: error = %v", err)
		}
	})

	t.Run("same seed same draws", func(t *testing.T) {
		d, _ := LevyStep(1.2, 100)
		a, b := newRand(9), newRand(9)
		for i := 0; i < 100; i++ {
			if x, y := d(a), d(b); x != y {
				t.Fatalf("draw %d differs: %d vs %d", i, x, y)
			}
		}
	})
}

func TestMovementRules(t *testing.T) {
	rng := newRand(11)
	start := geom.NewHeading(1)

	crw, err := NewCorrelatedRandomWalk(0.999)
	if err != nil {
		t.Fatal(err)
	}
	h := crw.Clone().Turn(geom.Point{}, start, rng)
	d := h.Sub(start).Radians()
	if d > math.Pi {
		d = geom.FullTurn - d
	}
	if d > 0.5 {
		t.Errorf("correlated walk at rho=0.999 turned from %v to %v", start.Radians(), h.Radians())
	}

	fixed := TurnBy{Dist: func(*rand.Rand) float64 { return math.Pi }}
	if got := fixed.Turn(geom.Point{}, start, rng); !got.Equal(start.Add(geom.NewHeading(math.Pi))) {
		t.Errorf("TurnBy(pi) = %v, want %v", got.Radians(), start.Add(geom.NewHeading(math.Pi)).Radians())
	}

	if _, err := NewCorrelatedRandomWalk(2); err == nil {
		t.Error("NewCorrelatedRandomWalk(2) should fail")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindRandom, false},
		{"random", KindRandom, false},
		{"Correlated", KindCorrelated, false},
		{"crw", KindCorrelated, false},
		{"LEVY", KindLevy, false},
		{"levy-flight", KindLevy, false},
		{"brownian", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownRegime) {
				t.Errorf("error %v is not ErrUnknownRegime", err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegimeBuild(t *testing.T) {
	tests := []struct {
		name    string
		regime  Regime
		wantErr bool
	}{
		{"random", Regime{Kind: KindRandom}, false},
		{"zero value", Regime{}, false},
		{"correlated", Regime{Kind: KindCorrelated, Concentration: 0.8}, false},
		{"correlated bad rho", Regime{Kind: KindCorrelated, Concentration: 1}, true},
		{"levy", Regime{Kind: KindLevy, Mu: 1.2, MaxStep: 100}, false},
		{"levy no max", Regime{Kind: KindLevy, Mu: 1.2}, true},
		{"unknown", Regime{Kind: "spiral"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, step, err := tt.regime.Build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if rule == nil || step == nil {
				t.Fatal("Build() returned nil rule or step distribution")
			}
			if n := step(newRand(1)); n < 1 {
				t.Errorf("step distribution drew %d", n)
			}
			if tt.regime.String() == "" {
				t.Error("String() is empty")
			}
		})
	}
}
