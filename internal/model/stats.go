package model

import (
	"slices"

	"github.com/wfvining/motion-ca/internal/network"
	"gonum.org/v1/gonum/stat"
)

// Stats is the per-run history: one density and one network entry per
// recorded timestep. Both sequences always have the same length.
type Stats struct {
	density []float64
	network *network.Network
}

func newStats(summaryOnly bool) *Stats {
	n := network.New()
	if summaryOnly {
		n = network.NewSummaryNetwork()
	}
	return &Stats{network: n}
}

// Push records one timestep.
func (s *Stats) Push(density float64, snapshot *network.Snapshot) {
	s.density = append(s.density, density)
	s.network.Append(snapshot)
}

// DensityHistory returns a copy of the density at each timestep.
func (s *Stats) DensityHistory() []float64 {
	return slices.Clone(s.density)
}

// Network returns the network history. Callers must not modify it.
func (s *Stats) Network() *network.Network {
	return s.network
}

// Elapsed returns the number of recorded timesteps.
func (s *Stats) Elapsed() int {
	return len(s.density)
}

// IsCorrect reports whether the run classified its initial density: the
// final density is 1 when the initial density was at least 0.5, and 0
// otherwise. An empty history is never correct.
func (s *Stats) IsCorrect() bool {
	if len(s.density) == 0 {
		return false
	}
	first, last := s.density[0], s.density[len(s.density)-1]
	if first >= 0.5 {
		return last == 1
	}
	return last == 0
}

// AggregateDegrees returns the average degree of each recorded snapshot.
func (s *Stats) AggregateDegrees() []float64 {
	return s.network.AverageDegrees()
}

// AverageAggregateDegree is the mean of AggregateDegrees, or 0 when empty.
func (s *Stats) AverageAggregateDegree() float64 {
	d := s.AggregateDegrees()
	if len(d) == 0 {
		return 0
	}
	return stat.Mean(d, nil)
}

// AggregateDegreeStdDev is the population standard deviation of
// AggregateDegrees, or 0 when empty.
func (s *Stats) AggregateDegreeStdDev() float64 {
	d := s.AggregateDegrees()
	if len(d) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(d, nil)
	return std
}

// MedianAggregateDegree returns the median of AggregateDegrees, averaging
// the two middle values for even lengths. It is 0 when empty.
func (s *Stats) MedianAggregateDegree() float64 {
	return median(s.AggregateDegrees())
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
