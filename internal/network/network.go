package network

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrSnapshotOutOfRange is returned for a timestep that has not been recorded.
	ErrSnapshotOutOfRange = errors.New("snapshot index out of range")

	// ErrSnapshotDiscarded is returned when a summary-only network is asked
	// for a snapshot body it no longer holds.
	ErrSnapshotDiscarded = errors.New("snapshot discarded")
)

// Network is the append-only history of communication graphs, one entry per
// timestep starting at timestep 0. Recorded snapshots must not be modified.
type Network struct {
	snapshots   []*Snapshot
	summaries   []Summary
	summaryOnly bool
}

// New returns an empty network that keeps every snapshot.
func New() *Network {
	return &Network{}
}

// NewSummaryNetwork returns an empty network that keeps per-timestep
// summaries but only the most recent snapshot body.
func NewSummaryNetwork() *Network {
	return &Network{summaryOnly: true}
}

// SummaryOnly reports whether old snapshot bodies are released.
func (n *Network) SummaryOnly() bool {
	return n.summaryOnly
}

// Append records s as the next timestep.
func (n *Network) Append(s *Snapshot) {
	if n.summaryOnly && len(n.snapshots) > 0 {
		n.snapshots[len(n.snapshots)-1] = nil
	}
	n.snapshots = append(n.snapshots, s)
	n.summaries = append(n.summaries, s.Summarize())
}

// Size returns the number of recorded timesteps.
func (n *Network) Size() int {
	return len(n.summaries)
}

func (n *Network) check(t int) error {
	if t < 0 || t >= len(n.summaries) {
		return fmt.Errorf("%w: timestep %d, %d recorded", ErrSnapshotOutOfRange, t, len(n.summaries))
	}
	return nil
}

// Snapshot returns the graph recorded at timestep t, 0 <= t < Size().
func (n *Network) Snapshot(t int) (*Snapshot, error) {
	if err := n.check(t); err != nil {
		return nil, err
	}
	s := n.snapshots[t]
	if s == nil {
		return nil, fmt.Errorf("%w: timestep %d", ErrSnapshotDiscarded, t)
	}
	return s, nil
}

// Latest returns the most recent snapshot, or nil if nothing was recorded.
func (n *Network) Latest() *Snapshot {
	if len(n.snapshots) == 0 {
		return nil
	}
	return n.snapshots[len(n.snapshots)-1]
}

// Summary returns the statistics recorded at timestep t.
func (n *Network) Summary(t int) (Summary, error) {
	if err := n.check(t); err != nil {
		return Summary{}, err
	}
	return n.summaries[t], nil
}

// Summaries returns a copy of all recorded summaries in timestep order.
func (n *Network) Summaries() []Summary {
	return slices.Clone(n.summaries)
}

// AverageDegrees returns the per-timestep average degree.
func (n *Network) AverageDegrees() []float64 {
	out := make([]float64, len(n.summaries))
	for i, s := range n.summaries {
		out[i] = s.AverageDegree
	}
	return out
}
