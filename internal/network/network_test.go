package network

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// triangle returns a 4-vertex graph with a triangle on 0,1,2 and 3 isolated.
func triangle(t *testing.T) *Snapshot {
	t.Helper()
	s := NewSnapshot(4)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}} {
		if err := s.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
	return s
}

func TestAddEdgeRejectsInvalid(t *testing.T) {
	s := NewSnapshot(3)
	tests := []struct {
		name string
		i, j int
	}{
		{"self loop", 1, 1},
		{"negative i", -1, 0},
		{"negative j", 0, -1},
		{"i too large", 3, 0},
		{"j too large", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.AddEdge(tt.i, tt.j); !errors.Is(err, ErrInvalidVertex) {
				t.Errorf("AddEdge(%d, %d) error = %v, want ErrInvalidVertex", tt.i, tt.j, err)
			}
		})
	}
	if s.EdgeCount() != 0 {
		t.Errorf("rejected edges were stored: EdgeCount() = %d", s.EdgeCount())
	}
}

func TestAddEdgeSymmetricAndIdempotent(t *testing.T) {
	s := NewSnapshot(3)
	for i := 0; i < 3; i++ {
		if err := s.AddEdge(0, 2); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddEdge(2, 0); err != nil {
		t.Fatal(err)
	}

	n0, _ := s.Neighbors(0)
	n2, _ := s.Neighbors(2)
	if diff := cmp.Diff([]int{2}, n0); diff != "" {
		t.Errorf("Neighbors(0) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, n2); diff != "" {
		t.Errorf("Neighbors(2) mismatch (-want +got):\n%s", diff)
	}
	if s.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", s.EdgeCount())
	}
}

func TestNeighborsIsACopy(t *testing.T) {
	s := triangle(t)
	n, err := s.Neighbors(0)
	if err != nil {
		t.Fatal(err)
	}
	n[0] = 99
	again, _ := s.Neighbors(0)
	if diff := cmp.Diff([]int{1, 2}, again); diff != "" {
		t.Errorf("mutating the result changed the graph (-want +got):\n%s", diff)
	}

	if _, err := s.Neighbors(4); !errors.Is(err, ErrInvalidVertex) {
		t.Errorf("Neighbors(4) error = %v, want ErrInvalidVertex", err)
	}
	if _, err := s.Neighbors(-1); !errors.Is(err, ErrInvalidVertex) {
		t.Errorf("Neighbors(-1) error = %v, want ErrInvalidVertex", err)
	}
}

func TestDegreeMetrics(t *testing.T) {
	s := triangle(t)

	// Degrees 2,2,2,0: sum 6.
	if got, want := s.Density(), 6.0/12.0; got != want {
		t.Errorf("Density() = %v, want %v", got, want)
	}
	if got, want := s.AverageDegree(), 1.5; got != want {
		t.Errorf("AverageDegree() = %v, want %v", got, want)
	}
	if got := s.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3", got)
	}
	if diff := cmp.Diff([]int{1, 0, 3, 0}, s.DegreeDistribution()); diff != "" {
		t.Errorf("DegreeDistribution() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.25, 0, 0.75, 0}, s.NormalizedDegreeDistribution()); diff != "" {
		t.Errorf("NormalizedDegreeDistribution() mismatch (-want +got):\n%s", diff)
	}
	if got := s.Components(); got != 2 {
		t.Errorf("Components() = %d, want 2", got)
	}
}

func TestCompleteGraph(t *testing.T) {
	s := NewSnapshot(5)
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			_ = s.AddEdge(i, j)
		}
	}
	// Degree sum 20 over 5*4 ordered pairs.
	if got := s.Density(); got != 1 {
		t.Errorf("Density() = %v, want 1", got)
	}
	if got := s.EdgeCount(); got != 10 {
		t.Errorf("EdgeCount() = %d, want 10", got)
	}
	if got := s.Components(); got != 1 {
		t.Errorf("Components() = %d, want 1", got)
	}
}

func TestEdgeCountIsHalfDegreeSum(t *testing.T) {
	s := NewSnapshot(10)
	edges := [][2]int{{0, 1}, {0, 2}, {3, 4}, {5, 9}, {9, 5}, {7, 8}, {8, 6}, {0, 1}}
	for _, e := range edges {
		_ = s.AddEdge(e[0], e[1])
	}
	sum := 0
	for v := 0; v < s.VertexCount(); v++ {
		sum += s.Degree(v)
	}
	if s.EdgeCount()*2 != sum {
		t.Errorf("EdgeCount() = %d, degree sum = %d", s.EdgeCount(), sum)
	}
}

func TestSmallGraphs(t *testing.T) {
	for _, n := range []int{0, 1} {
		s := NewSnapshot(n)
		if s.Density() != 0 {
			t.Errorf("n=%d: Density() = %v, want 0", n, s.Density())
		}
		if s.AverageDegree() != 0 {
			t.Errorf("n=%d: AverageDegree() = %v, want 0", n, s.AverageDegree())
		}
		if s.Components() != n {
			t.Errorf("n=%d: Components() = %d", n, s.Components())
		}
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := triangle(t)
	b := triangle(t)
	if !a.Equal(b) {
		t.Error("identical snapshots compared unequal")
	}
	_ = b.AddEdge(0, 3)
	if a.Equal(b) {
		t.Error("different snapshots compared equal")
	}
	if a.Equal(NewSnapshot(5)) {
		t.Error("snapshots of different sizes compared equal")
	}
	if a.Equal(nil) {
		t.Error("snapshot compared equal to nil")
	}
}

func TestNetworkAppendAndBounds(t *testing.T) {
	n := New()
	if n.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", n.Size())
	}
	if _, err := n.Snapshot(0); !errors.Is(err, ErrSnapshotOutOfRange) {
		t.Errorf("Snapshot(0) on empty network error = %v", err)
	}

	first := triangle(t)
	second := NewSnapshot(4)
	n.Append(first)
	n.Append(second)

	if n.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", n.Size())
	}
	got, err := n.Snapshot(0)
	if err != nil || got != first {
		t.Errorf("Snapshot(0) = %p, %v; want %p", got, err, first)
	}
	if n.Latest() != second {
		t.Error("Latest() is not the last appended snapshot")
	}

	// The bound is strict: t == Size() is out of range.
	for _, ts := range []int{-1, 2, 3} {
		if _, err := n.Snapshot(ts); !errors.Is(err, ErrSnapshotOutOfRange) {
			t.Errorf("Snapshot(%d) error = %v, want ErrSnapshotOutOfRange", ts, err)
		}
		if _, err := n.Summary(ts); !errors.Is(err, ErrSnapshotOutOfRange) {
			t.Errorf("Summary(%d) error = %v, want ErrSnapshotOutOfRange", ts, err)
		}
	}

	want := []float64{1.5, 0}
	if diff := cmp.Diff(want, n.AverageDegrees()); diff != "" {
		t.Errorf("AverageDegrees() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryNetworkDiscardsOldBodies(t *testing.T) {
	n := NewSummaryNetwork()
	n.Append(triangle(t))
	n.Append(NewSnapshot(4))
	n.Append(triangle(t))

	if n.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", n.Size())
	}
	if _, err := n.Snapshot(0); !errors.Is(err, ErrSnapshotDiscarded) {
		t.Errorf("Snapshot(0) error = %v, want ErrSnapshotDiscarded", err)
	}
	if _, err := n.Snapshot(2); err != nil {
		t.Errorf("latest snapshot should be retained: %v", err)
	}
	sum, err := n.Summary(0)
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{AverageDegree: 1.5, Density: 0.5, EdgeCount: 3}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("Summary(0) mismatch (-want +got):\n%s", diff)
	}
}
