// Package network records the communication graph between agents: one
// undirected Snapshot per timestep, collected in an append-only Network.
package network

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrInvalidVertex is returned for self-loops and vertex indices outside
// [0, VertexCount()).
var ErrInvalidVertex = errors.New("invalid vertex")

// Snapshot is an undirected simple graph over vertices 0..n-1.
type Snapshot struct {
	n   int
	adj []map[int]struct{}
}

// NewSnapshot returns a graph with n vertices and no edges.
func NewSnapshot(n int) *Snapshot {
	if n < 0 {
		n = 0
	}
	adj := make([]map[int]struct{}, n)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	return &Snapshot{n: n, adj: adj}
}

// VertexCount returns the number of vertices.
func (s *Snapshot) VertexCount() int {
	return s.n
}

func (s *Snapshot) valid(v int) bool {
	return v >= 0 && v < s.n
}

// AddEdge connects i and j. Adding an existing edge is a no-op.
func (s *Snapshot) AddEdge(i, j int) error {
	if i == j || !s.valid(i) || !s.valid(j) {
		return fmt.Errorf("%w: edge (%d, %d) in graph of %d vertices", ErrInvalidVertex, i, j, s.n)
	}
	s.adj[i][j] = struct{}{}
	s.adj[j][i] = struct{}{}
	return nil
}

// Neighbors returns the neighbours of v in ascending order. The slice is a copy.
func (s *Snapshot) Neighbors(v int) ([]int, error) {
	if !s.valid(v) {
		return nil, fmt.Errorf("%w: vertex %d in graph of %d vertices", ErrInvalidVertex, v, s.n)
	}
	return slices.Sorted(maps.Keys(s.adj[v])), nil
}

// Degree returns the number of neighbours of v, or 0 for an invalid vertex.
func (s *Snapshot) Degree(v int) int {
	if !s.valid(v) {
		return 0
	}
	return len(s.adj[v])
}

func (s *Snapshot) degreeSum() int {
	total := 0
	for _, a := range s.adj {
		total += len(a)
	}
	return total
}

// Density returns the sum of degrees divided by n(n-1). Every edge is
// counted from both ends against ordered vertex pairs; existing experiment
// results use exactly this formula.
func (s *Snapshot) Density() float64 {
	if s.n < 2 {
		return 0
	}
	return float64(s.degreeSum()) / float64(s.n*(s.n-1))
}

// AverageDegree returns the mean vertex degree.
func (s *Snapshot) AverageDegree() float64 {
	if s.n == 0 {
		return 0
	}
	return float64(s.degreeSum()) / float64(s.n)
}

// EdgeCount returns the number of undirected edges.
func (s *Snapshot) EdgeCount() int {
	return s.degreeSum() / 2
}

// DegreeDistribution returns, for each degree d in 0..n-1, the number of
// vertices with degree d.
func (s *Snapshot) DegreeDistribution() []int {
	dist := make([]int, s.n)
	for _, a := range s.adj {
		dist[len(a)]++
	}
	return dist
}

// NormalizedDegreeDistribution returns DegreeDistribution divided by n.
func (s *Snapshot) NormalizedDegreeDistribution() []float64 {
	dist := s.DegreeDistribution()
	norm := make([]float64, len(dist))
	for d, c := range dist {
		norm[d] = float64(c) / float64(s.n)
	}
	return norm
}

// Equal reports whether s and o have identical adjacency.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.n != o.n {
		return false
	}
	for v := range s.adj {
		if !maps.Equal(s.adj[v], o.adj[v]) {
			return false
		}
	}
	return true
}

// Graph converts the snapshot to a gonum undirected graph. Node IDs are the
// vertex indices.
func (s *Snapshot) Graph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for v := 0; v < s.n; v++ {
		g.AddNode(simple.Node(int64(v)))
	}
	for v, a := range s.adj {
		for u := range a {
			if u > v {
				g.SetEdge(simple.Edge{F: simple.Node(int64(v)), T: simple.Node(int64(u))})
			}
		}
	}
	return g
}

// Components returns the number of connected components. Isolated agents
// count as components of their own.
func (s *Snapshot) Components() int {
	if s.n == 0 {
		return 0
	}
	return len(topo.ConnectedComponents(s.Graph()))
}

// Summary holds the scalar statistics of one snapshot.
type Summary struct {
	AverageDegree float64 `json:"average_degree"`
	Density       float64 `json:"density"`
	EdgeCount     int     `json:"edge_count"`
}

// Summarize computes the snapshot's Summary.
func (s *Snapshot) Summarize() Summary {
	return Summary{
		AverageDegree: s.AverageDegree(),
		Density:       s.Density(),
		EdgeCount:     s.EdgeCount(),
	}
}
