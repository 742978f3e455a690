package experiment

import "sync"

// SeedSource hands out base, base+1, base+2, ... to concurrent callers.
type SeedSource struct {
	mu   sync.Mutex
	base int64
	next int64
}

// NewSeedSource returns a source starting at base.
func NewSeedSource(base int64) *SeedSource {
	return &SeedSource{base: base}
}

// Next returns a seed no other call has returned.
func (s *SeedSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed := s.base + s.next
	s.next++
	return seed
}

// Collector accumulates results from concurrent workers.
type Collector[T any] struct {
	mu    sync.Mutex
	items []T
}

// Add appends v.
func (c *Collector[T]) Add(v T) {
	c.mu.Lock()
	c.items = append(c.items, v)
	c.mu.Unlock()
}

// Items returns a copy of everything added so far.
func (c *Collector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items added.
func (c *Collector[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
