// Package geom provides the two-dimensional value types used by the
// simulation: positions in the arena and agent headings.
package geom

import (
	"fmt"
	"math"
)

// Point is an immutable position in the plane.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between p and o.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Within reports whether o lies no farther than r from p. The bound is inclusive.
func (p Point) Within(r float64, o Point) bool {
	return p.Distance(o) <= r
}

// Add returns p displaced by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
