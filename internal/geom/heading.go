package geom

import "math"

// FullTurn is one complete revolution in radians.
const FullTurn = 2 * math.Pi

// HeadingEpsilon is the circular distance below which two headings compare equal.
const HeadingEpsilon = 1e-9

// Heading is an orientation in radians, always normalized to [0, 2π).
// The zero value points along the positive x axis.
type Heading struct {
	rad float64
}

// NewHeading returns the heading for an arbitrary angle in radians.
func NewHeading(rad float64) Heading {
	return Heading{rad: normalize(rad)}
}

func normalize(rad float64) float64 {
	r := math.Mod(rad, FullTurn)
	if r < 0 {
		r += FullTurn
	}
	// math.Mod of a tiny negative value can round up to a full turn.
	if r >= FullTurn {
		r = 0
	}
	return r
}

// Radians returns the normalized angle.
func (h Heading) Radians() float64 {
	return h.rad
}

// Add returns h + o modulo a full turn.
func (h Heading) Add(o Heading) Heading {
	return NewHeading(h.rad + o.rad)
}

// Sub returns h - o modulo a full turn.
func (h Heading) Sub(o Heading) Heading {
	return NewHeading(h.rad - o.rad)
}

// Equal reports whether h and o denote the same direction.
func (h Heading) Equal(o Heading) bool {
	d := math.Abs(h.rad - o.rad)
	if d > math.Pi {
		d = FullTurn - d
	}
	return d < HeadingEpsilon
}

// Unit returns the unit displacement (cos h, sin h).
func (h Heading) Unit() (dx, dy float64) {
	sin, cos := math.Sincos(h.rad)
	return cos, sin
}
