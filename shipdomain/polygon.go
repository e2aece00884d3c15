package shipdomain

import (
	"math"

	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
)

const (
	// DefaultSamplesPerQuadrant matches the resolution used by the reference plots.
	DefaultSamplesPerQuadrant = 100
	// DefaultLength is substituted for missing or non-positive vessel lengths (m).
	DefaultLength = 100.0
	// DefaultMaxSpeed caps speed over ground (knots) before the radii are derived.
	DefaultMaxSpeed = 100.0
	// DefaultMaxLength caps vessel length (m) before the radii are derived.
	DefaultMaxLength = 1000.0
)

// Vec is a point in the vessel-local frame: X toward the bow, Y toward port.
type Vec struct {
	X float64
	Y float64
}

// Ring is a domain outline in geographic coordinates. It is not closed; use
// Closed when a renderer needs the first point repeated.
type Ring []geo.Point

// Closed returns a copy of r with the first point appended.
func (r Ring) Closed() Ring {
	if len(r) == 0 {
		return nil
	}
	out := make(Ring, len(r), len(r)+1)
	copy(out, r)
	return append(out, r[0])
}

// Degenerate records which inputs were replaced before the domain was built.
type Degenerate uint8

const (
	SpeedFloored Degenerate = 1 << iota
	LengthDefaulted
	SpeedClamped
	LengthClamped
	// Unprojectable means the outline could not be placed around the center,
	// for example at a pole; the ring is left empty.
	Unprojectable
)

func (d Degenerate) Has(flag Degenerate) bool { return d&flag != 0 }

// Domain is the result of one engine evaluation.
type Domain struct {
	Ring       Ring
	Radii      Radii
	Degenerate Degenerate
}

// quadrants lists the arcs in ring order. Angles are in radians in the local
// frame; fore/aft picks the X semi-axis and starboard/port the Y semi-axis.
var quadrants = [4]struct {
	from, to  float64
	fore      bool
	starboard bool
}{
	{3 * math.Pi / 2, 2 * math.Pi, true, true}, // fore-starboard
	{0, math.Pi / 2, true, false},              // fore-port
	{math.Pi / 2, math.Pi, false, false},       // aft-port
	{math.Pi, 3 * math.Pi / 2, false, true},    // aft-starboard
}

// Engine builds ship domains with a fixed sampling resolution and fixed
// recovery values for degenerate input. The zero value is not usable; use
// NewEngine.
type Engine struct {
	samples       int
	minSpeed      float64
	defaultLength float64
	maxSpeed      float64
	maxLength     float64
}

// NewEngine returns an engine sampling n points per quadrant. A non-positive
// minSpeed selects the smallest positive float64, and a non-positive
// defaultLength selects DefaultLength. n below 2 is raised to 2.
func NewEngine(n int, minSpeed, defaultLength float64) *Engine {
	if n < 2 {
		n = 2
	}
	if !(minSpeed > 0) || math.IsInf(minSpeed, 0) {
		minSpeed = math.SmallestNonzeroFloat64
	}
	if !(defaultLength > 0) || math.IsInf(defaultLength, 0) {
		defaultLength = DefaultLength
	}
	return &Engine{
		samples:       n,
		minSpeed:      minSpeed,
		defaultLength: defaultLength,
		maxSpeed:      DefaultMaxSpeed,
		maxLength:     DefaultMaxLength,
	}
}

// WithLimits sets the caps applied to speed and length. Non-positive values
// keep DefaultMaxSpeed and DefaultMaxLength; a cap below the floor is raised
// to it.
func (e *Engine) WithLimits(maxSpeed, maxLength float64) *Engine {
	if maxSpeed > 0 && !math.IsInf(maxSpeed, 0) {
		e.maxSpeed = math.Max(maxSpeed, e.minSpeed)
	}
	if maxLength > 0 && !math.IsInf(maxLength, 0) {
		e.maxLength = maxLength
	}
	return e
}

// SamplesPerQuadrant returns n; every ring has 4n points.
func (e *Engine) SamplesPerQuadrant() int { return e.samples }

var defaultEngine = NewEngine(DefaultSamplesPerQuadrant, 0, DefaultLength)

// ComputeDomain builds a domain ring with the default engine. heading is in
// radians, clockwise from north.
func ComputeDomain(length, speed, heading float64, center geo.Point) Ring {
	return defaultEngine.Compute(length, speed, heading, center).Ring
}

// Compute evaluates the four-quadrant model for one vessel state. heading is
// in radians, clockwise from north; center is the vessel position.
func (e *Engine) Compute(length, speed, heading float64, center geo.Point) Domain {
	var flags Degenerate
	switch {
	case math.IsNaN(speed) || speed <= 0:
		speed = e.minSpeed
		flags |= SpeedFloored
	case speed > e.maxSpeed:
		speed = e.maxSpeed
		flags |= SpeedClamped
	}
	switch {
	case math.IsNaN(length) || length <= 0:
		length = e.defaultLength
		flags |= LengthDefaulted
	case length > e.maxLength:
		length = e.maxLength
		flags |= LengthClamped
	}
	if !geo.Finite(heading) {
		heading = 0
	}

	radii := Axes(length, speed)
	local := Rotate(LocalPoints(radii, e.samples), math.Pi/2-heading)

	ring := make(Ring, len(local))
	for i, p := range local {
		ring[i] = geo.FromLocal(center, p.X, p.Y)
		if !geo.Finite(ring[i].Lon, ring[i].Lat) {
			return Domain{Radii: radii, Degenerate: flags | Unprojectable}
		}
	}
	return Domain{Ring: ring, Radii: radii, Degenerate: flags}
}

// LocalPoints samples the four quarter-ellipses in ring order, n points per
// quadrant with both arc endpoints included.
func LocalPoints(r Radii, n int) []Vec {
	if n < 2 {
		n = 2
	}
	pts := make([]Vec, 0, 4*n)
	for _, q := range quadrants {
		rx, ry := r.Aft, r.Port
		if q.fore {
			rx = r.Fore
		}
		if q.starboard {
			ry = r.Starboard
		}
		step := (q.to - q.from) / float64(n-1)
		for i := 0; i < n; i++ {
			theta := q.from + step*float64(i)
			pts = append(pts, Vec{X: rx * math.Cos(theta), Y: ry * math.Sin(theta)})
		}
	}
	return pts
}

// Rotate returns pts turned counter-clockwise by angle radians.
func Rotate(pts []Vec, angle float64) []Vec {
	out := make([]Vec, len(pts))
	for i, p := range pts {
		x, y := geo.Rotate(p.X, p.Y, angle)
		out[i] = Vec{X: x, Y: y}
	}
	return out
}
