package shipdomain

import (
	"math"
)

// Radii holds the speed-dependent factors and the four semi-axes of a domain,
// all in meters except the dimensionless factors.
type Radii struct {
	KAD       float64 // advance-distance factor
	KDT       float64 // tactical-diameter factor
	Fore      float64
	Aft       float64
	Starboard float64
	Port      float64
}

// Max returns the largest semi-axis.
func (r Radii) Max() float64 {
	return math.Max(math.Max(r.Fore, r.Aft), math.Max(r.Starboard, r.Port))
}

// Axes computes the quadrant semi-axes for a vessel of the given length (m)
// moving at speed. Speed must be positive; callers that may see a stationary
// vessel go through Engine, which applies the speed floor.
func Axes(length, speed float64) Radii {
	lv := math.Log10(speed)
	kAD := math.Pow(10, 0.3591*lv+0.0952)
	kDT := math.Pow(10, 0.5441*lv-0.0795)

	h := math.Sqrt(kAD*kAD + (kDT/2)*(kDT/2))
	return Radii{
		KAD:       kAD,
		KDT:       kDT,
		Fore:      (1 + 1.34*h) * length,
		Aft:       (1 + 0.67*h) * length,
		Starboard: (0.2 + kDT) * length,
		Port:      (0.2 + 0.75*kDT) * length,
	}
}
