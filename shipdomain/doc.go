/*
Package shipdomain computes four-quadrant ship domains.

A ship domain is the exclusion zone around a vessel. This package models it as
four quarter-ellipses that share the vessel position as their center:

	fore-starboard  (R_fore, R_starboard)
	fore-port       (R_fore, R_port)
	aft-port        (R_aft,  R_port)
	aft-starboard   (R_aft,  R_starboard)

The semi-axes scale with vessel length and grow with speed through the
advance-distance and tactical-diameter factors:

	k_AD = 10^(0.3591*log10(V) + 0.0952)
	k_DT = 10^(0.5441*log10(V) - 0.0795)

# Basic Usage

	eng := shipdomain.NewEngine(100, 0, shipdomain.DefaultLength)
	d := eng.Compute(80, 12, geo.DegToRad(50), geo.Point{Lon: 120.2, Lat: 36.05})
	ring := d.Ring.Closed()

The local outline is rotated by (pi/2 - heading) and projected with a local
equirectangular approximation, which holds for vessel-scale extents only.

# Degenerate Input

log10 is undefined for a stationary vessel. Engine replaces non-positive speed
with its speed floor and non-positive length with its default length, and
reports both through Domain.Degenerate instead of returning non-finite points.
Speeds and lengths above the engine limits (WithLimits) are clamped so the
radii cannot overflow. A center where the projection breaks down yields an
empty ring flagged Unprojectable.
*/
package shipdomain
