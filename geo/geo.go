package geo

import (
	"math"
)

// MetersPerDegree is the equirectangular scale used for local projections.
const MetersPerDegree = 111000.0

// Point is a lon/lat pair in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Bounds is an inclusive lon/lat box.
type Bounds struct {
	MinLon float64
	MaxLon float64
	MinLat float64
	MaxLat float64
}

// Contains reports whether (lon, lat) lies inside b, edges included.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// Extend grows b to include (lon, lat).
func (b Bounds) Extend(lon, lat float64) Bounds {
	return Bounds{
		MinLon: math.Min(b.MinLon, lon),
		MaxLon: math.Max(b.MaxLon, lon),
		MinLat: math.Min(b.MinLat, lat),
		MaxLat: math.Max(b.MaxLat, lat),
	}
}

// EmptyBounds returns a box that any Extend call will replace.
func EmptyBounds() Bounds {
	return Bounds{
		MinLon: math.Inf(1),
		MaxLon: math.Inf(-1),
		MinLat: math.Inf(1),
		MaxLat: math.Inf(-1),
	}
}

// IsEmpty reports whether nothing has been added to b.
func (b Bounds) IsEmpty() bool {
	return b.MinLon > b.MaxLon || b.MinLat > b.MaxLat
}

func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// LonScale returns meters per degree of longitude at latitude lat (degrees).
func LonScale(lat float64) float64 {
	return MetersPerDegree * math.Cos(DegToRad(lat))
}

// LatScale returns meters per degree of latitude.
func LatScale() float64 { return MetersPerDegree }

// FromLocal maps an east/north offset in meters around origin to geographic
// coordinates. Only valid for vessel-scale offsets.
func FromLocal(origin Point, east, north float64) Point {
	return Point{
		Lon: origin.Lon + east/LonScale(origin.Lat),
		Lat: origin.Lat + north/LatScale(),
	}
}

// ToLocal is the inverse of FromLocal.
func ToLocal(origin Point, p Point) (east, north float64) {
	return (p.Lon - origin.Lon) * LonScale(origin.Lat), (p.Lat - origin.Lat) * LatScale()
}

// Rotate turns (x, y) counter-clockwise by angle radians.
func Rotate(x, y, angle float64) (float64, float64) {
	c, s := math.Cos(angle), math.Sin(angle)
	return x*c - y*s, x*s + y*c
}

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := DegToRad(lat2 - lat1)
	dLon := DegToRad(lon2 - lon1)
	la1 := DegToRad(lat1)
	la2 := DegToRad(lat2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
