// Package geo provides the small set of geographic helpers the tracker needs.
//
// It contains:
//   - Degree/radian conversion
//   - Local equirectangular projection (111 km per degree, longitude scaled by cos(lat))
//   - Planar rotation
//   - Bounding boxes and great-circle distance
//
// The local projection is only accurate for offsets of a few kilometers, which
// is the scale of a ship domain.
package geo
