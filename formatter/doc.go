// Package formatter provides response wrapping and serialization for vessel snapshots.
//
// This package is organized into:
// - wrapper.go: Snapshot wrapping and query filtering (MMSI, bounding box)
// - json.go: JSON aggregate serialization
// - kml.go: KML serialization of domain polygons with proper escaping
// - gtfsrt.go: GTFS-Realtime VehiclePositions feed export
//
// KML is written by hand for precise control over output format.
package formatter
