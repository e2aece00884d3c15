// Package server exposes published vessel snapshots over HTTP.
//
// Routes:
// - /api/health: liveness plus vessel count and last publish
// - /api/vessels.json, /api/vessels.kml, /api/vessels.pb: latest snapshot as
//   JSON aggregate, KML or GTFS-Realtime, filterable by mmsi and bbox
// - /ws: websocket push of the JSON aggregate after every admitted report
// - /metrics: Prometheus metrics
package server
