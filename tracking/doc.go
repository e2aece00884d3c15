// Package tracking turns a stream of raw AIS report lines into published
// vessel snapshots.
//
// This package handles:
// - Parsing each line and admitting it into the vessel registry
// - Assigning a stable display color the first time a vessel is seen
// - Recomputing the ship domain of the updated vessel only
// - Publishing an immutable Snapshot of every vessel after each admitted report
//
// A Tracker is driven by one goroutine calling Run (or Handle). Snapshots are
// swapped atomically, so HTTP handlers and websocket subscribers can read
// Latest concurrently without locking.
package tracking
