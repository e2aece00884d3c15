// Package replay serves a recorded AIS track file as a live report stream.
//
// Load reads a vessel length table and a track CSV (local paths or http(s)
// URLs), keeps moving vessels inside the admission box and orders them by
// timestamp. Server then sends every websocket client the tab-delimited
// report lines one at a time, looping forever, so the tracker can be run
// without a live AIS receiver.
package replay
