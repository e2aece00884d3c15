// Package ais parses vessel position reports.
//
// Live reports arrive as one tab-delimited line each:
//
//	lat  mmsi  cog  lon  sog  ts  heading  length
//
// Note that latitude comes before longitude. ParseLine rejects lines with the
// wrong field count or a non-numeric position, course, speed or heading; a
// bad length falls back to DefaultLength.
//
// The package also reads the two static CSV formats used around the live
// feed: historical track files (ReadTracks, TrackBounds) and vessel length
// tables (ReadLengths).
package ais
