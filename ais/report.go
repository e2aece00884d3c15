package ais

import (
	"strconv"
	"strings"
)

// DefaultLength is used when a report carries no usable length (m).
const DefaultLength = 100.0

// FieldCount is the number of tab-separated fields in a report line.
const FieldCount = 8

// Report is one position report for one vessel.
type Report struct {
	MMSI      string
	Lat       float64
	Lon       float64
	COG       float64 // course over ground, degrees
	SOG       float64 // speed over ground, knots
	Heading   float64 // degrees; 511 means not available
	Length    float64 // meters
	Timestamp string  // echoed, never parsed
}

// HeadingUnavailable is the AIS sentinel for a missing true heading.
const HeadingUnavailable = 511

// HasHeading reports whether Heading is a usable bearing.
func (r Report) HasHeading() bool {
	return r.Heading >= 0 && r.Heading < 360
}

// DisplayHeading returns the heading to orient the vessel with, falling back
// to course over ground when the heading is unavailable.
func (r Report) DisplayHeading() float64 {
	if r.HasHeading() {
		return r.Heading
	}
	return r.COG
}

// Line formats r in stream field order:
// lat, mmsi, cog, lon, sog, ts, heading, length.
func (r Report) Line() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return strings.Join([]string{
		f(r.Lat), r.MMSI, f(r.COG), f(r.Lon), f(r.SOG), r.Timestamp, f(r.Heading), f(r.Length),
	}, "\t")
}
