package ais

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrParse is matched by every error ParseLine returns.
	ErrParse = errors.New("ais: malformed report")
	// ErrFieldCount is returned when a line does not have exactly FieldCount fields.
	ErrFieldCount = fmt.Errorf("%w: wrong field count", ErrParse)
)

// ParseError names the field that failed to convert.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ais: field %s=%q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("ais: field %s=%q is invalid", e.Field, e.Value)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// ParseLine converts one tab-delimited stream line into a Report. Field order
// is lat, mmsi, cog, lon, sog, ts, heading, length. The length field falls back
// to DefaultLength when it is missing or not a finite number; every other
// numeric field must be a finite number. A zero or negative length is kept
// as reported and left to the domain engine.
func ParseLine(line string) (Report, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")
	if len(fields) != FieldCount {
		return Report{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), FieldCount)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var r Report
	var err error
	if r.Lat, err = parseFinite("lat", fields[0]); err != nil {
		return Report{}, err
	}
	r.MMSI = fields[1]
	if r.MMSI == "" {
		return Report{}, &ParseError{Field: "mmsi", Value: fields[1]}
	}
	if r.COG, err = parseFinite("cog", fields[2]); err != nil {
		return Report{}, err
	}
	if r.Lon, err = parseFinite("lon", fields[3]); err != nil {
		return Report{}, err
	}
	if r.SOG, err = parseFinite("sog", fields[4]); err != nil {
		return Report{}, err
	}
	r.Timestamp = fields[5]
	if r.Heading, err = parseFinite("heading", fields[6]); err != nil {
		return Report{}, err
	}
	r.Length = parseLength(fields[7])
	return r, nil
}

func parseFinite(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: s, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Field: field, Value: s}
	}
	return v, nil
}

func parseLength(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultLength
	}
	return v
}
