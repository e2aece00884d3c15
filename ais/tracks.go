package ais

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
)

// TrackRecord is one row of a historical track file.
type TrackRecord struct {
	MMSI    string
	Lat     float64
	Lng     float64
	COG     float64
	SOG     float64
	Heading float64
	TS      string
}

// Report converts the record into a stream report with the given length.
func (t TrackRecord) Report(length float64) Report {
	return Report{
		MMSI:      t.MMSI,
		Lat:       t.Lat,
		Lon:       t.Lng,
		COG:       t.COG,
		SOG:       t.SOG,
		Heading:   t.Heading,
		Length:    length,
		Timestamp: t.TS,
	}
}

var trackColumns = []string{"mmsi", "lat", "lng", "cog", "sog", "ts", "heading"}

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("ais: missing column")

type header map[string]int

func readHeader(cr *csv.Reader, required ...string) (header, error) {
	row, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, err
	}
	h := header{}
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	return h, nil
}

func (h header) float(row []string, col string) (float64, error) {
	i := h[col]
	if i >= len(row) {
		return 0, fmt.Errorf("column %s missing in row", col)
	}
	return strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
}

func (h header) str(row []string, col string) string {
	i := h[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadTracks reads a historical track CSV. Rows whose numeric columns do not
// parse are skipped and counted.
func ReadTracks(r io.Reader) ([]TrackRecord, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr, trackColumns...)
	if err != nil {
		return nil, 0, err
	}

	var out []TrackRecord
	skipped := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		rec, ok := h.track(row)
		if !ok {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

func (h header) track(row []string) (TrackRecord, bool) {
	rec := TrackRecord{MMSI: h.str(row, "mmsi"), TS: h.str(row, "ts")}
	var err error
	for _, f := range []struct {
		col string
		dst *float64
	}{
		{"lat", &rec.Lat},
		{"lng", &rec.Lng},
		{"cog", &rec.COG},
		{"sog", &rec.SOG},
		{"heading", &rec.Heading},
	} {
		if *f.dst, err = h.float(row, f.col); err != nil {
			return TrackRecord{}, false
		}
	}
	if rec.MMSI == "" || !geo.Finite(rec.Lat, rec.Lng, rec.COG, rec.SOG, rec.Heading) {
		return TrackRecord{}, false
	}
	return rec, true
}

// TrackBounds scans a track CSV and returns the min/max of its lat and lng
// columns along with the number of rows used.
func TrackBounds(r io.Reader) (geo.Bounds, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr, "lat", "lng")
	if err != nil {
		return geo.Bounds{}, 0, err
	}

	b := geo.EmptyBounds()
	n := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return geo.Bounds{}, n, err
		}
		lat, err1 := h.float(row, "lat")
		lng, err2 := h.float(row, "lng")
		if err1 != nil || err2 != nil || !geo.Finite(lat, lng) {
			continue
		}
		b = b.Extend(lng, lat)
		n++
	}
	return b, n, nil
}

// ReadLengths reads a vessel particulars CSV mapping MMSI (first column) to
// length (fifth column). A leading header row whose first cell is "mmsi" is
// skipped, as are rows with an unparseable length.
func ReadLengths(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	lengths := map[string]float64{}
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "mmsi") {
				continue
			}
		}
		if len(row) < 5 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			continue
		}
		lengths[strings.TrimSpace(row[0])] = v
	}
	return lengths, nil
}
