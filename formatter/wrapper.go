package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
	"github.com/theoremus-urban-solutions/ais-shipdomain/tracking"
)

// Aggregate is the published form of one snapshot.
type Aggregate struct {
	Seq         uint64       `json:"seq"`
	PublishedAt time.Time    `json:"published_at"`
	Vessels     []VesselView `json:"vessels"`
}

// VesselView is one vessel with its colors and closed domain ring.
type VesselView struct {
	MMSI      string       `json:"mmsi"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	COG       float64      `json:"cog"`
	SOG       float64      `json:"sog"`
	Heading   float64      `json:"heading"`
	Length    float64      `json:"length"`
	Timestamp string       `json:"ts"`
	Color     [3]int       `json:"color"`
	Fill      [4]int       `json:"fill"`
	Border    [3]int       `json:"border"`
	Domain    [][2]float64 `json:"domain"`
}

// WrapSnapshot converts a snapshot into its published form. Domain rings are
// closed by repeating the first point. A ring holding a non-finite point is
// published empty.
func WrapSnapshot(snap *tracking.Snapshot) *Aggregate {
	agg := &Aggregate{Vessels: []VesselView{}}
	if snap == nil {
		return agg
	}
	agg.Seq = snap.Seq
	agg.PublishedAt = snap.PublishedAt
	agg.Vessels = make([]VesselView, 0, len(snap.Vessels))
	for _, v := range snap.Vessels {
		ring := v.Domain.Ring.Closed()
		domain := make([][2]float64, 0, len(ring))
		for _, p := range ring {
			if !geo.Finite(p.Lon, p.Lat) {
				domain = domain[:0]
				break
			}
			domain = append(domain, [2]float64{p.Lon, p.Lat})
		}
		r := v.Report
		agg.Vessels = append(agg.Vessels, VesselView{
			MMSI:      r.MMSI,
			Lat:       r.Lat,
			Lon:       r.Lon,
			COG:       r.COG,
			SOG:       r.SOG,
			Heading:   v.Heading,
			Length:    r.Length,
			Timestamp: r.Timestamp,
			Color:     [3]int{int(v.Color.R), int(v.Color.G), int(v.Color.B)},
			Fill:      [4]int{int(v.Fill.R), int(v.Fill.G), int(v.Fill.B), int(v.Fill.A)},
			Border:    [3]int{int(v.Border.R), int(v.Border.G), int(v.Border.B)},
			Domain:    domain,
		})
	}
	return agg
}

// FilterVessels keeps vessels whose MMSI contains mmsiRef and, when bbox is
// not nil, whose position lies inside it. Matching is case-insensitive.
func FilterVessels(agg *Aggregate, mmsiRef string, bbox *geo.Bounds) *Aggregate {
	mmsiRef = strings.ToLower(strings.TrimSpace(mmsiRef))
	if mmsiRef == "" && bbox == nil {
		return agg
	}

	filtered := &Aggregate{
		Seq:         agg.Seq,
		PublishedAt: agg.PublishedAt,
		Vessels:     []VesselView{},
	}
	for _, v := range agg.Vessels {
		if mmsiRef != "" && !strings.Contains(strings.ToLower(v.MMSI), mmsiRef) {
			continue
		}
		if bbox != nil && !bbox.Contains(v.Lon, v.Lat) {
			continue
		}
		filtered.Vessels = append(filtered.Vessels, v)
	}
	return filtered
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat".
func ParseBBox(s string) (geo.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.Bounds{}, fmt.Errorf("bbox: want 4 comma-separated values, got %d", len(parts))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || !geo.Finite(f) {
			return geo.Bounds{}, fmt.Errorf("bbox: bad value %q", p)
		}
		v[i] = f
	}
	b := geo.Bounds{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return geo.Bounds{}, fmt.Errorf("bbox: min exceeds max in %q", s)
	}
	return b, nil
}

// extractTimestamp parses a report timestamp to Unix seconds. Report
// timestamps are opaque, so failure is expected and reported with ok false.
func extractTimestamp(ts string) (int64, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0, false
	}
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006/01/02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t.Unix(), true
		}
	}
	if n, err := strconv.ParseInt(ts, 10, 64); err == nil && n > 0 {
		return n, true
	}
	return 0, false
}
