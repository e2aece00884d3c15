package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/formatter"
	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
	"github.com/theoremus-urban-solutions/ais-shipdomain/shipdomain"
	"github.com/theoremus-urban-solutions/ais-shipdomain/tracking"
)

const (
	formatJSON   = "json"
	formatKML    = "kml"
	formatGTFSRT = "pb"
)

var contentTypes = map[string]string{
	formatJSON:   "application/json",
	formatKML:    "application/vnd.google-earth.kml+xml",
	formatGTFSRT: "application/x-protobuf",
}

type healthResponse struct {
	Status      string    `json:"status"`
	Vessels     int       `json:"vessels"`
	Seq         uint64    `json:"seq"`
	PublishedAt time.Time `json:"published_at"`
	Subscribers int       `json:"subscribers"`
}

func (s *Server) latest() *tracking.Snapshot {
	if s.src == nil {
		return nil
	}
	return s.src.Latest()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap := s.latest()
	resp := healthResponse{Status: "ok", Vessels: snap.Len()}
	if snap != nil {
		resp.Seq = snap.Seq
		resp.PublishedAt = snap.PublishedAt
	}
	if s.hub != nil {
		resp.Subscribers = s.hub.Len()
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleVessels serves the latest snapshot in one format. Query parameters
// mmsi (substring) and bbox (minLon,minLat,maxLon,maxLat) filter vessels.
func (s *Server) handleVessels(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mmsi := q.Get("mmsi")
		bboxParam := q.Get("bbox")

		var bbox *geo.Bounds
		if bboxParam != "" {
			b, err := formatter.ParseBBox(bboxParam)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write(buildErrorPayload(err.Error()))
				return
			}
			bbox = &b
		}

		snap := s.latest()
		var seq uint64
		if snap != nil {
			seq = snap.Seq
		}
		key := memoKey(strconv.FormatUint(seq, 10), format, mmsi, bboxParam)
		buf, ok := s.cache.get(seq, key)
		if !ok {
			agg := formatter.FilterVessels(formatter.WrapSnapshot(snap), mmsi, bbox)
			var err error
			buf, err = s.build(agg, format)
			if err != nil {
				s.log.Error("encode vessels", "format", format, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(buildErrorPayload(err.Error()))
				return
			}
			s.cache.put(seq, key, buf)
		}

		w.Header().Set("Content-Type", contentTypes[format])
		_, _ = w.Write(buf)
	}
}

type distanceResponse struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	DistanceKM float64 `json:"distance_km"`
	Overlap    bool    `json:"overlap"`
	Seq        uint64  `json:"seq"`
}

// handleDistance reports the great-circle distance between two tracked
// vessels, given as ?a=<mmsi>&b=<mmsi>, and whether their domains overlap.
func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(buildErrorPayload("a and b MMSI parameters are required"))
		return
	}

	snap := s.latest()
	va, okA := snap.Find(a)
	vb, okB := snap.Find(b)
	if !okA || !okB {
		missing := a
		if okA {
			missing = b
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(buildErrorPayload("vessel " + missing + " is not tracked"))
		return
	}

	_, overlap := shipdomain.ComputeOverlap(va.Domain.Ring, vb.Domain.Ring)
	_ = json.NewEncoder(w).Encode(distanceResponse{
		A:          a,
		B:          b,
		DistanceKM: geo.HaversineKM(va.Report.Lat, va.Report.Lon, vb.Report.Lat, vb.Report.Lon),
		Overlap:    overlap,
		Seq:        snap.Seq,
	})
}

func (s *Server) build(agg *formatter.Aggregate, format string) ([]byte, error) {
	switch format {
	case formatKML:
		return s.rb.BuildKML(agg), nil
	case formatGTFSRT:
		return s.rb.BuildGTFSRT(agg)
	default:
		return s.rb.BuildJSON(agg)
	}
}

func buildErrorPayload(msg string) []byte {
	type errorBody struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	var e errorBody
	e.Error.Description = msg
	b, _ := json.Marshal(e)
	return b
}
