package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/gorilla/websocket"
	"github.com/theoremus-urban-solutions/ais-shipdomain/formatter"
	"github.com/theoremus-urban-solutions/ais-shipdomain/tracking"
	"google.golang.org/protobuf/proto"
)

const (
	lineA = "36.05\t209203000\t45\t120.2\t12\t2024-01-01T00:00:00Z\t50\t80"
	lineB = "36.2\t413000003\t90\t120.4\t3\t2024-01-01T00:00:01Z\t511\t45"
)

type gauge struct{ n atomic.Int32 }

func (g *gauge) SetSubscribers(n int) { g.n.Store(int32(n)) }

func newTestServer(t *testing.T) (*tracking.Tracker, *Hub, *gauge, *httptest.Server) {
	t.Helper()
	g := &gauge{}
	hub := NewHub(g, nil)
	tr := tracking.New(tracking.Options{Publisher: hub})

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("shipdomain_vessels 0\n"))
	})
	srv := New(Options{Source: tr, Hub: hub, Metrics: metrics})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return tr, hub, g, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestHealth(t *testing.T) {
	tr, _, _, ts := newTestServer(t)
	tr.Handle(context.Background(), lineA)

	resp, body := get(t, ts.URL+"/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.Unmarshal(body, &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "ok" || h.Vessels != 1 || h.Seq != 1 {
		t.Errorf("health = %+v", h)
	}
}

func TestVesselsJSON(t *testing.T) {
	tr, _, _, ts := newTestServer(t)
	ctx := context.Background()
	tr.Handle(ctx, lineA)
	tr.Handle(ctx, lineB)

	resp, body := get(t, ts.URL+"/api/vessels.json")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var agg formatter.Aggregate
	if err := json.Unmarshal(body, &agg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agg.Seq != 2 || len(agg.Vessels) != 2 {
		t.Fatalf("seq=%d vessels=%d", agg.Seq, len(agg.Vessels))
	}
	if agg.Vessels[1].Heading != 90 {
		t.Errorf("unavailable heading should fall back to course, got %v", agg.Vessels[1].Heading)
	}

	_, body = get(t, ts.URL+"/api/vessels.json?bbox=120.3,36.1,120.5,36.3")
	agg = formatter.Aggregate{}
	_ = json.Unmarshal(body, &agg)
	if len(agg.Vessels) != 1 || agg.Vessels[0].MMSI != "413000003" {
		t.Errorf("bbox filter returned %+v", agg.Vessels)
	}

	_, body = get(t, ts.URL+"/api/vessels.json?mmsi=2092")
	agg = formatter.Aggregate{}
	_ = json.Unmarshal(body, &agg)
	if len(agg.Vessels) != 1 || agg.Vessels[0].MMSI != "209203000" {
		t.Errorf("mmsi filter returned %+v", agg.Vessels)
	}
}

func TestVesselsJSONSurvivesHugeDimensions(t *testing.T) {
	tr, _, _, ts := newTestServer(t)
	ctx := context.Background()
	tr.Handle(ctx, lineA)
	tr.Handle(ctx, "36.10\toversize\t45\t120.3\t12\tts\t50\t1e308")
	tr.Handle(ctx, "36.12\tracing\t45\t120.31\t1e300\tts\t50\t80")

	resp, body := get(t, ts.URL+"/api/vessels.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var agg formatter.Aggregate
	if err := json.Unmarshal(body, &agg); err != nil {
		t.Fatalf("decode %d bytes: %v", len(body), err)
	}
	if len(agg.Vessels) != 3 {
		t.Fatalf("vessels = %d, want 3", len(agg.Vessels))
	}
	for _, v := range agg.Vessels {
		if len(v.Domain) == 0 {
			t.Errorf("%s published without a domain", v.MMSI)
		}
	}
}

func TestVesselsBadBBox(t *testing.T) {
	_, _, _, ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/api/vessels.json?bbox=1,2,3")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"description"`) {
		t.Errorf("error body = %s", body)
	}
}

func TestVesselsGTFSRTAndKML(t *testing.T) {
	tr, _, _, ts := newTestServer(t)
	tr.Handle(context.Background(), lineA)

	resp, body := get(t, ts.URL+"/api/vessels.pb")
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-protobuf" {
		t.Errorf("Content-Type = %q", ct)
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(body, &fm); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fm.GetEntity()) != 1 || fm.GetEntity()[0].GetId() != "209203000" {
		t.Errorf("entities = %v", fm.GetEntity())
	}

	_, body = get(t, ts.URL+"/api/vessels.kml")
	if !strings.Contains(string(body), "<name>209203000</name>") {
		t.Errorf("kml = %s", body)
	}
}

func TestDistance(t *testing.T) {
	tr, _, _, ts := newTestServer(t)
	ctx := context.Background()
	tr.Handle(ctx, lineA)
	tr.Handle(ctx, lineB)

	resp, body := get(t, ts.URL+"/api/distance?a=209203000&b=413000003")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var d distanceResponse
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(d.DistanceKM-24.513) > 0.01 {
		t.Errorf("distance = %v km, want ~24.513", d.DistanceKM)
	}
	if d.Overlap || d.Seq != 2 {
		t.Errorf("response = %+v", d)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing b", "?a=209203000", http.StatusBadRequest},
		{"unknown vessel", "?a=209203000&b=999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/distance"+tt.query)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if !strings.Contains(string(body), `"description"`) {
				t.Errorf("error body = %s", body)
			}
		})
	}
}

func TestResponseCacheFollowsSeq(t *testing.T) {
	tr := tracking.New(tracking.Options{})
	srv := New(Options{Source: tr})
	h := srv.Handler()
	ctx := context.Background()

	tr.Handle(ctx, lineA)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vessels.json", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/vessels.kml", nil))
	if srv.cache.len() != 2 {
		t.Errorf("cache entries = %d, want 2", srv.cache.len())
	}

	tr.Handle(ctx, lineB)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vessels.json", nil))
	if srv.cache.len() != 1 {
		t.Errorf("cache not reset on new seq: %d entries", srv.cache.len())
	}
	if !strings.Contains(rr.Body.String(), "413000003") {
		t.Error("stale response served after new snapshot")
	}
}

func TestMetricsRoute(t *testing.T) {
	_, _, _, ts := newTestServer(t)
	_, body := get(t, ts.URL+"/metrics")
	if !strings.Contains(string(body), "shipdomain_vessels") {
		t.Errorf("metrics body = %s", body)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func readAggregate(t *testing.T, c *websocket.Conn) formatter.Aggregate {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var agg formatter.Aggregate
	if err := json.Unmarshal(msg, &agg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return agg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketPush(t *testing.T) {
	tr, hub, g, ts := newTestServer(t)
	ctx := context.Background()
	tr.Handle(ctx, lineA)

	c := dialWS(t, ts)
	if agg := readAggregate(t, c); agg.Seq != 1 || len(agg.Vessels) != 1 {
		t.Fatalf("initial push = seq %d, %d vessels", agg.Seq, len(agg.Vessels))
	}
	waitFor(t, func() bool { return hub.Len() == 1 && g.n.Load() == 1 })

	tr.Handle(ctx, lineB)
	if agg := readAggregate(t, c); agg.Seq != 2 || len(agg.Vessels) != 2 {
		t.Errorf("update push = seq %d, %d vessels", agg.Seq, len(agg.Vessels))
	}

	c.Close()
	waitFor(t, func() bool { return hub.Len() == 0 && g.n.Load() == 0 })
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	tr, hub, _, ts := newTestServer(t)
	c := dialWS(t, ts)
	waitFor(t, func() bool { return hub.Len() == 1 })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			tr.Handle(context.Background(), lineA)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing blocked on an unread subscriber")
	}

	// the subscriber eventually sees the newest snapshot
	var last uint64
	for last < 200 {
		last = readAggregate(t, c).Seq
	}
	if last != 200 {
		t.Errorf("last seq = %d, want 200", last)
	}
}

func TestHubAddQueuesLastSnapshot(t *testing.T) {
	g := &gauge{}
	hub := NewHub(g, nil)
	seqOf := func(payload []byte) uint64 {
		var agg formatter.Aggregate
		if err := json.Unmarshal(payload, &agg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return agg.Seq
	}

	hub.Publish(&tracking.Snapshot{Seq: 1})
	s := &subscriber{id: "late", send: make(chan []byte, 1)}
	hub.add(s)
	if g.n.Load() != 1 {
		t.Errorf("gauge = %d, want 1", g.n.Load())
	}

	// a publish right after registration replaces the queued snapshot
	hub.Publish(&tracking.Snapshot{Seq: 2})
	select {
	case payload := <-s.send:
		if got := seqOf(payload); got != 2 {
			t.Errorf("queued seq = %d, want 2", got)
		}
	default:
		t.Fatal("subscriber has nothing queued")
	}
}

func TestOffer(t *testing.T) {
	ch := make(chan []byte, 1)
	offer(ch, []byte("a"))
	offer(ch, []byte("b"))
	if got := string(<-ch); got != "b" {
		t.Errorf("pending = %q, want newest", got)
	}
}

func TestStartAndShutdown(t *testing.T) {
	tr := tracking.New(tracking.Options{})
	srv := New(Options{Addr: "127.0.0.1:0", Source: tr, Hub: NewHub(nil, nil)})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, _ := get(t, "http://"+srv.Addr()+"/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
